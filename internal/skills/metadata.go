package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SkillFile is the metadata file every skill directory carries.
const SkillFile = "SKILL.md"

// MetadataValidator checks a skill directory and returns the reasons it is
// malformed. An empty result means the skill is valid.
type MetadataValidator interface {
	Validate(dir string) []string
}

// FrontmatterValidator requires SKILL.md with YAML frontmatter carrying a
// name and a description.
type FrontmatterValidator struct{}

type skillFrontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Validate implements MetadataValidator.
func (FrontmatterValidator) Validate(dir string) []string {
	content, err := os.ReadFile(filepath.Join(dir, SkillFile))
	if os.IsNotExist(err) {
		return []string{fmt.Sprintf("missing %s", SkillFile)}
	}
	if err != nil {
		return []string{err.Error()}
	}

	front, _, ok := splitFrontmatter(string(content))
	if !ok {
		return []string{"missing frontmatter"}
	}

	var fm skillFrontmatter
	if err := yaml.Unmarshal([]byte(front), &fm); err != nil {
		return []string{fmt.Sprintf("invalid frontmatter: %v", err)}
	}

	var reasons []string
	if strings.TrimSpace(fm.Name) == "" {
		reasons = append(reasons, "frontmatter is missing 'name'")
	}
	if strings.TrimSpace(fm.Description) == "" {
		reasons = append(reasons, "frontmatter is missing 'description'")
	}
	return reasons
}

// NopValidator accepts every skill.
type NopValidator struct{}

// Validate implements MetadataValidator.
func (NopValidator) Validate(string) []string { return nil }

func splitFrontmatter(raw string) (frontmatter string, body string, ok bool) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	if !strings.HasPrefix(raw, "---\n") {
		return "", strings.TrimSpace(raw), false
	}
	lines := strings.Split(raw, "\n")
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end <= 0 {
		return "", strings.TrimSpace(raw), false
	}
	front := strings.Join(lines[1:end], "\n")
	bodyPart := ""
	if end+1 < len(lines) {
		bodyPart = strings.Join(lines[end+1:], "\n")
	}
	return strings.TrimSpace(front), strings.TrimSpace(bodyPart), true
}
