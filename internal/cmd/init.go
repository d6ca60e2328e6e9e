package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/adamancini/plugsync/internal/config"
	"github.com/adamancini/plugsync/internal/templates"
	"github.com/adamancini/plugsync/internal/types"
)

func newInitCmd() *cobra.Command {
	var (
		templateName string
		clientValues []string
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a workspace configuration from a template",
		Long: `Create .plugsync/workspace.yaml in the workspace from a built-in template.

Available templates:
  minimal       - Single client, no plugins
  multi-client  - Claude, Codex, Cursor and Copilot sharing one plugin directory
  home          - User scope for the home directory`,
		Example: `  plugsync init
  plugsync init --template multi-client
  plugsync init --client claude,gemini
  plugsync -w ~ init --template home`,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientList, err := parseClients(clientValues)
			if err != nil {
				return err
			}
			ws, err := resolveWorkspace()
			if err != nil {
				return err
			}
			outputPath := expandHomePath(configPath)
			if outputPath == "" {
				outputPath = config.DefaultPath(ws)
			}
			return runInit(cmd.OutOrStdout(), templateName, outputPath, clientList, force)
		},
	}

	cmd.Flags().StringVarP(&templateName, "template", "t", templates.Default, "Template name")
	cmd.Flags().StringSliceVar(&clientValues, "client", nil, "Replace the template's clients (repeatable)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")

	_ = cmd.RegisterFlagCompletionFunc("template", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var completions []string
		for _, name := range templates.List() {
			completions = append(completions, fmt.Sprintf("%s\t%s", name, templates.GetDescription(name)))
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("client", completeClients)

	return cmd
}

// runInit writes the template to outputPath. The raw template is kept so
// comments and ${VAR} references survive, unless clientList overrides the
// clients.
func runInit(stdout io.Writer, templateName, outputPath string, clientList []types.ClientType, force bool) error {
	if _, err := os.Stat(outputPath); err == nil && !force {
		return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", outputPath)
	}

	tmpl, err := templates.Get(templateName)
	if err != nil {
		return err
	}

	ws, err := config.Parse(tmpl.Content, config.FormatYAML)
	if err != nil {
		return fmt.Errorf("invalid template %s: %w", templateName, err)
	}

	if len(clientList) > 0 {
		ws.Clients = clientList
		if err := config.Save(outputPath, ws); err != nil {
			return err
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(outputPath), err)
		}
		if err := os.WriteFile(outputPath, tmpl.Content, 0644); err != nil {
			return fmt.Errorf("failed to write configuration: %w", err)
		}
	}

	if quiet {
		return nil
	}
	_, _ = fmt.Fprintf(stdout, "Created %s from the %s template\n", outputPath, templateName)
	_, _ = fmt.Fprintln(stdout, "\nNext steps:")
	_, _ = fmt.Fprintln(stdout, "  1. Add plugins with 'plugsync add plugin <ref>'")
	_, _ = fmt.Fprintln(stdout, "  2. Run 'plugsync diff' to preview changes")
	_, _ = fmt.Fprintln(stdout, "  3. Run 'plugsync sync' to apply")
	return nil
}
