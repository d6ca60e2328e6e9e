package git

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Level represents the severity of a git status.
type Level string

const (
	LevelOK      Level = "ok"      // Clean and in sync
	LevelInfo    Level = "info"    // Ahead or behind remote
	LevelWarning Level = "warning" // Local modifications in a cached checkout
	LevelError   Level = "error"   // Git operation failed
)

// Status represents the git status of a cached plugin checkout.
type Status struct {
	Path           string `json:"path" yaml:"path"`
	IsGitRepo      bool   `json:"is_git_repo" yaml:"is_git_repo"`
	HasUncommitted bool   `json:"has_uncommitted" yaml:"has_uncommitted"`
	Behind         int    `json:"behind" yaml:"behind"`
	CurrentBranch  string `json:"branch,omitempty" yaml:"branch,omitempty"`
	Head           string `json:"head,omitempty" yaml:"head,omitempty"`
	Level          Level  `json:"level" yaml:"level"`
	Message        string `json:"message" yaml:"message"`
}

// CheckRepository inspects a checkout without touching the network.
// Cached checkouts are refreshed only by sync, so "behind" is measured
// against the last fetched remote ref.
func (c *Client) CheckRepository(ctx context.Context, path string) Status {
	status := Status{Path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		status.Level = LevelError
		status.Message = fmt.Sprintf("path does not exist: %s", path)
		return status
	}

	return c.checkRepository(ctx, path)
}

func (c *Client) checkRepository(ctx context.Context, path string) Status {
	status := Status{Path: path}

	if !c.IsRepo(ctx, path) {
		status.Level = LevelInfo
		status.Message = "not a git repository"
		return status
	}
	status.IsGitRepo = true

	out, err := c.run(ctx, path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		status.Level = LevelError
		status.Message = fmt.Sprintf("failed to get current branch: %v", err)
		return status
	}
	status.CurrentBranch = strings.TrimSpace(string(out))

	if head, err := c.Head(ctx, path); err == nil {
		status.Head = head
	}

	out, err = c.run(ctx, path, "status", "--porcelain")
	if err != nil {
		status.Level = LevelError
		status.Message = fmt.Sprintf("failed to check working tree: %v", err)
		return status
	}
	if strings.TrimSpace(string(out)) != "" {
		status.HasUncommitted = true
		status.Level = LevelWarning
		status.Message = "local modifications in cached checkout"
		return status
	}

	out, err = c.run(ctx, path, "rev-list", "--count", "HEAD..@{u}")
	if err != nil {
		status.Level = LevelOK
		status.Message = "clean (no remote tracking branch)"
		return status
	}
	behind, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		status.Level = LevelOK
		status.Message = "clean"
		return status
	}
	status.Behind = behind

	if behind > 0 {
		status.Level = LevelInfo
		status.Message = fmt.Sprintf("%d commits behind remote (refreshed on next online sync)", behind)
	} else {
		status.Level = LevelOK
		status.Message = "clean and in sync"
	}

	return status
}
