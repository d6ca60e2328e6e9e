// Package git wraps the git command line for cloning and refreshing remote
// plugin checkouts.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner is an interface for running external commands.
// This allows for mocking in tests.
type CommandRunner interface {
	RunInDir(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner uses os/exec to run commands.
type DefaultCommandRunner struct{}

// RunInDir executes a command in the specified directory. An empty dir
// means the current directory. The process is killed when ctx is done.
func (r *DefaultCommandRunner) RunInDir(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// CommandError is returned when a git invocation exits unsuccessfully.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Output)
	if msg == "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("git %s failed: %s", e.Args[0], msg)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Client runs git operations through a CommandRunner.
type Client struct {
	runner CommandRunner
}

// NewClient creates a Client with the default command runner.
func NewClient() *Client {
	return &Client{runner: &DefaultCommandRunner{}}
}

// NewClientWithRunner creates a Client with a custom command runner (for testing).
func NewClientWithRunner(runner CommandRunner) *Client {
	return &Client{runner: runner}
}

func (c *Client) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	out, err := c.runner.RunInDir(ctx, dir, "git", args...)
	if err != nil {
		// A killed process reports "signal: killed"; surface the context error instead.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return out, &CommandError{Args: args, Output: string(out), Err: err}
	}
	return out, nil
}

// Clone performs a shallow clone of url into dest, optionally on branch.
func (c *Client) Clone(ctx context.Context, url, dest, branch string) error {
	args := []string{"clone", "--depth", "1"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, url, dest)
	_, err := c.run(ctx, "", args...)
	return err
}

// Pull fast-forwards the checkout at dir.
func (c *Client) Pull(ctx context.Context, dir string) error {
	_, err := c.run(ctx, dir, "pull", "--ff-only", "--quiet")
	return err
}

// Head returns the commit SHA checked out at dir.
func (c *Client) Head(ctx context.Context, dir string) (string, error) {
	out, err := c.run(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// IsRepo reports whether dir is inside a git work tree.
func (c *Client) IsRepo(ctx context.Context, dir string) bool {
	out, err := c.run(ctx, dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// Available checks if git is available on the system.
func (c *Client) Available(ctx context.Context) bool {
	_, err := c.run(ctx, "", "--version")
	return err == nil
}

var authPatterns = []string{
	"Authentication failed",
	"Permission denied",
	"could not read Username",
	"could not read Password",
	"Host key verification failed",
	"403",
	"401",
}

var notFoundPatterns = []string{
	"Repository not found",
	"repository not found",
	"does not appear to be a git repository",
	"Remote branch",
	"not found in upstream",
	"404",
}

// IsTimeout reports whether err came from a cancelled or expired context.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsAuthFailure reports whether the git output indicates missing or rejected credentials.
func IsAuthFailure(err error) bool {
	return outputMatches(err, authPatterns)
}

// IsNotFound reports whether the git output indicates a missing repository or branch.
func IsNotFound(err error) bool {
	return outputMatches(err, notFoundPatterns)
}

func outputMatches(err error, patterns []string) bool {
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	for _, p := range patterns {
		if strings.Contains(cmdErr.Output, p) {
			return true
		}
	}
	return false
}
