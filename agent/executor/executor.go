/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package executor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tidegate/linear-agent/agent/issuecontext"
)

// ErrTimeout is returned when a task exceeds its wall-clock budget.
var ErrTimeout = errors.New("task timed out")

// Task is one unit of work for a provider.
type Task struct {
	// Prompt is the full instruction document for the tool.
	Prompt string

	// Repository is nil in standalone mode.
	Repository *issuecontext.Repository

	// Branch is the suggested working branch name.
	Branch string
}

// Provider runs one task and returns the tool's raw console output.
type Provider interface {
	Run(ctx context.Context, task Task) (string, error)
}

// Config carries the settings shared by all providers.
type Config struct {
	// WorkspaceRoot is the directory under which per-task workspaces
	// are created. Defaults to the OS temp dir.
	WorkspaceRoot string

	// ForgeToken authenticates repository clones. Never logged.
	ForgeToken string

	// APIKey is passed to the tool via its environment.
	APIKey string

	// Command is the automation CLI binary. Defaults to "claude".
	Command string

	// Model optionally overrides the tool's model.
	Model string

	// MaxTurns bounds the tool's agentic loop.
	MaxTurns int

	// Timeout is the wall-clock budget per task.
	Timeout time.Duration

	// GitName and GitEmail configure the commit identity inside
	// cloned workspaces.
	GitName  string
	GitEmail string
}

const (
	defaultCommand  = "claude"
	defaultMaxTurns = 30
	defaultTimeout  = 30 * time.Minute
	defaultGitName  = "Linear Agent"
	defaultGitEmail = "linear-agent@localhost"
)

// withDefaults fills unset fields and validates the rest.
func (c Config) withDefaults() (Config, error) {
	if c.APIKey == "" {
		return c, errors.New("api key cannot be empty")
	}
	if c.Command == "" {
		c.Command = defaultCommand
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = defaultMaxTurns
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.GitName == "" {
		c.GitName = defaultGitName
	}
	if c.GitEmail == "" {
		c.GitEmail = defaultGitEmail
	}
	return c, nil
}

// args assembles the CLI invocation: print mode, auto-approval, turn
// budget, optional model, and the prompt as the trailing argument.
func (c Config) args(prompt string) []string {
	args := []string{
		"-p",
		"--dangerously-skip-permissions",
		"--max-turns", strconv.Itoa(c.MaxTurns),
	}
	if c.Model != "" {
		args = append(args, "--model", c.Model)
	}
	return append(args, prompt)
}

// env is the tool's process environment additions: the API key and a
// CI marker so the tool knows it is unattended.
func (c Config) env() []string {
	return []string{
		"ANTHROPIC_API_KEY=" + c.APIKey,
		"CI=true",
	}
}

// authenticatedCloneURL embeds the forge token into the repository's
// HTTPS remote. The result must never be logged.
func authenticatedCloneURL(repo *issuecontext.Repository, token string) string {
	if token == "" {
		return fmt.Sprintf("https://github.com/%s/%s.git", repo.Owner, repo.Name)
	}
	return fmt.Sprintf("https://x-access-token:%s@github.com/%s/%s.git", token, repo.Owner, repo.Name)
}
