/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/chainguard-dev/clog"
)

// Local runs the automation CLI as a child process on this host.
type Local struct {
	cfg Config
}

// NewLocal constructs the local provider.
func NewLocal(cfg Config) (*Local, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Local{cfg: cfg}, nil
}

// Run executes one task. See the package documentation for the state
// sequence and failure semantics.
func (l *Local) Run(ctx context.Context, task Task) (output string, err error) {
	log := clog.FromContext(ctx)

	ws, err := newWorkspace(l.cfg.WorkspaceRoot)
	if err != nil {
		return "", err
	}
	defer func() {
		ws.cleanup(ctx, err == nil)
	}()

	if task.Repository != nil {
		if err := ws.cloneRepository(ctx, task.Repository, l.cfg.ForgeToken); err != nil {
			return "", err
		}
		if err := ws.configureIdentity(l.cfg.GitName, l.cfg.GitEmail); err != nil {
			return "", err
		}
	} else {
		log.Info("No repository for this task, running standalone")
	}

	if _, err := ws.writePrompt(task.Prompt); err != nil {
		return "", err
	}

	runCtx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, l.cfg.Command, l.cfg.args(task.Prompt)...)
	cmd.Dir = ws.dir
	cmd.Env = append(os.Environ(), l.cfg.env()...)
	// The tool must run fully non-interactively. Leaving Stdin nil
	// gives the child an empty stdin; it is never piped.
	cmd.Stdin = nil
	// Ask nicely first, then hard-kill if the tool lingers.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = 10 * time.Second

	log.With("command", l.cfg.Command).
		With("prompt_length", len(task.Prompt)).
		Info("Spawning automation tool")

	started := time.Now()
	raw, runErr := cmd.CombinedOutput()
	elapsed := time.Since(started)

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return "", fmt.Errorf("%w after %s", ErrTimeout, l.cfg.Timeout)

	case runErr != nil:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			// The parser decides success, not the exit code.
			log.With("exit_code", exitErr.ExitCode()).
				With("duration", elapsed.Round(time.Second)).
				Warn("Tool exited nonzero, returning output for parsing")
			return string(raw), nil
		}
		return "", fmt.Errorf("spawning tool: %w", runErr)

	default:
		log.With("duration", elapsed.Round(time.Second)).
			With("output_length", len(raw)).
			Info("Tool completed")
		return string(raw), nil
	}
}
