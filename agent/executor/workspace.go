/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chainguard-dev/clog"
	git "github.com/go-git/go-git/v5"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/tidegate/linear-agent/agent/issuecontext"
)

const workspacePrefix = "linear-agent-task-"

// workspace is the per-task working directory. Each task gets its own
// randomly named subdirectory, so concurrent tasks never contend on
// files.
type workspace struct {
	root string // the task directory itself
	dir  string // where the tool runs: the clone, or root when standalone
	repo *git.Repository
}

// newWorkspace creates a fresh task directory under rootDir (the OS
// temp dir when empty).
func newWorkspace(rootDir string) (*workspace, error) {
	dir, err := os.MkdirTemp(rootDir, workspacePrefix)
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &workspace{root: dir, dir: dir}, nil
}

// cloneRepository clones repo over HTTPS into the workspace and makes
// the clone the tool's working directory. The token rides in basic
// auth, not in the logged URL.
func (w *workspace) cloneRepository(ctx context.Context, repo *issuecontext.Repository, token string) error {
	target := filepath.Join(w.root, repo.Name)
	clog.FromContext(ctx).With("repository", repo.Owner+"/"+repo.Name).
		Infof("Cloning into %s", target)

	opts := &git.CloneOptions{URL: repo.URL}
	if token != "" {
		opts.Auth = &githttp.BasicAuth{
			Username: "x-access-token",
			Password: token,
		}
	}

	cloned, err := git.PlainCloneContext(ctx, target, false, opts)
	if err != nil {
		return fmt.Errorf("cloning repository: %w", err)
	}

	w.dir = target
	w.repo = cloned
	return nil
}

// configureIdentity sets the commit author identity in the clone's
// local git config so the tool's commits are attributable.
func (w *workspace) configureIdentity(name, email string) error {
	if w.repo == nil {
		return nil
	}

	cfg, err := w.repo.Config()
	if err != nil {
		return fmt.Errorf("reading repo config: %w", err)
	}
	cfg.User.Name = name
	cfg.User.Email = email
	if err := w.repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("writing repo config: %w", err)
	}
	return nil
}

// writePrompt persists the instruction document into the workspace for
// postmortem inspection and returns its path.
func (w *workspace) writePrompt(prompt string) (string, error) {
	path := filepath.Join(w.root, "prompt.md")
	if err := os.WriteFile(path, []byte(prompt), 0o644); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}
	return path, nil
}

// cleanup removes the workspace after a successful run. Failed runs
// retain it for postmortem inspection.
func (w *workspace) cleanup(ctx context.Context, succeeded bool) {
	if succeeded {
		if err := os.RemoveAll(w.root); err != nil {
			clog.FromContext(ctx).With("error", err).Warnf("Failed to remove workspace %s", w.root)
		}
		return
	}
	clog.FromContext(ctx).Warnf("Retaining workspace %s for postmortem inspection", w.root)
}
