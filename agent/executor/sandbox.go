/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
)

// Sandbox runs each task inside a freshly created remote execution
// environment. One sandbox instance per task, deleted unconditionally
// afterward; deletion failures are logged, never propagated.
type Sandbox struct {
	cfg     Config
	baseURL string
	token   string
	client  *http.Client
}

// SandboxOption configures the sandbox provider.
type SandboxOption func(*Sandbox) error

// WithSandboxHTTPClient overrides the HTTP client used for sandbox API
// calls. The client must not carry its own timeout: task deadlines are
// enforced through the request context.
func WithSandboxHTTPClient(hc *http.Client) SandboxOption {
	return func(s *Sandbox) error {
		if hc == nil {
			return errors.New("http client cannot be nil")
		}
		s.client = hc
		return nil
	}
}

// NewSandbox constructs the sandbox provider. baseURL and token locate
// and authenticate the sandbox service.
func NewSandbox(cfg Config, baseURL, token string, opts ...SandboxOption) (*Sandbox, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		return nil, errors.New("sandbox base URL cannot be empty")
	}

	s := &Sandbox{
		cfg:     cfg,
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}
	return s, nil
}

// API payloads for the sandbox service.
type createSandboxRequest struct {
	// RepoURL carries the token-embedded clone URL; the service clones
	// it before exec. Empty in standalone mode.
	RepoURL string `json:"repoUrl,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type createSandboxResponse struct {
	ID string `json:"id"`
}

type execRequest struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

type execResponse struct {
	Output   string `json:"output"`
	ExitCode int    `json:"exitCode"`
}

// Run creates a sandbox, executes the tool inside it, and tears the
// sandbox down.
func (s *Sandbox) Run(ctx context.Context, task Task) (string, error) {
	log := clog.FromContext(ctx)

	create := createSandboxRequest{}
	if task.Repository != nil {
		create.RepoURL = authenticatedCloneURL(task.Repository, s.cfg.ForgeToken)
		create.Branch = task.Branch
	}

	var created createSandboxResponse
	if err := s.call(ctx, http.MethodPost, "/v1/sandboxes", create, &created); err != nil {
		return "", fmt.Errorf("creating sandbox: %w", err)
	}
	log.With("sandbox", created.ID).Info("Created sandbox")

	// Deletion is unconditional and best-effort. The delete rides on a
	// fresh context so a task timeout cannot leak the instance.
	defer func() {
		deleteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := s.call(deleteCtx, http.MethodDelete, "/v1/sandboxes/"+created.ID, nil, nil); err != nil {
			log.With("sandbox", created.ID).With("error", err).
				Warn("Failed to delete sandbox")
			return
		}
		log.With("sandbox", created.ID).Info("Deleted sandbox")
	}()

	env := map[string]string{}
	for _, kv := range s.cfg.env() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var result execResponse
	err := s.call(runCtx, http.MethodPost, "/v1/sandboxes/"+created.ID+"/exec", execRequest{
		Command: s.cfg.Command,
		Args:    s.cfg.args(task.Prompt),
		Env:     env,
	}, &result)
	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return "", fmt.Errorf("%w after %s", ErrTimeout, s.cfg.Timeout)
	case err != nil:
		return "", fmt.Errorf("executing in sandbox: %w", err)
	}

	if result.ExitCode != 0 {
		// Same policy as the local provider: the parser decides.
		log.With("exit_code", result.ExitCode).
			Warn("Sandboxed tool exited nonzero, returning output for parsing")
	}
	return result.Output, nil
}

// call issues one JSON request against the sandbox service.
func (s *Sandbox) call(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
