/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package main runs the Linear agent service: an HTTP server that
// receives Linear webhooks and turns trigger mentions into background
// coding-agent tasks.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/sync/errgroup"

	"github.com/tidegate/linear-agent/agent/executor"
	"github.com/tidegate/linear-agent/agent/issuecontext"
	"github.com/tidegate/linear-agent/agent/promptbuilder"
	"github.com/tidegate/linear-agent/agent/reporter"
	"github.com/tidegate/linear-agent/agent/result"
	"github.com/tidegate/linear-agent/linear"
	"github.com/tidegate/linear-agent/metrics"
	"github.com/tidegate/linear-agent/webhook"
)

const version = "0.1.0"

type config struct {
	Port      int    `env:"PORT,default=8080"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	// Linear API access
	LinearAPIKey        string `env:"LINEAR_API_KEY,required"`
	LinearWebhookSecret string `env:"LINEAR_WEBHOOK_SECRET"`
	TriggerToken        string `env:"TRIGGER_TOKEN,default=@claude"`

	// Repository resolution
	GithubToken       string `env:"GITHUB_TOKEN"`
	DefaultRepository string `env:"DEFAULT_REPOSITORY"`
	TeamReposPath     string `env:"TEAM_REPOS_PATH"`

	// Agent execution
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY,required"`
	AgentModel      string        `env:"AGENT_MODEL"`
	AgentMaxTurns   int           `env:"AGENT_MAX_TURNS,default=30"`
	TaskTimeout     time.Duration `env:"TASK_TIMEOUT,default=30m"`
	ComputeProvider string        `env:"COMPUTE_PROVIDER,default=local"`
	WorkspaceRoot   string        `env:"WORKSPACE_ROOT"`

	// Remote sandbox provider (COMPUTE_PROVIDER=sandbox)
	SandboxURL   string `env:"SANDBOX_URL"`
	SandboxToken string `env:"SANDBOX_TOKEN"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Local development convenience. Absence of the file is fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		clog.FatalContextf(ctx, "loading .env: %v", err)
	}

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	log := newLogger(cfg.LogFormat)
	ctx = clog.WithLogger(ctx, log)

	task, err := buildPipeline(ctx, &cfg)
	if err != nil {
		clog.FatalContextf(ctx, "building pipeline: %v", err)
	}

	handler, err := webhook.NewHandler(cfg.LinearWebhookSecret, cfg.TriggerToken, task)
	if err != nil {
		clog.FatalContextf(ctx, "creating webhook handler: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("POST /webhook/linear", handler)
	mux.Handle("GET /health", webhook.HealthHandler(version))
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           withContext(ctx, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		log.Infof("Starting Linear agent on port %d (provider=%s)", cfg.Port, cfg.ComputeProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(egCtx), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := eg.Wait(); err != nil {
		clog.FatalContextf(ctx, "server failed: %v", err)
	}
}

// newLogger builds the process logger. Text mode uses colorized
// human-readable output, anything else emits JSON for log pipelines.
func newLogger(format string) *clog.Logger {
	var handler slog.Handler
	if format == "text" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return clog.New(handler)
}

// withContext injects ctx's logger into every request context so
// handlers share the process logger configuration.
func withContext(ctx context.Context, next http.Handler) http.Handler {
	log := clog.FromContext(ctx)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(clog.WithLogger(r.Context(), log)))
	})
}

// buildPipeline assembles the tracker client, context fetcher,
// execution provider, and reporter into the webhook's task function.
func buildPipeline(ctx context.Context, cfg *config) (webhook.TaskFunc, error) {
	lc, err := linear.NewClient(cfg.LinearAPIKey)
	if err != nil {
		return nil, fmt.Errorf("creating tracker client: %w", err)
	}

	teamRepos, err := issuecontext.LoadTeamRepos(cfg.TeamReposPath)
	if err != nil {
		return nil, fmt.Errorf("loading team repository map: %w", err)
	}
	resolver := issuecontext.NewResolver(cfg.DefaultRepository, teamRepos)

	fetcher, err := issuecontext.NewFetcher(lc, cfg.TriggerToken, resolver)
	if err != nil {
		return nil, fmt.Errorf("creating fetcher: %w", err)
	}

	var reporterOpts []reporter.Option
	if cfg.GithubToken != "" {
		reporterOpts = append(reporterOpts,
			reporter.WithPREnricher(reporter.NewPREnricher(ctx, cfg.GithubToken)))
	}
	rep, err := reporter.New(lc, reporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating reporter: %w", err)
	}

	execCfg := executor.Config{
		WorkspaceRoot: cfg.WorkspaceRoot,
		ForgeToken:    cfg.GithubToken,
		APIKey:        cfg.AnthropicAPIKey,
		Model:         cfg.AgentModel,
		MaxTurns:      cfg.AgentMaxTurns,
		Timeout:       cfg.TaskTimeout,
	}
	var provider executor.Provider
	switch cfg.ComputeProvider {
	case "local":
		provider, err = executor.NewLocal(execCfg)
	case "sandbox":
		provider, err = executor.NewSandbox(execCfg, cfg.SandboxURL, cfg.SandboxToken)
	default:
		return nil, fmt.Errorf("unknown compute provider %q", cfg.ComputeProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s provider: %w", cfg.ComputeProvider, err)
	}

	return newTaskFunc(fetcher, provider, rep), nil
}

// newTaskFunc returns the function the webhook handler launches for
// each qualifying comment. It drives one task end to end and always
// reports an outcome back to the issue, including on panic.
func newTaskFunc(fetcher *issuecontext.Fetcher, provider executor.Provider, rep *reporter.Reporter) webhook.TaskFunc {
	return func(ctx context.Context, comment *webhook.CommentPayload) {
		log := clog.FromContext(ctx).With("issue", comment.IssueID).With("comment", comment.ID)
		ctx = clog.WithLogger(ctx, log)

		start := time.Now()
		outcome := "failure"
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("Task panicked: %v", r)
				rep.Report(ctx, comment.IssueID, result.TaskResult{
					Success: false,
					Error:   fmt.Sprintf("internal error: %v", r),
				})
			}
			metrics.Tasks.WithLabelValues(outcome).Inc()
			metrics.TaskDuration.Observe(time.Since(start).Seconds())
		}()

		ic, err := fetcher.Fetch(ctx, comment.IssueID, comment.ID)
		if err != nil {
			log.With("error", err).Error("Failed to assemble issue context")
			rep.Report(ctx, comment.IssueID, result.TaskResult{
				Success: false,
				Error:   fmt.Sprintf("failed to gather issue context: %v", err),
			})
			return
		}

		rep.Acknowledge(ctx, ic.Issue.ID, ic.Issue.TeamID)

		prompt, err := promptbuilder.Task(ic)
		if err != nil {
			log.With("error", err).Error("Failed to build prompt")
			rep.Report(ctx, comment.IssueID, result.TaskResult{
				Success: false,
				Error:   fmt.Sprintf("failed to build prompt: %v", err),
			})
			return
		}

		output, err := provider.Run(ctx, executor.Task{
			Prompt:     prompt,
			Repository: ic.Repository,
			Branch:     promptbuilder.BranchName(ic),
		})
		if err != nil {
			msg := fmt.Sprintf("task execution failed: %v", err)
			if errors.Is(err, executor.ErrTimeout) {
				msg = "task timed out before completing"
			}
			log.With("error", err).Error("Task execution failed")
			rep.Report(ctx, comment.IssueID, result.TaskResult{Success: false, Error: msg})
			return
		}

		// Without a clone there is no pull request to report, whatever
		// the tool printed.
		var res result.TaskResult
		if ic.Repository == nil {
			res = result.ParseStandalone(output)
		} else {
			res = result.Parse(output, "")
		}
		if res.Success {
			outcome = "success"
		}
		log.With("success", res.Success).With("duration", time.Since(start)).
			Info("Task finished")
		rep.Report(ctx, comment.IssueID, res)
	}
}
