/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package reporter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/chainguard-dev/clog"

	"github.com/tidegate/linear-agent/agent/result"
)

// maxCommentChars is Linear's practical comment size budget. Longer
// bodies are truncated with an explicit marker.
const maxCommentChars = 10000

// truncationMarker is appended when a comment body is cut.
const truncationMarker = "\n\n_(truncated)_"

// ackBody is the acknowledgment comment posted when a task launches.
const ackBody = "🤖 Working on this now. I will report back here when done."

// TrackerAPI is the slice of the Linear client the reporter needs.
type TrackerAPI interface {
	CreateComment(ctx context.Context, issueID, body string) error
	MoveToStarted(ctx context.Context, issueID, teamID string) error
}

// Reporter formats task outcomes and posts them to the tracker.
type Reporter struct {
	api      TrackerAPI
	enricher *PREnricher
}

// Option is a functional option for configuring the reporter.
type Option func(*Reporter) error

// WithPREnricher enables best-effort pull-request link enrichment.
func WithPREnricher(e *PREnricher) Option {
	return func(r *Reporter) error {
		if e == nil {
			return errors.New("enricher cannot be nil")
		}
		r.enricher = e
		return nil
	}
}

// New constructs a Reporter.
func New(api TrackerAPI, opts ...Option) (*Reporter, error) {
	if api == nil {
		return nil, errors.New("tracker API cannot be nil")
	}
	r := &Reporter{api: api}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}
	return r, nil
}

// Acknowledge posts the "working on it" comment and moves the issue
// into its team's started state. Both are best-effort.
func (r *Reporter) Acknowledge(ctx context.Context, issueID, teamID string) {
	log := clog.FromContext(ctx)

	if err := r.api.CreateComment(ctx, issueID, ackBody); err != nil {
		log.With("issue", issueID).With("error", err).
			Warn("Failed to post acknowledgment comment")
	}
	if teamID == "" {
		return
	}
	if err := r.api.MoveToStarted(ctx, issueID, teamID); err != nil {
		log.With("issue", issueID).With("error", err).
			Warn("Failed to move issue to started state")
	}
}

// Report formats the task result and posts it as a single comment.
// Posting failures are logged, never propagated.
func (r *Reporter) Report(ctx context.Context, issueID string, res result.TaskResult) {
	body := r.format(ctx, res)
	if err := r.api.CreateComment(ctx, issueID, body); err != nil {
		clog.FromContext(ctx).With("issue", issueID).With("error", err).
			Warn("Failed to post result comment")
	}
}

// format renders the comment body for a result, truncated to the
// comment size budget.
func (r *Reporter) format(ctx context.Context, res result.TaskResult) string {
	var sb strings.Builder

	if res.Success {
		sb.WriteString("🤖 **Task complete**\n")
		if res.PRURL != "" {
			sb.WriteString("\n")
			sb.WriteString(r.prLink(ctx, res.PRURL))
			sb.WriteString("\n")
		}
		if res.Summary != "" {
			sb.WriteString("\n" + res.Summary + "\n")
		}
		writeList(&sb, "Assumptions", res.Assumptions)
		writeList(&sb, "Open questions", res.Questions)
	} else {
		sb.WriteString("🤖 **Task failed**\n")
		if res.Error != "" {
			sb.WriteString("\n**Error:** " + res.Error + "\n")
		}
		if res.Summary != "" {
			sb.WriteString("\n```\n" + res.Summary + "\n```\n")
		}
	}

	return Truncate(sb.String())
}

// prLink renders the pull-request link, enriched with the PR title
// when possible.
func (r *Reporter) prLink(ctx context.Context, prURL string) string {
	if r.enricher != nil {
		if desc, ok := r.enricher.Describe(ctx, prURL); ok {
			return fmt.Sprintf("[%s](%s)", desc, prURL)
		}
	}
	return fmt.Sprintf("[View pull request](%s)", prURL)
}

func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n**%s**\n", heading)
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
}

// Truncate cuts body to the comment size limit, appending the
// truncation marker when anything was dropped. The cut backs up to a
// rune boundary so the posted body stays valid UTF-8.
func Truncate(body string) string {
	if len(body) <= maxCommentChars {
		return body
	}
	cut := maxCommentChars - len(truncationMarker)
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + truncationMarker
}
