/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package issuecontext

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"

	"github.com/tidegate/linear-agent/linear"
)

// ErrTriggerNotFound is returned when the comment that triggered the
// webhook cannot be found in the issue's comment list. That indicates
// tracker-side inconsistency: the comment must be retrievable via the
// list endpoint it was delivered from.
var ErrTriggerNotFound = errors.New("trigger comment not found on issue")

// IssueAPI is the slice of the tracker client the fetcher needs.
type IssueAPI interface {
	Issue(ctx context.Context, issueID string) (*linear.Issue, error)
	Comments(ctx context.Context, issueID string) ([]linear.Comment, error)
}

// Fetcher assembles IssueContext snapshots from the tracker API.
type Fetcher struct {
	api      IssueAPI
	trigger  string
	resolver *Resolver
}

// NewFetcher constructs a Fetcher. trigger is the mention token that
// activates the agent.
func NewFetcher(api IssueAPI, trigger string, resolver *Resolver) (*Fetcher, error) {
	if api == nil {
		return nil, errors.New("issue API cannot be nil")
	}
	if trigger == "" {
		return nil, errors.New("trigger token cannot be empty")
	}
	if resolver == nil {
		resolver = NewResolver("", nil)
	}
	return &Fetcher{api: api, trigger: trigger, resolver: resolver}, nil
}

// Fetch builds the consolidated context for one triggered request.
func (f *Fetcher) Fetch(ctx context.Context, issueID, triggerCommentID string) (*IssueContext, error) {
	log := clog.FromContext(ctx)

	issue, err := f.api.Issue(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("fetching issue: %w", err)
	}

	raw, err := f.api.Comments(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("fetching comments: %w", err)
	}

	comments := make([]Comment, 0, len(raw))
	var trigger *TriggerComment
	for _, c := range raw {
		isTrigger := c.ID == triggerCommentID
		comments = append(comments, Comment{
			ID:         c.ID,
			Body:       c.Body,
			AuthorName: c.AuthorName,
			CreatedAt:  c.CreatedAt,
			IsTrigger:  isTrigger,
		})
		if isTrigger {
			trigger = &TriggerComment{
				ID:          c.ID,
				Body:        c.Body,
				AuthorName:  c.AuthorName,
				Instruction: ExtractInstruction(c.Body, f.trigger),
			}
		}
	}

	if trigger == nil {
		return nil, fmt.Errorf("%w: comment %s on issue %s", ErrTriggerNotFound, triggerCommentID, issueID)
	}

	repo := f.resolver.Resolve(issue)
	if repo == nil {
		log.With("issue", issue.Identifier).Info("No repository reference resolved, running in standalone mode")
	} else {
		log.With("issue", issue.Identifier).With("repository", repo.Owner+"/"+repo.Name).Info("Resolved repository reference")
	}

	return &IssueContext{
		Issue:          *issue,
		Comments:       comments,
		TriggerComment: *trigger,
		Repository:     repo,
	}, nil
}

// ExtractInstruction strips the first case-insensitive occurrence of
// the mention token from body and trims surrounding whitespace. When
// the token is absent the entire body is returned verbatim, so a
// trigger routed through other means still yields an instruction.
func ExtractInstruction(body, trigger string) string {
	idx := strings.Index(strings.ToLower(body), strings.ToLower(trigger))
	if idx < 0 {
		return body
	}
	return strings.TrimSpace(body[:idx] + body[idx+len(trigger):])
}
