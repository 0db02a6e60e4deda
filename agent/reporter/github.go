/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package reporter

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"golang.org/x/oauth2"
)

// prURLPattern matches a GitHub pull request URL and captures the
// owner, repository, and PR number.
var prURLPattern = regexp.MustCompile(`^https://github\.com/([\w.-]+)/([\w.-]+)/pull/(\d+)$`)

// PREnricher looks up pull-request metadata so result comments can
// carry a descriptive link instead of a bare URL.
type PREnricher struct {
	client *github.Client
}

// NewPREnricher constructs an enricher authenticated with token.
func NewPREnricher(ctx context.Context, token string) *PREnricher {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &PREnricher{
		client: github.NewClient(oauth2.NewClient(ctx, ts)),
	}
}

// Describe returns a short description like "#42: Fix the frobnicator"
// for prURL. The second return is false when the URL is not a GitHub
// pull request or the lookup fails; lookups are best-effort and never
// block a result comment.
func (e *PREnricher) Describe(ctx context.Context, prURL string) (string, bool) {
	m := prURLPattern.FindStringSubmatch(prURL)
	if m == nil {
		return "", false
	}
	owner, repo := m[1], m[2]
	number, err := strconv.Atoi(m[3])
	if err != nil {
		return "", false
	}

	pr, _, err := e.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		clog.FromContext(ctx).With("url", prURL).With("error", err).
			Debug("Failed to fetch pull request metadata")
		return "", false
	}
	return fmt.Sprintf("#%d: %s", pr.GetNumber(), pr.GetTitle()), true
}
