/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package linear

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/shurcooL/graphql"
)

const defaultEndpoint = "https://api.linear.app/graphql"

// Client talks to the Linear GraphQL API.
type Client struct {
	endpoint   string
	httpClient *http.Client
	gql        *graphql.Client
}

// Option is a functional option for configuring the client.
type Option func(*Client) error

// WithEndpoint overrides the GraphQL endpoint. Used by tests to point
// the client at a local server.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) error {
		if endpoint == "" {
			return errors.New("endpoint cannot be empty")
		}
		c.endpoint = endpoint
		return nil
	}
}

// WithHTTPClient overrides the HTTP client used for API calls. The
// authorization transport is layered on top of it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client cannot be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// NewClient constructs a Client authenticating with the given API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("api key cannot be empty")
	}

	c := &Client{
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}

	authed := &http.Client{
		Timeout: c.httpClient.Timeout,
		Transport: &apiKeyTransport{
			key:  apiKey,
			base: c.httpClient.Transport,
		},
	}
	c.gql = graphql.NewClient(c.endpoint, authed)

	return c, nil
}

// apiKeyTransport injects the Linear API key into every request.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", t.key)
	return base.RoundTrip(r)
}

// Issue fetches an issue by its API identifier, including state, team,
// and label names.
func (c *Client) Issue(ctx context.Context, issueID string) (*Issue, error) {
	var q struct {
		Issue struct {
			ID          string `graphql:"id"`
			Identifier  string
			Title       string
			Description string
			URL         string `graphql:"url"`
			BranchName  string
			Priority    float64
			State       struct {
				ID   string `graphql:"id"`
				Name string
				Type string
			}
			Team struct {
				ID   string `graphql:"id"`
				Key  string
				Name string
			}
			Labels struct {
				Nodes []struct {
					Name string
				}
			} `graphql:"labels(first: 50)"`
		} `graphql:"issue(id: $id)"`
	}

	vars := map[string]interface{}{
		"id": graphql.String(issueID),
	}
	if err := c.gql.Query(ctx, &q, vars); err != nil {
		return nil, fmt.Errorf("fetching issue %s: %w", issueID, err)
	}

	issue := &Issue{
		ID:          q.Issue.ID,
		Identifier:  q.Issue.Identifier,
		Title:       q.Issue.Title,
		Description: q.Issue.Description,
		URL:         q.Issue.URL,
		BranchName:  q.Issue.BranchName,
		Priority:    q.Issue.Priority,
		State: WorkflowState{
			ID:   q.Issue.State.ID,
			Name: q.Issue.State.Name,
			Type: q.Issue.State.Type,
		},
		TeamID:   q.Issue.Team.ID,
		TeamKey:  q.Issue.Team.Key,
		TeamName: q.Issue.Team.Name,
	}
	for _, label := range q.Issue.Labels.Nodes {
		issue.Labels = append(issue.Labels, label.Name)
	}

	return issue, nil
}

// Comments lists the comments on an issue, sorted by creation time
// ascending, each with its author's display name resolved.
func (c *Client) Comments(ctx context.Context, issueID string) ([]Comment, error) {
	var q struct {
		Issue struct {
			Comments struct {
				Nodes []struct {
					ID        string `graphql:"id"`
					Body      string
					CreatedAt time.Time
					User      struct {
						Name        string
						DisplayName string
					}
				}
			} `graphql:"comments(first: 100)"`
		} `graphql:"issue(id: $id)"`
	}

	vars := map[string]interface{}{
		"id": graphql.String(issueID),
	}
	if err := c.gql.Query(ctx, &q, vars); err != nil {
		return nil, fmt.Errorf("fetching comments for issue %s: %w", issueID, err)
	}

	comments := make([]Comment, 0, len(q.Issue.Comments.Nodes))
	for _, node := range q.Issue.Comments.Nodes {
		author := node.User.DisplayName
		if author == "" {
			author = node.User.Name
		}
		comments = append(comments, Comment{
			ID:         node.ID,
			Body:       node.Body,
			AuthorName: author,
			CreatedAt:  node.CreatedAt,
		})
	}

	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})

	return comments, nil
}

// CreateComment posts a comment on an issue.
func (c *Client) CreateComment(ctx context.Context, issueID, body string) error {
	var m struct {
		CommentCreate struct {
			Success bool
		} `graphql:"commentCreate(input: $input)"`
	}

	vars := map[string]interface{}{
		"input": CommentCreateInput{
			IssueID: issueID,
			Body:    body,
		},
	}
	if err := c.gql.Mutate(ctx, &m, vars); err != nil {
		return fmt.Errorf("creating comment on issue %s: %w", issueID, err)
	}
	if !m.CommentCreate.Success {
		return fmt.Errorf("creating comment on issue %s: API reported failure", issueID)
	}

	return nil
}

// MoveToStarted transitions an issue into its team's first "started"
// workflow state. Teams without a started state leave the issue
// untouched.
func (c *Client) MoveToStarted(ctx context.Context, issueID, teamID string) error {
	state, err := c.startedState(ctx, teamID)
	if err != nil {
		return err
	}
	if state == nil {
		clog.FromContext(ctx).With("team", teamID).
			Warn("Team has no started workflow state, leaving issue state unchanged")
		return nil
	}

	var m struct {
		IssueUpdate struct {
			Success bool
		} `graphql:"issueUpdate(id: $id, input: $input)"`
	}

	vars := map[string]interface{}{
		"id": graphql.String(issueID),
		"input": IssueUpdateInput{
			StateID: state.ID,
		},
	}
	if err := c.gql.Mutate(ctx, &m, vars); err != nil {
		return fmt.Errorf("updating state of issue %s: %w", issueID, err)
	}
	if !m.IssueUpdate.Success {
		return fmt.Errorf("updating state of issue %s: API reported failure", issueID)
	}

	return nil
}

// startedState returns the team's lowest-positioned workflow state of
// type "started", or nil when the team has none.
func (c *Client) startedState(ctx context.Context, teamID string) (*WorkflowState, error) {
	var q struct {
		Team struct {
			States struct {
				Nodes []struct {
					ID       string `graphql:"id"`
					Name     string
					Type     string
					Position float64
				}
			} `graphql:"states(first: 50)"`
		} `graphql:"team(id: $id)"`
	}

	vars := map[string]interface{}{
		"id": graphql.String(teamID),
	}
	if err := c.gql.Query(ctx, &q, vars); err != nil {
		return nil, fmt.Errorf("fetching workflow states for team %s: %w", teamID, err)
	}

	var started *WorkflowState
	for _, node := range q.Team.States.Nodes {
		if node.Type != "started" {
			continue
		}
		if started == nil || node.Position < started.Position {
			started = &WorkflowState{
				ID:       node.ID,
				Name:     node.Name,
				Type:     node.Type,
				Position: node.Position,
			}
		}
	}

	return started, nil
}
