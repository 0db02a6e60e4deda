/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package linear

import "time"

// Issue is a snapshot of a Linear issue with the fields the agent
// pipeline consumes. Labels carry names only.
type Issue struct {
	ID          string
	Identifier  string
	Title       string
	Description string
	URL         string
	BranchName  string
	Priority    float64
	State       WorkflowState
	TeamID      string
	TeamKey     string
	TeamName    string
	Labels      []string
}

// WorkflowState identifies a single state in a team's workflow.
// Type is one of Linear's state categories (triage, backlog, unstarted,
// started, completed, canceled).
type WorkflowState struct {
	ID       string
	Name     string
	Type     string
	Position float64
}

// Comment is a single issue comment with its author resolved to a
// display name.
type Comment struct {
	ID         string
	Body       string
	AuthorName string
	CreatedAt  time.Time
}

// CommentCreateInput is the input object for the commentCreate mutation.
// The type name must match the GraphQL input type.
type CommentCreateInput struct {
	IssueID string `json:"issueId"`
	Body    string `json:"body"`
}

// IssueUpdateInput is the input object for the issueUpdate mutation.
type IssueUpdateInput struct {
	StateID string `json:"stateId"`
}
