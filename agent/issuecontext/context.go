/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package issuecontext

import (
	"time"

	"github.com/tidegate/linear-agent/linear"
)

// IssueContext is an immutable snapshot of everything the agent needs
// to work on one triggered request.
//
// Invariant: exactly one entry in Comments has IsTrigger set, and its
// ID equals TriggerComment.ID.
type IssueContext struct {
	Issue          linear.Issue
	Comments       []Comment
	TriggerComment TriggerComment

	// Repository is nil in standalone mode.
	Repository *Repository
}

// Comment is one entry in the issue's comment history, ordered by
// creation time ascending.
type Comment struct {
	ID         string
	Body       string
	AuthorName string
	CreatedAt  time.Time
	IsTrigger  bool
}

// TriggerComment is the comment whose mention launched the task.
// Instruction is the comment body with the mention token stripped; when
// the token is absent the whole body is used verbatim.
type TriggerComment struct {
	ID          string
	Body        string
	AuthorName  string
	Instruction string
}

// Repository is a resolved reference to the repository the agent
// should operate on.
type Repository struct {
	URL   string
	Owner string
	Name  string
}
