/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"fmt"
	"strings"

	"github.com/tidegate/linear-agent/agent/issuecontext"
)

// commentTail is how many of the most recent comments are included in
// the prompt.
const commentTail = 10

// fallbackTeamToken substitutes for the team key in branch names when
// the issue has no team key.
const fallbackTeamToken = "task"

// autoCommentMarkers identify comments this service posted itself
// (acknowledgments, results). They are excluded from the prompt so the
// agent does not react to its own output.
var autoCommentMarkers = []string{"🤖"}

const taskTemplate = `# Linear Issue {{identifier}}: {{title}}

## Description

{{description}}

{{repository}}

## Recent comments

{{comments}}

## Request

{{instruction}}

## Branch

If you create a branch, name it ` + "`{{branch}}`" + `.

## Completion

When you are completely done, print exactly one fenced code block of the form:

` + "```json" + `
{
  "success": true,
  "prUrl": "https://github.com/owner/repo/pull/123",
  "summary": "One paragraph describing what you changed and why.",
  "assumptions": ["any assumptions you made"],
  "questions": ["any open questions for the reporter"]
}
` + "```" + `

Set "success" to false and include an "error" field if you could not
complete the request. Omit "prUrl" if you did not open a pull request.
This block is parsed by a machine; print it exactly once.
`

// Task renders the instruction document for one issue context. It is a
// pure, deterministic function of its input.
func Task(ic *issuecontext.IssueContext) (string, error) {
	prompt, err := New(taskTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing task template: %w", err)
	}

	description := strings.TrimSpace(ic.Issue.Description)
	if description == "" {
		description = "_No description provided._"
	}

	for name, value := range map[string]string{
		"identifier":  ic.Issue.Identifier,
		"title":       ic.Issue.Title,
		"description": description,
		"repository":  repositoryNote(ic),
		"comments":    renderComments(ic.Comments),
		"instruction": ic.TriggerComment.Instruction,
		"branch":      BranchName(ic),
	} {
		if prompt, err = prompt.Bind(name, value); err != nil {
			return "", fmt.Errorf("binding task template: %w", err)
		}
	}

	return prompt.Build()
}

// BranchName suggests the working branch: the issue's stored branch
// name when Linear provides one, otherwise <team-key>/<identifier>
// lowercased with a generic fallback team token.
func BranchName(ic *issuecontext.IssueContext) string {
	if ic.Issue.BranchName != "" {
		return ic.Issue.BranchName
	}

	team := strings.ToLower(ic.Issue.TeamKey)
	if team == "" {
		team = fallbackTeamToken
	}
	return fmt.Sprintf("%s/%s", team, strings.ToLower(ic.Issue.Identifier))
}

// repositoryNote tells the agent whether it is working in a clone or
// standalone.
func repositoryNote(ic *issuecontext.IssueContext) string {
	if ic.Repository == nil {
		return "No repository is associated with this task. Work within the current directory."
	}
	return fmt.Sprintf("You are working in a clone of %s/%s.", ic.Repository.Owner, ic.Repository.Name)
}

// renderComments formats the tail of the comment history, excluding
// comments this service generated itself.
func renderComments(comments []issuecontext.Comment) string {
	filtered := make([]issuecontext.Comment, 0, len(comments))
	for _, c := range comments {
		if isAutoComment(c.Body) {
			continue
		}
		filtered = append(filtered, c)
	}

	if len(filtered) > commentTail {
		filtered = filtered[len(filtered)-commentTail:]
	}
	if len(filtered) == 0 {
		return "_No comments._"
	}

	var sb strings.Builder
	for i, c := range filtered {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "- **%s** (%s): %s\n", c.AuthorName, c.CreatedAt.UTC().Format("2006-01-02 15:04"), c.Body)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func isAutoComment(body string) bool {
	for _, marker := range autoCommentMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}
