/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPayload is returned when the webhook body does not match
// the expected schema.
var ErrInvalidPayload = errors.New("invalid webhook payload")

// Event is the raw inbound webhook payload. Data stays opaque until
// classification decides which payload shape applies.
type Event struct {
	Action string          `json:"action"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}

// CommentPayload is the data shape of comment events.
type CommentPayload struct {
	ID      string `json:"id"`
	Body    string `json:"body"`
	IssueID string `json:"issueId"`
	UserID  string `json:"userId"`
}

// IssuePayload is the data shape of issue events. The agent ignores
// issue events, but they are part of the recognized schema.
type IssuePayload struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	TeamID string `json:"teamId"`
}

// knownEvents enumerates the {type, action} pairs the schema
// recognizes. Events outside this set are ignored, not rejected.
var knownEvents = map[string]map[string]bool{
	"Comment": {"create": true, "update": true, "remove": true},
	"Issue":   {"create": true, "update": true, "remove": true},
}

// ParseEvent validates the webhook body against the event schema.
// Malformed JSON or missing type/action fields yield ErrInvalidPayload.
func ParseEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if event.Type == "" || event.Action == "" {
		return nil, fmt.Errorf("%w: missing type or action", ErrInvalidPayload)
	}
	return &event, nil
}

// Classification is the outcome of classifying an event. Exactly one of
// Actionable or Reason is meaningful: non-actionable events carry the
// reason they were ignored.
type Classification struct {
	Actionable bool
	Reason     string
	Comment    *CommentPayload
}

// Classify decides whether an event should launch a task. Only comment
// creations whose body mentions the trigger token qualify. A comment
// creation with no issue id is a payload error, not an ignore.
func Classify(event *Event, trigger string) (Classification, error) {
	actions, known := knownEvents[event.Type]
	if !known {
		return Classification{Reason: fmt.Sprintf("unhandled event type %q", event.Type)}, nil
	}
	if !actions[event.Action] {
		return Classification{Reason: fmt.Sprintf("unhandled action %q for type %q", event.Action, event.Type)}, nil
	}

	if event.Type != "Comment" || event.Action != "create" {
		return Classification{Reason: "only comment creation events are processed"}, nil
	}

	var comment CommentPayload
	if err := json.Unmarshal(event.Data, &comment); err != nil {
		return Classification{}, fmt.Errorf("%w: decoding comment data: %v", ErrInvalidPayload, err)
	}
	if comment.IssueID == "" {
		return Classification{}, fmt.Errorf("%w: comment event missing issue id", ErrInvalidPayload)
	}

	if !Mentions(comment.Body, trigger) {
		return Classification{Reason: "comment does not mention the agent"}, nil
	}

	return Classification{Actionable: true, Comment: &comment}, nil
}

// Mentions reports whether body contains the trigger token,
// case-insensitively.
func Mentions(body, trigger string) bool {
	return strings.Contains(strings.ToLower(body), strings.ToLower(trigger))
}
