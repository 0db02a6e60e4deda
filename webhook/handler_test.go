/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// taskRecorder captures TaskFunc invocations for assertions.
type taskRecorder struct {
	mu       sync.Mutex
	comments []*CommentPayload
	done     chan struct{}
}

func newTaskRecorder() *taskRecorder {
	return &taskRecorder{done: make(chan struct{}, 8)}
}

func (r *taskRecorder) run(_ context.Context, comment *CommentPayload) {
	r.mu.Lock()
	r.comments = append(r.comments, comment)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *taskRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.comments)
}

func (r *taskRecorder) waitForTask(t *testing.T) *CommentPayload {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for task launch")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.comments[len(r.comments)-1]
}

func postWebhook(t *testing.T, h http.Handler, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/linear", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var m map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestHandlerAcceptsQualifyingComment(t *testing.T) {
	const secret = "s3cret"
	rec := newTaskRecorder()
	h, err := NewHandler(secret, "@claude", rec.run)
	require.NoError(t, err)

	body := `{"type":"Comment","action":"create","data":{"id":"c-1","body":"@claude fix the bug","issueId":"iss-1"}}`
	resp := postWebhook(t, h, body, sign([]byte(body), secret))

	assert.Equal(t, http.StatusAccepted, resp.Code)
	assert.Equal(t, "accepted", decodeBody(t, resp)["status"])

	comment := rec.waitForTask(t)
	assert.Equal(t, "iss-1", comment.IssueID)
	assert.Equal(t, "c-1", comment.ID)
}

func TestHandlerIgnoresNonQualifyingEvents(t *testing.T) {
	const secret = "s3cret"

	tests := []struct {
		name string
		body string
	}{{
		name: "issue event",
		body: `{"type":"Issue","action":"create","data":{"id":"iss-1","title":"t"}}`,
	}, {
		name: "comment update",
		body: `{"type":"Comment","action":"update","data":{"id":"c-1","body":"@claude","issueId":"iss-1"}}`,
	}, {
		name: "comment without mention",
		body: `{"type":"Comment","action":"create","data":{"id":"c-1","body":"hello","issueId":"iss-1"}}`,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newTaskRecorder()
			h, err := NewHandler(secret, "@claude", rec.run)
			require.NoError(t, err)

			resp := postWebhook(t, h, tt.body, sign([]byte(tt.body), secret))

			assert.Equal(t, http.StatusOK, resp.Code)
			got := decodeBody(t, resp)
			assert.Equal(t, "ignored", got["status"])
			assert.NotEmpty(t, got["reason"])
			assert.Zero(t, rec.count(), "ignored events must not launch tasks")
		})
	}
}

func TestHandlerRejectsBadSignature(t *testing.T) {
	rec := newTaskRecorder()
	h, err := NewHandler("s3cret", "@claude", rec.run)
	require.NoError(t, err)

	body := `{"type":"Comment","action":"create","data":{"id":"c-1","body":"@claude fix","issueId":"iss-1"}}`

	for _, signature := range []string{"", sign([]byte(body), "wrong-secret")} {
		resp := postWebhook(t, h, body, signature)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	}
	assert.Zero(t, rec.count())
}

func TestHandlerRejectsInvalidPayload(t *testing.T) {
	const secret = "s3cret"
	rec := newTaskRecorder()
	h, err := NewHandler(secret, "@claude", rec.run)
	require.NoError(t, err)

	tests := []struct {
		name string
		body string
	}{{
		name: "not json",
		body: `garbage`,
	}, {
		name: "missing type",
		body: `{"action":"create","data":{}}`,
	}, {
		name: "comment missing issue id",
		body: `{"type":"Comment","action":"create","data":{"id":"c-1","body":"@claude fix"}}`,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postWebhook(t, h, tt.body, sign([]byte(tt.body), secret))
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
	assert.Zero(t, rec.count())
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	rec := newTaskRecorder()
	h, err := NewHandler("", "@claude", rec.run)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/webhook/linear", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	HealthHandler("v1.2.3").ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	got := decodeBody(t, w)
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, "v1.2.3", got["version"])

	_, err := time.Parse(time.RFC3339, got["timestamp"])
	assert.NoError(t, err)
}
