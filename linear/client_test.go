/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package linear

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLinear returns a GraphQL stub that routes on the operation inside
// the posted query and records the last Authorization header seen.
func fakeLinear(t *testing.T, lastAuth *string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*lastAuth = r.Header.Get("Authorization")

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req struct {
			Query     string          `json:"query"`
			Variables json.RawMessage `json:"variables"`
		}
		require.NoError(t, json.Unmarshal(body, &req))

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(req.Query, "commentCreate"):
			io.WriteString(w, `{"data":{"commentCreate":{"success":true}}}`)

		case strings.Contains(req.Query, "issueUpdate"):
			io.WriteString(w, `{"data":{"issueUpdate":{"success":true}}}`)

		case strings.Contains(req.Query, "states"):
			io.WriteString(w, `{"data":{"team":{"states":{"nodes":[
				{"id":"st-2","name":"In Review","type":"started","position":2},
				{"id":"st-1","name":"In Progress","type":"started","position":1},
				{"id":"st-0","name":"Backlog","type":"backlog","position":0}
			]}}}}`)

		case strings.Contains(req.Query, "comments"):
			io.WriteString(w, `{"data":{"issue":{"comments":{"nodes":[
				{"id":"c-2","body":"@claude fix this","createdAt":"2026-02-01T10:00:00.000Z","user":{"name":"alex","displayName":"Alex"}},
				{"id":"c-1","body":"first report","createdAt":"2026-01-01T10:00:00.000Z","user":{"name":"sam","displayName":""}}
			]}}}}`)

		case strings.Contains(req.Query, "issue("):
			io.WriteString(w, `{"data":{"issue":{
				"id":"iss-1","identifier":"ENG-42","title":"Fix the widget",
				"description":"It is broken","url":"https://linear.app/acme/issue/ENG-42",
				"branchName":"eng-42-fix-the-widget","priority":2,
				"state":{"id":"st-0","name":"Backlog","type":"backlog"},
				"team":{"id":"team-1","key":"ENG","name":"Engineering"},
				"labels":{"nodes":[{"name":"bug"},{"name":"repo:acme/widgets"}]}
			}}}`)

		default:
			t.Errorf("unexpected query: %s", req.Query)
			http.Error(w, "unexpected query", http.StatusBadRequest)
		}
	}))
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)

	_, err = NewClient("key", WithEndpoint(""))
	assert.Error(t, err)

	_, err = NewClient("key", WithHTTPClient(nil))
	assert.Error(t, err)
}

func TestIssue(t *testing.T) {
	var auth string
	srv := fakeLinear(t, &auth)
	defer srv.Close()

	client, err := NewClient("lin_api_test", WithEndpoint(srv.URL))
	require.NoError(t, err)

	issue, err := client.Issue(context.Background(), "iss-1")
	require.NoError(t, err)

	want := &Issue{
		ID:          "iss-1",
		Identifier:  "ENG-42",
		Title:       "Fix the widget",
		Description: "It is broken",
		URL:         "https://linear.app/acme/issue/ENG-42",
		BranchName:  "eng-42-fix-the-widget",
		Priority:    2,
		State:       WorkflowState{ID: "st-0", Name: "Backlog", Type: "backlog"},
		TeamID:      "team-1",
		TeamKey:     "ENG",
		TeamName:    "Engineering",
		Labels:      []string{"bug", "repo:acme/widgets"},
	}
	if diff := cmp.Diff(want, issue); diff != "" {
		t.Errorf("Issue() mismatch (-want +got):\n%s", diff)
	}

	// The Linear API key rides in the Authorization header verbatim.
	assert.Equal(t, "lin_api_test", auth)
}

func TestCommentsSortedAscending(t *testing.T) {
	var auth string
	srv := fakeLinear(t, &auth)
	defer srv.Close()

	client, err := NewClient("lin_api_test", WithEndpoint(srv.URL))
	require.NoError(t, err)

	comments, err := client.Comments(context.Background(), "iss-1")
	require.NoError(t, err)
	require.Len(t, comments, 2)

	// The stub returns them newest-first; the client must sort ascending.
	assert.Equal(t, "c-1", comments[0].ID)
	assert.Equal(t, "c-2", comments[1].ID)
	assert.True(t, comments[0].CreatedAt.Before(comments[1].CreatedAt))

	// DisplayName wins when set, falls back to the account name.
	assert.Equal(t, "sam", comments[0].AuthorName)
	assert.Equal(t, "Alex", comments[1].AuthorName)

	assert.Equal(t, time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC), comments[0].CreatedAt.UTC())
}

func TestCreateComment(t *testing.T) {
	var auth string
	srv := fakeLinear(t, &auth)
	defer srv.Close()

	client, err := NewClient("lin_api_test", WithEndpoint(srv.URL))
	require.NoError(t, err)

	require.NoError(t, client.CreateComment(context.Background(), "iss-1", "done"))
}

func TestMoveToStartedPicksLowestPosition(t *testing.T) {
	var auth string
	srv := fakeLinear(t, &auth)
	defer srv.Close()

	client, err := NewClient("lin_api_test", WithEndpoint(srv.URL))
	require.NoError(t, err)

	state, err := client.startedState(context.Background(), "team-1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "st-1", state.ID)
	assert.Equal(t, "In Progress", state.Name)

	require.NoError(t, client.MoveToStarted(context.Background(), "iss-1", "team-1"))
}
