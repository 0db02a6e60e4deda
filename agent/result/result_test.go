/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseCascade(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   TaskResult
	}{{
		name: "json block is authoritative",
		output: "I did some work.\n```json\n" +
			`{"success": true, "summary": "x"}` + "\n```\nAll done.",
		want: TaskResult{Success: true, Summary: "x"},
	}, {
		name: "json block with all fields",
		output: "```json\n" + `{
			"success": true,
			"prUrl": "https://github.com/acme/widgets/pull/7",
			"summary": "fixed it",
			"assumptions": ["prod config unchanged"],
			"questions": ["should this be backported?"]
		}` + "\n```",
		want: TaskResult{
			Success:     true,
			PRURL:       "https://github.com/acme/widgets/pull/7",
			Summary:     "fixed it",
			Assumptions: []string{"prod config unchanged"},
			Questions:   []string{"should this be backported?"},
		},
	}, {
		name:   "json block missing success defaults to false",
		output: "```json\n{\"summary\": \"did things\"}\n```",
		want:   TaskResult{Success: false, Summary: "did things"},
	}, {
		name:   "json block wins over surrounding pr url",
		output: "see https://github.com/acme/widgets/pull/9\n```json\n{\"success\": false, \"error\": \"tests broke\"}\n```",
		want:   TaskResult{Success: false, Error: "tests broke"},
	}, {
		name:   "pr url without json block",
		output: "Opened https://github.com/acme/widgets/pull/42 for review.",
		want: TaskResult{
			Success: true,
			PRURL:   "https://github.com/acme/widgets/pull/42",
			Summary: "Task completed; a pull request was opened.",
		},
	}, {
		name:   "failure token",
		output: "cloning...\nfatal: repository not found\nerror: exit 128",
		want: TaskResult{
			Success: false,
			Error:   "task reported errors",
			Summary: "cloning...\nfatal: repository not found\nerror: exit 128",
		},
	}, {
		name:   "capitalized failure token",
		output: "Error: something went sideways",
		want: TaskResult{
			Success: false,
			Error:   "task reported errors",
			Summary: "Error: something went sideways",
		},
	}, {
		name:   "nothing recognizable",
		output: "la la la doing great things",
		want: TaskResult{
			Success: false,
			Error:   "could not parse output",
			Summary: "la la la doing great things",
		},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.output, "github.com")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseUnparseableBlockDoesNotFallThrough(t *testing.T) {
	// A present-but-broken block must not fall through to URL sniffing.
	output := "```json\n{not json at all\n```\nhttps://github.com/acme/widgets/pull/5"
	got := Parse(output, "github.com")

	assert.False(t, got.Success)
	assert.Contains(t, got.Error, "could not parse result block")
	assert.Empty(t, got.PRURL)
}

func TestParseForgeHost(t *testing.T) {
	output := "done: https://github.example.com/acme/widgets/pull/3"

	got := Parse(output, "github.example.com")
	assert.True(t, got.Success)
	assert.Equal(t, "https://github.example.com/acme/widgets/pull/3", got.PRURL)

	// The same output against the default host has no recognizable PR
	// URL and no failure token.
	got = Parse(output, "")
	assert.False(t, got.Success)
	assert.Equal(t, "could not parse output", got.Error)
}

func TestParseStandalone(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   TaskResult
	}{{
		name:   "pr url in output is not sniffed",
		output: "Opened https://github.com/acme/widgets/pull/42 for review.",
		want: TaskResult{
			Success: false,
			Error:   "could not parse output",
			Summary: "Opened https://github.com/acme/widgets/pull/42 for review.",
		},
	}, {
		name:   "pr url in result block is dropped",
		output: "```json\n" + `{"success": true, "prUrl": "https://github.com/acme/widgets/pull/7", "summary": "done"}` + "\n```",
		want:   TaskResult{Success: true, Summary: "done"},
	}, {
		name:   "failure tokens still apply",
		output: "error: nothing to do",
		want: TaskResult{
			Success: false,
			Error:   "task reported errors",
			Summary: "error: nothing to do",
		},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseStandalone(tt.output)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseStandalone() mismatch (-want +got):\n%s", diff)
			}
			assert.Empty(t, got.PRURL)
		})
	}
}

func TestParseTrailingSlices(t *testing.T) {
	long := strings.Repeat("x", 5000) + " failed"
	got := Parse(long, "")
	assert.False(t, got.Success)
	assert.Len(t, got.Summary, failureContextChars)
	assert.True(t, strings.HasSuffix(got.Summary, " failed"))

	long = strings.Repeat("y", 5000)
	got = Parse(long, "")
	assert.Equal(t, "could not parse output", got.Error)
	assert.Len(t, got.Summary, parseContextChars)
}

func TestTrailingSliceRuneBoundary(t *testing.T) {
	// 🤖 is four bytes; a budget of 999 bytes lands mid-rune and must
	// advance to the next boundary instead of splitting it.
	s := strings.Repeat("🤖", 500)
	got := trailingSlice(s, 999)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 999)
	assert.True(t, strings.HasPrefix(got, "🤖"))

	// ASCII input cuts exactly at the budget.
	assert.Len(t, trailingSlice(strings.Repeat("x", 50), 10), 10)
}

func TestFencedJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		wantFound bool
	}{{
		name:      "block with surrounding text",
		input:     "before\n```json\n{\"a\": 1}\n```\nafter",
		want:      `{"a": 1}`,
		wantFound: true,
	}, {
		name:      "no block",
		input:     `{"plain": "json"}`,
		wantFound: false,
	}, {
		name:      "unterminated block runs to end",
		input:     "```json\n{\"a\": 1}",
		want:      `{"a": 1}`,
		wantFound: true,
	}, {
		name:      "first of several blocks",
		input:     "```json\n{\"first\": true}\n```\n```json\n{\"second\": true}\n```",
		want:      `{"first": true}`,
		wantFound: true,
	}, {
		name:      "windows line endings",
		input:     "```json\r\n{\"a\": 1}\r\n```\r\n",
		want:      `{"a": 1}`,
		wantFound: true,
	}, {
		name:      "empty block",
		input:     "```json\n```",
		want:      "",
		wantFound: true,
	}, {
		name:      "generic fence is not a json block",
		input:     "```\n{\"a\": 1}\n```",
		wantFound: false,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := fencedJSON(tt.input)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.want, got)
		})
	}
}
