/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Trailing-slice budgets for diagnostic context when structured
// parsing fails.
const (
	failureContextChars = 1000
	parseContextChars   = 500
)

// defaultForgeHost is used when no forge host is configured.
const defaultForgeHost = "github.com"

// failureTokens are the case-sensitive substrings that downgrade
// otherwise unparseable output to an explicit failure in step 3 of the
// cascade.
var failureTokens = []string{"error", "failed", "Error"}

// TaskResult is the structured outcome of one automation run.
type TaskResult struct {
	Success     bool     `json:"success"`
	PRURL       string   `json:"prUrl,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Assumptions []string `json:"assumptions,omitempty"`
	Questions   []string `json:"questions,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Parse recovers a TaskResult from raw console output using the
// graduated cascade described in the package documentation. forgeHost
// selects the pull-request URL pattern; empty means github.com.
func Parse(output, forgeHost string) TaskResult {
	return parse(output, forgeHost, true)
}

// ParseStandalone recovers a TaskResult for a task that ran without a
// repository. No clone means no pull request, so PR URLs are never
// reported regardless of what the output claims: the URL-sniffing step
// is skipped and any prUrl in the result block is dropped.
func ParseStandalone(output string) TaskResult {
	return parse(output, "", false)
}

func parse(output, forgeHost string, allowPR bool) TaskResult {
	if block, ok := fencedJSON(output); ok {
		var res TaskResult
		if err := json.Unmarshal([]byte(block), &res); err != nil {
			return TaskResult{
				Success: false,
				Error:   fmt.Sprintf("could not parse result block: %v", err),
				Summary: trailingSlice(output, parseContextChars),
			}
		}
		if !allowPR {
			res.PRURL = ""
		}
		return res
	}

	if allowPR {
		if url := findPullRequestURL(output, forgeHost); url != "" {
			return TaskResult{
				Success: true,
				PRURL:   url,
				Summary: "Task completed; a pull request was opened.",
			}
		}
	}

	for _, token := range failureTokens {
		if strings.Contains(output, token) {
			return TaskResult{
				Success: false,
				Error:   "task reported errors",
				Summary: trailingSlice(output, failureContextChars),
			}
		}
	}

	return TaskResult{
		Success: false,
		Error:   "could not parse output",
		Summary: trailingSlice(output, parseContextChars),
	}
}

// findPullRequestURL returns the first pull-request URL for the forge
// host found in text, or the empty string.
func findPullRequestURL(text, forgeHost string) string {
	if forgeHost == "" {
		forgeHost = defaultForgeHost
	}
	pattern := regexp.MustCompile(
		`https://` + regexp.QuoteMeta(forgeHost) + `/[\w.-]+/[\w.-]+/pull/\d+`)
	return pattern.FindString(text)
}

// trailingSlice returns at most the last n bytes of s, advancing past
// a partial rune at the cut so the slice stays valid UTF-8.
func trailingSlice(s string, n int) string {
	if len(s) <= n {
		return s
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}
