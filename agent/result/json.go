/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package result

import "strings"

// fencedJSON returns the content of the first ```json fenced block in
// text. The opening marker must sit on its own line; the block runs to
// the next ``` line or, for truncated output, to the end of text.
// found is false when the text contains no ```json marker at all.
func fencedJSON(text string) (content string, found bool) {
	lines := strings.Split(text, "\n")

	start := -1
	for i, line := range lines {
		if strings.TrimRight(line, "\r") == "```json" {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return "", false
	}

	end := len(lines)
	for i := start; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == "```" {
			end = i
			break
		}
	}

	var body []string
	for _, line := range lines[start:end] {
		body = append(body, strings.TrimRight(line, "\r"))
	}

	return strings.TrimSpace(strings.Join(body, "\n")), true
}
