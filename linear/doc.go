/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package linear provides a typed client for the Linear GraphQL API.

The client covers the small slice of the API the agent pipeline needs:
fetching an issue with its team, state, and labels, listing the issue's
comments with resolved author names, creating comments, and moving an
issue into its team's "started" workflow state.

Authentication uses a personal or OAuth API key carried verbatim in the
Authorization header, which is how the Linear API expects it (no Bearer
prefix).

# Usage

	client, err := linear.NewClient(apiKey)
	if err != nil {
		log.Fatal(err)
	}

	issue, err := client.Issue(ctx, "issue-uuid")
	if err != nil {
		log.Fatal(err)
	}

	comments, err := client.Comments(ctx, issue.ID)
*/
package linear
