/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package issuecontext assembles the consolidated view of a Linear issue
that the agent consumes: issue metadata, the ordered comment history,
the comment that triggered the run with its extracted instruction, and
a best-effort repository reference.

The snapshot is built once per triggered webhook and treated as
read-only downstream. Absence of a repository reference is a valid
state (standalone mode), not an error.
*/
package issuecontext
