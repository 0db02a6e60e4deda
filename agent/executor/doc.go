/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package executor runs the coding agent CLI against a prepared prompt
and returns its raw console output.

A Provider is selected once at construction time from configuration:
Local spawns the CLI on this host inside a per-task workspace, Sandbox
creates an ephemeral remote execution environment per task and deletes
it afterward regardless of outcome.

Each task walks a linear sequence: create workspace, clone the
repository (skipped in standalone mode), configure the git identity,
write the prompt, spawn the tool, collect output, clean up. The tool
must run fully non-interactively: its standard input is never piped.
A wall-clock timeout bounds execution; on expiry the process receives
a termination signal and the task fails with ErrTimeout.

The provider does not interpret the tool's exit code. A nonzero exit
still returns the captured output so the result parser can decide what
happened; only spawn errors, clone failures, and timeouts are errors.
*/
package executor
