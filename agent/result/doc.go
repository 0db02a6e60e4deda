/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package result recovers a structured task outcome from the coding
agent's free-form console output.

The agent is instructed to print a single fenced ```json block
describing its outcome, but console output from an LLM-driven tool is
unreliable, so Parse applies graduated heuristics in order and stops at
the first match:

 1. A fenced ```json block is authoritative: it is unmarshaled into
    the result, with success defaulting to false when absent. A block
    that is present but unparseable yields a failed result rather than
    falling through to weaker signals.
 2. A pull-request URL for the configured forge anywhere in the output
    reports success with that URL.
 3. Failure-indicating tokens ("error", "failed", "Error") report
    failure with the trailing slice of output as context.
 4. Otherwise the parse itself failed: report failure with a shorter
    trailing slice.

Step 3 can false-positive on a benign mention of "error" in a success
narrative; that is a known weakness of the heuristic.

ParseStandalone applies the same cascade for tasks that ran without a
repository, except that pull-request URLs are never reported: step 2 is
skipped and a prUrl inside the result block is dropped.
*/
package result
