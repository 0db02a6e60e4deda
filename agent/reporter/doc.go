/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package reporter posts the agent's outcomes back to the originating
Linear issue.

Every comment the reporter writes starts with the agent marker so the
prompt builder can exclude it from future prompts. Posting failures
are logged and swallowed: a failed acknowledgment or result post never
crashes the request pipeline, which is the last stop for errors in the
asynchronous task path.

When a result carries a GitHub pull-request URL and a forge token is
configured, the reporter enriches the link with the PR's number and
title, best-effort.
*/
package reporter
