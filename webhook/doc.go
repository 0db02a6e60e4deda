/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package webhook implements the inbound Linear webhook surface: request
signature verification, payload validation, event classification, and
the HTTP handler that launches one background task per qualifying
comment.

A request qualifies when it is a comment-creation event whose body
mentions the trigger token (case-insensitive). Everything else is
acknowledged with an explicit "ignored" reason so Linear does not
retry the delivery.
*/
package webhook
