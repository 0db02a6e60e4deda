/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package promptbuilder renders the instruction document handed to the
coding agent.

It has two layers: a small immutable template engine with {{name}}
placeholders and explicit bindings, and the Task renderer that binds an
issuecontext.IssueContext into the task template. Build fails on
unbound placeholders, so a template edit that adds a placeholder
without a matching binding is caught immediately rather than shipping
a literal "{{name}}" to the agent.

Rendering is a pure function of its inputs; the package performs no
network or file I/O.
*/
package promptbuilder
