/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"fmt"
	"maps"
	"regexp"
	"strings"
)

// placeholderPattern matches {{name}} placeholders. Names are plain
// identifiers; anything else inside double braces is a template error.
var placeholderPattern = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)

// Prompt is an immutable template with named placeholders. Bind
// returns a new Prompt; the receiver is never modified.
type Prompt struct {
	template string
	names    map[string]struct{}
	bound    map[string]string
}

// New parses a template and collects its placeholder names.
func New(template string) (*Prompt, error) {
	stripped := placeholderPattern.ReplaceAllString(template, "")
	if idx := strings.Index(stripped, "{{"); idx >= 0 {
		return nil, fmt.Errorf("malformed placeholder near %q", snippet(stripped[idx:]))
	}

	names := make(map[string]struct{})
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		names[m[1]] = struct{}{}
	}

	return &Prompt{
		template: template,
		names:    names,
		bound:    map[string]string{},
	}, nil
}

// Names returns the set of placeholder names in the template.
func (p *Prompt) Names() map[string]struct{} {
	return maps.Clone(p.names)
}

// Bind attaches a value to a placeholder, returning a new Prompt.
// Binding an unknown or already-bound name is an error.
func (p *Prompt) Bind(name, value string) (*Prompt, error) {
	if _, ok := p.names[name]; !ok {
		return nil, fmt.Errorf("unknown placeholder %q", name)
	}
	if _, ok := p.bound[name]; ok {
		return nil, fmt.Errorf("placeholder %q is already bound", name)
	}

	next := &Prompt{
		template: p.template,
		names:    p.names,
		bound:    maps.Clone(p.bound),
	}
	next.bound[name] = value
	return next, nil
}

// Build substitutes all bindings into the template. Every placeholder
// must be bound.
func (p *Prompt) Build() (string, error) {
	for name := range p.names {
		if _, ok := p.bound[name]; !ok {
			return "", fmt.Errorf("placeholder %q is unbound", name)
		}
	}

	return placeholderPattern.ReplaceAllStringFunc(p.template, func(match string) string {
		name := match[2 : len(match)-2]
		return p.bound[name]
	}), nil
}

func snippet(s string) string {
	if len(s) > 20 {
		return s[:20]
	}
	return s
}
