// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package template stores task templates and implements the placeholder
// parameter parser used to instantiate them.
package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/taskdeck/pkg/types"
)

// placeholderPattern matches {{key}}, {{key=default}}, and
// {{key=default,opt2,...}}. Text that fails the grammar (bad key,
// unbalanced braces, braces inside the value) does not match and is
// left as literal text.
var placeholderPattern = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_-]*)(?:=([^{}]*))?\}\}`)

// Extract scans text in a single pass and returns its placeholders in
// order of first appearance. Duplicate keys collapse to the first
// occurrence; later defaults are ignored.
func Extract(text string) []types.Placeholder {
	var (
		out  []types.Placeholder
		seen = map[string]bool{}
	)
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		key := m[1]
		if seen[key] {
			continue
		}
		seen[key] = true

		p := types.Placeholder{Key: key}
		if m[2] != "" {
			values := strings.Split(m[2], ",")
			p.Default = strings.TrimSpace(values[0])
			for _, opt := range values[1:] {
				if opt = strings.TrimSpace(opt); opt != "" {
					p.Options = append(p.Options, opt)
				}
			}
		}
		out = append(out, p)
	}
	return out
}

// Render substitutes placeholders in text. Supplied values win over
// defaults; defaults come from the collapsed placeholder set, so every
// occurrence of a key resolves to the first occurrence's default no
// matter where (or whether) a later occurrence carries one. If any key
// has neither a value nor a default, Render fails naming all of them.
func Render(text string, values map[string]string) (string, error) {
	defaults := map[string]string{}
	for _, p := range Extract(text) {
		if p.Default != "" {
			defaults[p.Key] = p.Default
		}
	}

	unresolved := map[string]bool{}

	rendered := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		m := placeholderPattern.FindStringSubmatch(match)
		key := m[1]

		if v, ok := values[key]; ok {
			return v
		}
		if d, ok := defaults[key]; ok {
			return d
		}
		unresolved[key] = true
		return match
	})

	if len(unresolved) > 0 {
		keys := make([]string, 0, len(unresolved))
		for k := range unresolved {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("unresolved placeholders: %s", strings.Join(keys, ", "))
	}
	return rendered, nil
}
