// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markdown turns free-form Markdown documents into board tasks.
// Each H2 section becomes a task, GFM checklist items become subtasks,
// and "Depends on:" lines record dependencies between sections.
package markdown

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/pdiddy/taskdeck/pkg/types"
)

// dependsPrefix marks a dependency declaration paragraph.
const dependsPrefix = "depends on:"

// ParsedSubtask is one checklist item lifted from a task section.
type ParsedSubtask struct {
	Title string
	Done  bool
}

// ParsedTask is one task section before ids are assigned and
// dependencies resolved.
type ParsedTask struct {
	Title     string
	Body      []string
	DependsOn []string
	Subtasks  []ParsedSubtask
}

// Description joins the accumulated body lines.
func (p ParsedTask) Description() string {
	return strings.TrimSpace(strings.Join(p.Body, "\n"))
}

// engine parses GFM so checklist items surface as TaskCheckBox nodes.
var engine = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Parse splits a Markdown document into task sections. A document with
// no H2 headings yields a single task titled from the H1 heading, or
// from fallbackTitle when there is no heading at all.
func Parse(source []byte, fallbackTitle string) []ParsedTask {
	doc := engine.Parser().Parse(text.NewReader(source))

	var (
		tasks    []ParsedTask
		current  *ParsedTask
		docTitle string
	)

	section := func() *ParsedTask {
		if current == nil {
			title := docTitle
			if title == "" {
				title = fallbackTitle
			}
			tasks = append(tasks, ParsedTask{Title: title})
			current = &tasks[len(tasks)-1]
		}
		return current
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			switch {
			case n.Level == 1 && current == nil && len(tasks) == 0:
				docTitle = nodeText(n, source)
			case n.Level == 2:
				tasks = append(tasks, ParsedTask{Title: nodeText(n, source)})
				current = &tasks[len(tasks)-1]
			default:
				// Deeper headings become part of the section body.
				if current != nil || docTitle != "" || fallbackTitle != "" {
					s := section()
					s.Body = append(s.Body, nodeText(n, source))
				}
			}

		case *ast.Paragraph:
			txt := nodeText(n, source)
			if deps, ok := parseDepends(txt); ok {
				s := section()
				s.DependsOn = append(s.DependsOn, deps...)
				continue
			}
			s := section()
			s.Body = append(s.Body, txt)

		case *ast.List:
			s := section()
			collectListItems(n, source, s)

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			s := section()
			s.Body = append(s.Body, codeText(node, source))
		}
	}

	// Drop an empty synthetic section from an all-heading document.
	if len(tasks) == 0 && (docTitle != "" || fallbackTitle != "") {
		title := docTitle
		if title == "" {
			title = fallbackTitle
		}
		tasks = append(tasks, ParsedTask{Title: title})
	}

	return tasks
}

// collectListItems walks one list: checklist entries become subtasks,
// plain entries join the body as bullet lines.
func collectListItems(list *ast.List, source []byte, s *ParsedTask) {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		if checkbox := findCheckbox(item); checkbox != nil {
			s.Subtasks = append(s.Subtasks, ParsedSubtask{
				Title: strings.TrimSpace(nodeText(item, source)),
				Done:  checkbox.IsChecked,
			})
			continue
		}
		s.Body = append(s.Body, "- "+strings.TrimSpace(nodeText(item, source)))
	}
}

// findCheckbox returns the GFM checkbox of a list item, or nil.
func findCheckbox(item ast.Node) *east.TaskCheckBox {
	block := item.FirstChild()
	if block == nil {
		return nil
	}
	if cb, ok := block.FirstChild().(*east.TaskCheckBox); ok {
		return cb
	}
	return nil
}

// parseDepends recognises "Depends on: a, b" lines (case-insensitive).
func parseDepends(line string) ([]string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(strings.ToLower(trimmed), dependsPrefix) {
		return nil, false
	}
	rest := trimmed[len(dependsPrefix):]
	var deps []string
	for _, name := range strings.Split(rest, ",") {
		if name = strings.TrimSpace(name); name != "" {
			deps = append(deps, name)
		}
	}
	return deps, true
}

// nodeText flattens the text content of a node.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// codeText reassembles a code block's lines.
func codeText(n ast.Node, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return strings.TrimRight(b.String(), "\n")
}

// ToTasks converts parsed sections into board tasks: ids are assigned
// up front so "Depends on" names can resolve against both the incoming
// document and the existing board. Unresolved names warn on warnw and
// are dropped.
func ToTasks(parsed []ParsedTask, existing []types.Task, warnw io.Writer) []types.Task {
	byTitle := make(map[string]string, len(existing)+len(parsed))
	for _, t := range existing {
		byTitle[t.Title] = t.ID
	}

	tasks := make([]types.Task, len(parsed))
	for i, p := range parsed {
		tasks[i] = types.Task{
			ID:          uuid.NewString(),
			Title:       p.Title,
			Description: p.Description(),
		}
		for _, st := range p.Subtasks {
			tasks[i].Subtasks = append(tasks[i].Subtasks, types.Subtask{
				ID:    uuid.NewString(),
				Title: st.Title,
				Done:  st.Done,
			})
		}
		if _, dup := byTitle[p.Title]; !dup {
			byTitle[p.Title] = tasks[i].ID
		}
	}

	for i, p := range parsed {
		for _, name := range p.DependsOn {
			id, ok := byTitle[name]
			if !ok {
				fmt.Fprintf(warnw, "warning: task %q depends on unknown task %q, dropping\n", p.Title, name)
				continue
			}
			if id == tasks[i].ID {
				continue
			}
			tasks[i].Dependencies = append(tasks[i].Dependencies, id)
		}
	}

	return tasks
}
