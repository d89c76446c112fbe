// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TemplateMeta is the YAML frontmatter of a template file.
type TemplateMeta struct {
	// ID uniquely identifies the template.
	ID string `json:"id" yaml:"id"`

	// Name is the display name shown in listings.
	Name string `json:"name" yaml:"name"`

	// Description explains what the template is for.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Labels are applied to tasks created from the template.
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty"`

	// CreatedAt is set once when the template is created.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// UpdatedAt refreshes on every mutation.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Template is a stored task template: frontmatter metadata plus a
// Markdown body containing {{key=value}} placeholders.
type Template struct {
	TemplateMeta `yaml:",inline"`

	// Body is the Markdown body without the frontmatter delimiters.
	Body string `json:"body" yaml:"body"`

	// Path is the file the template was loaded from. Empty for
	// templates not yet saved.
	Path string `json:"-" yaml:"-"`
}

// Placeholder is one parameter extracted from template or project text.
type Placeholder struct {
	// Key is the parameter name.
	Key string `json:"key" yaml:"key"`

	// Default is the substitution value used when the caller supplies
	// none. Empty when the placeholder was written as {{key}}.
	Default string `json:"default,omitempty" yaml:"default,omitempty"`

	// Options enumerates suggested values beyond the default.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
}
