// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the entity and configuration structs shared across
// taskdeck components.
package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "taskdeck/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RegistryConfig holds settings for the project registry.
type RegistryConfig struct {
	// Path is the registry file location. Empty selects
	// ~/.config/taskdeck/projects.json.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// TemplateConfig holds settings for the template store.
type TemplateConfig struct {
	// GlobalDir is the shared template directory. Empty selects
	// ~/.config/taskdeck/templates/. A project's .taskdeck/templates/
	// directory, when present, is searched first.
	GlobalDir string `json:"global_dir,omitempty" yaml:"global_dir,omitempty"`
}

// VaultConfig holds settings for the credential vault.
type VaultConfig struct {
	// KeyFile points at a file whose contents are the vault passphrase.
	// The TASKDECK_VAULT_KEY environment variable takes precedence.
	KeyFile string `json:"key_file,omitempty" yaml:"key_file,omitempty"`
}

// IndexConfig holds settings for the task search index.
type IndexConfig struct {
	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// GuardConfig holds settings for the shell command guard.
type GuardConfig struct {
	// StrictMode removes shell-spawning commands from the allowlist and
	// validates network commands. The TASKDECK_STRICT environment
	// variable also enables it.
	StrictMode bool `json:"strict_mode" yaml:"strict_mode"`
}

// GitLabConfig holds client settings for the merge-request commands.
// Credentials come from the per-project config file, not from here.
type GitLabConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxRetries is the number of retry attempts on rate-limited calls
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// Config groups all component configurations.
type Config struct {
	Registry  RegistryConfig `json:"registry" yaml:"registry"`
	Templates TemplateConfig `json:"templates" yaml:"templates"`
	Vault     VaultConfig    `json:"vault" yaml:"vault"`
	Index     IndexConfig    `json:"index" yaml:"index"`
	Guard     GuardConfig    `json:"guard" yaml:"guard"`
	GitLab    GitLabConfig   `json:"gitlab" yaml:"gitlab"`
}
