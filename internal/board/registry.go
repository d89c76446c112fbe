// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package board

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/pdiddy/taskdeck/pkg/types"
)

// Registry persists the list of known projects as a JSON file.
type Registry struct {
	path string
}

// NewRegistry returns a registry backed by path. Empty selects
// ~/.config/taskdeck/projects.json.
func NewRegistry(cfg types.RegistryConfig) (*Registry, error) {
	path := cfg.Path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, ".config", "taskdeck", "projects.json")
	}
	return &Registry{path: path}, nil
}

// Load reads all registered projects. A missing file is an empty registry.
func (r *Registry) Load() ([]types.Project, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading registry %s: %w", r.path, err)
	}
	var projects []types.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("parsing registry %s: %w", r.path, err)
	}
	return projects, nil
}

func (r *Registry) save(projects []types.Project) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("creating registry directory: %w", err)
	}
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling registry: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replacing registry: %w", err)
	}
	return nil
}

// Add registers a project directory under a display name. The name must
// be unique; the path is made absolute.
func (r *Registry) Add(name, path string) (types.Project, error) {
	if name == "" {
		return types.Project{}, fmt.Errorf("project name is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return types.Project{}, fmt.Errorf("resolving project path: %w", err)
	}

	projects, err := r.Load()
	if err != nil {
		return types.Project{}, err
	}
	for _, p := range projects {
		if p.Name == name {
			return types.Project{}, fmt.Errorf("project %q already registered", name)
		}
	}

	ts := now().UTC()
	project := types.Project{
		ID:        uuid.NewString(),
		Name:      name,
		Path:      abs,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	projects = append(projects, project)
	if err := r.save(projects); err != nil {
		return types.Project{}, err
	}
	return project, nil
}

// Get resolves a project by id or name.
func (r *Registry) Get(idOrName string) (types.Project, error) {
	projects, err := r.Load()
	if err != nil {
		return types.Project{}, err
	}
	for _, p := range projects {
		if p.ID == idOrName || p.Name == idOrName {
			return p, nil
		}
	}
	return types.Project{}, fmt.Errorf("project %s not found", idOrName)
}

// Remove deletes a project from the registry. The project's files are
// left in place.
func (r *Registry) Remove(idOrName string) error {
	projects, err := r.Load()
	if err != nil {
		return err
	}
	for i, p := range projects {
		if p.ID == idOrName || p.Name == idOrName {
			projects = append(projects[:i], projects[i+1:]...)
			return r.save(projects)
		}
	}
	return fmt.Errorf("project %s not found", idOrName)
}
