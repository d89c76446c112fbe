// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package template

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/taskdeck/pkg/types"
)

// now is the clock; tests substitute a fixed time.
var now = time.Now

// Store reads and writes template files. Each template is one Markdown
// file with YAML frontmatter. The project directory (when set) is
// searched before the global directory; new templates are written to
// the global directory.
type Store struct {
	globalDir  string
	projectDir string
}

// NewStore returns a template store. projectDir may be empty for
// commands run outside a project.
func NewStore(cfg types.TemplateConfig, projectDir string) (*Store, error) {
	globalDir := cfg.GlobalDir
	if globalDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		globalDir = filepath.Join(home, ".config", "taskdeck", "templates")
	}
	s := &Store{globalDir: globalDir}
	if projectDir != "" {
		s.projectDir = filepath.Join(projectDir, ".taskdeck", "templates")
	}
	return s, nil
}

func (s *Store) searchDirs() []string {
	if s.projectDir != "" {
		return []string{s.projectDir, s.globalDir}
	}
	return []string{s.globalDir}
}

// List returns all templates, project-local first, sorted by name
// within each directory. A missing directory contributes nothing.
func (s *Store) List() ([]types.Template, error) {
	var out []types.Template
	for _, dir := range s.searchDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading template directory %s: %w", dir, err)
		}

		var batch []types.Template
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
				continue
			}
			tpl, err := loadFile(filepath.Join(dir, e.Name()))
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: skipping template %s: %v\n", e.Name(), err)
				continue
			}
			batch = append(batch, tpl)
		}
		sort.Slice(batch, func(i, j int) bool { return batch[i].Name < batch[j].Name })
		out = append(out, batch...)
	}
	return out, nil
}

// Get resolves a template by id or name.
func (s *Store) Get(idOrName string) (types.Template, error) {
	templates, err := s.List()
	if err != nil {
		return types.Template{}, err
	}
	for _, tpl := range templates {
		if tpl.ID == idOrName || tpl.Name == idOrName {
			return tpl, nil
		}
	}
	return types.Template{}, fmt.Errorf("template %s not found", idOrName)
}

// Create writes a new template to the global directory.
func (s *Store) Create(name, description string, labels []string, body string) (types.Template, error) {
	if name == "" {
		return types.Template{}, fmt.Errorf("template name is required")
	}
	if _, err := s.Get(name); err == nil {
		return types.Template{}, fmt.Errorf("template %q already exists", name)
	}

	ts := now().UTC()
	tpl := types.Template{
		TemplateMeta: types.TemplateMeta{
			ID:          uuid.NewString(),
			Name:        name,
			Description: description,
			Labels:      labels,
			CreatedAt:   ts,
			UpdatedAt:   ts,
		},
		Body: body,
	}

	if err := os.MkdirAll(s.globalDir, 0o755); err != nil {
		return types.Template{}, fmt.Errorf("creating template directory: %w", err)
	}
	tpl.Path = filepath.Join(s.globalDir, slug(name)+".md")
	if err := writeFile(tpl); err != nil {
		return types.Template{}, err
	}
	return tpl, nil
}

// Delete removes a template file by id or name.
func (s *Store) Delete(idOrName string) error {
	tpl, err := s.Get(idOrName)
	if err != nil {
		return err
	}
	if err := os.Remove(tpl.Path); err != nil {
		return fmt.Errorf("deleting template %s: %w", tpl.Name, err)
	}
	return nil
}

// Render instantiates the template body with the given parameter values.
func (s *Store) Render(idOrName string, values map[string]string) (string, error) {
	tpl, err := s.Get(idOrName)
	if err != nil {
		return "", err
	}
	rendered, err := Render(tpl.Body, values)
	if err != nil {
		return "", fmt.Errorf("rendering template %s: %w", tpl.Name, err)
	}
	return rendered, nil
}

// loadFile parses one template file: YAML frontmatter plus body.
func loadFile(path string) (types.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Template{}, fmt.Errorf("reading template: %w", err)
	}

	var meta types.TemplateMeta
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return types.Template{}, fmt.Errorf("parsing frontmatter: %w", err)
	}
	if meta.Name == "" {
		meta.Name = strings.TrimSuffix(filepath.Base(path), ".md")
	}

	return types.Template{
		TemplateMeta: meta,
		Body:         string(body),
		Path:         path,
	}, nil
}

func writeFile(tpl types.Template) error {
	meta, err := yaml.Marshal(&tpl.TemplateMeta)
	if err != nil {
		return fmt.Errorf("marshaling template metadata: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(meta)
	buf.WriteString("---\n")
	buf.WriteString(tpl.Body)

	if err := os.WriteFile(tpl.Path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing template %s: %w", tpl.Path, err)
	}
	return nil
}

var dashRuns = regexp.MustCompile(`-+`)

// slug returns a filesystem-safe filename stem for a template name.
func slug(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, name)
	return strings.Trim(dashRuns.ReplaceAllString(mapped, "-"), "-")
}
