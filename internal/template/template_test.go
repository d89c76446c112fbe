// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/taskdeck/pkg/types"
)

func testTemplateStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(types.TemplateConfig{GlobalDir: dir}, "")
	require.NoError(t, err)
	return s, dir
}

func TestCreateAndGet(t *testing.T) {
	s, dir := testTemplateStore(t)

	tpl, err := s.Create("Bug Fix", "standard bug workflow", []string{"bug"},
		"Fix {{component}} in {{env=staging}}\n")
	require.NoError(t, err)

	assert.NotEmpty(t, tpl.ID)
	assert.Equal(t, filepath.Join(dir, "bug-fix.md"), tpl.Path)

	byName, err := s.Get("Bug Fix")
	require.NoError(t, err)
	assert.Equal(t, tpl.ID, byName.ID)
	assert.Equal(t, "Fix {{component}} in {{env=staging}}\n", byName.Body)
	assert.Equal(t, []string{"bug"}, byName.Labels)

	byID, err := s.Get(tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bug Fix", byID.Name)
}

func TestCreateDuplicateName(t *testing.T) {
	s, _ := testTemplateStore(t)
	_, err := s.Create("refactor", "", nil, "body")
	require.NoError(t, err)
	_, err = s.Create("refactor", "", nil, "other body")
	assert.Error(t, err)
}

func TestProjectTemplatesSearchedFirst(t *testing.T) {
	globalDir := t.TempDir()
	projectDir := t.TempDir()

	global, err := NewStore(types.TemplateConfig{GlobalDir: globalDir}, "")
	require.NoError(t, err)
	_, err = global.Create("release", "", nil, "global body")
	require.NoError(t, err)

	// Hand-written project-local template shadows the global one in order.
	localDir := filepath.Join(projectDir, ".taskdeck", "templates")
	require.NoError(t, os.MkdirAll(localDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "hotfix.md"),
		[]byte("---\nname: hotfix\n---\nlocal body"), 0o644))

	s, err := NewStore(types.TemplateConfig{GlobalDir: globalDir}, projectDir)
	require.NoError(t, err)

	templates, err := s.List()
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "hotfix", templates[0].Name)
	assert.Equal(t, "release", templates[1].Name)
}

func TestListSkipsBrokenTemplates(t *testing.T) {
	s, dir := testTemplateStore(t)
	_, err := s.Create("good", "", nil, "body")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.md"),
		[]byte("---\nname: [unclosed\n---\nbody"), 0o644))

	templates, err := s.List()
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "good", templates[0].Name)
}

func TestNameFallsBackToFilename(t *testing.T) {
	s, dir := testTemplateStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "adhoc.md"),
		[]byte("no frontmatter here"), 0o644))

	tpl, err := s.Get("adhoc")
	require.NoError(t, err)
	assert.Equal(t, "no frontmatter here", tpl.Body)
}

func TestDelete(t *testing.T) {
	s, _ := testTemplateStore(t)
	tpl, err := s.Create("ephemeral", "", nil, "body")
	require.NoError(t, err)

	require.NoError(t, s.Delete("ephemeral"))
	_, err = os.Stat(tpl.Path)
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, s.Delete("ephemeral"))
}

func TestStoreRender(t *testing.T) {
	s, _ := testTemplateStore(t)
	_, err := s.Create("deploy", "", nil, "Deploy {{service}} to {{env=staging}}")
	require.NoError(t, err)

	got, err := s.Render("deploy", map[string]string{"service": "api"})
	require.NoError(t, err)
	assert.Equal(t, "Deploy api to staging", got)

	_, err = s.Render("deploy", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service")
}
