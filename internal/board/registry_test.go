// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package board

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/taskdeck/pkg/types"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(types.RegistryConfig{
		Path: filepath.Join(t.TempDir(), "projects.json"),
	})
	require.NoError(t, err)
	return r
}

func TestRegistryAddGetRemove(t *testing.T) {
	r := testRegistry(t)

	p, err := r.Add("webapp", ".")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.True(t, filepath.IsAbs(p.Path))

	byName, err := r.Get("webapp")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byName.ID)

	byID, err := r.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "webapp", byID.Name)

	require.NoError(t, r.Remove("webapp"))
	_, err = r.Get("webapp")
	assert.Error(t, err)
}

func TestRegistryDuplicateName(t *testing.T) {
	r := testRegistry(t)

	_, err := r.Add("webapp", ".")
	require.NoError(t, err)
	_, err = r.Add("webapp", "/elsewhere")
	assert.Error(t, err)
}

func TestRegistryMissingFileIsEmpty(t *testing.T) {
	r := testRegistry(t)
	projects, err := r.Load()
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestRegistryRemoveUnknown(t *testing.T) {
	r := testRegistry(t)
	err := r.Remove("ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}
