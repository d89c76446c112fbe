// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package board

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/taskdeck/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir())
}

func mustCreate(t *testing.T, s *Store, title string) types.Task {
	t.Helper()
	task, err := s.Create(CreateTaskInput{Title: title})
	require.NoError(t, err)
	return task
}

func TestCreate(t *testing.T) {
	s := testStore(t)

	task, err := s.Create(CreateTaskInput{
		Title:       "Wire login flow",
		Description: "OAuth against the staging IdP",
		Labels:      []string{"auth"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, types.StatusBacklog, task.Status)
	assert.Equal(t, types.PriorityMedium, task.Priority)
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)

	// The board file holds a bare JSON array.
	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	var onDisk []types.Task
	require.NoError(t, json.Unmarshal(data, &onDisk))
	require.Len(t, onDisk, 1)
	assert.Equal(t, task.ID, onDisk[0].ID)
}

func TestCreateValidation(t *testing.T) {
	s := testStore(t)

	tests := []struct {
		name string
		in   CreateTaskInput
	}{
		{name: "missing title", in: CreateTaskInput{}},
		{name: "bad priority", in: CreateTaskInput{Title: "x", Priority: "urgent"}},
		{name: "unknown dependency", in: CreateTaskInput{Title: "x", Dependencies: []string{"nope"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFileIsEmptyBoard(t *testing.T) {
	s := testStore(t)
	tasks, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestGetUnknownID(t *testing.T) {
	s := testStore(t)
	mustCreate(t, s, "a")
	_, err := s.Get("missing-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing-id")
}

func TestUpdateRefreshesUpdatedAt(t *testing.T) {
	s := testStore(t)

	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	now = func() time.Time { return t0 }
	t.Cleanup(func() { now = time.Now })

	task := mustCreate(t, s, "a")

	now = func() time.Time { return t0.Add(time.Hour) }
	title := "b"
	updated, err := s.Update(task.ID, UpdateTaskInput{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "b", updated.Title)
	assert.Equal(t, t0, updated.CreatedAt)
	assert.Equal(t, t0.Add(time.Hour), updated.UpdatedAt)
}

func TestUpdateValidation(t *testing.T) {
	s := testStore(t)
	task := mustCreate(t, s, "a")

	empty := ""
	_, err := s.Update(task.ID, UpdateTaskInput{Title: &empty})
	assert.Error(t, err)

	bad := types.TaskStatus("shipped")
	_, err = s.Update(task.ID, UpdateTaskInput{Status: &bad})
	assert.Error(t, err)
}

func TestMove(t *testing.T) {
	s := testStore(t)
	task := mustCreate(t, s, "a")

	moved, err := s.Move(task.ID, types.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, types.StatusInProgress, moved.Status)

	_, err = s.Move(task.ID, "sideways")
	assert.Error(t, err)
}

func TestDeleteStripsDanglingDependencies(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, "a")
	b := mustCreate(t, s, "b")

	deps := []string{a.ID}
	_, err := s.Update(b.ID, UpdateTaskInput{Dependencies: &deps})
	require.NoError(t, err)

	require.NoError(t, s.Delete(a.ID))

	remaining, err := s.Get(b.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining.Dependencies)
}

func TestDependencyChecks(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, "a")

	self := []string{a.ID}
	_, err := s.Update(a.ID, UpdateTaskInput{Dependencies: &self})
	assert.Error(t, err, "self-dependency rejected")

	_, err = s.Create(CreateTaskInput{Title: "b", Dependencies: []string{a.ID}})
	assert.NoError(t, err)
}

func TestListFilters(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, "a")
	mustCreate(t, s, "b")

	labels := []string{"infra"}
	_, err := s.Update(a.ID, UpdateTaskInput{Labels: &labels})
	require.NoError(t, err)
	_, err = s.Move(a.ID, types.StatusQueued)
	require.NoError(t, err)

	all, err := s.List(ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	queued, err := s.List(ListFilter{Status: types.StatusQueued})
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, a.ID, queued[0].ID)

	infra, err := s.List(ListFilter{Label: "infra"})
	require.NoError(t, err)
	require.Len(t, infra, 1)
	assert.Equal(t, a.ID, infra[0].ID)

	none, err := s.List(ListFilter{Status: types.StatusDone})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSubtasks(t *testing.T) {
	s := testStore(t)
	task := mustCreate(t, s, "a")

	withSub, err := s.AddSubtask(task.ID, "write tests")
	require.NoError(t, err)
	require.Len(t, withSub.Subtasks, 1)
	assert.False(t, withSub.Subtasks[0].Done)

	toggled, err := s.ToggleSubtask(task.ID, withSub.Subtasks[0].ID)
	require.NoError(t, err)
	assert.True(t, toggled.Subtasks[0].Done)

	_, err = s.ToggleSubtask(task.ID, "missing")
	assert.Error(t, err)

	_, err = s.AddSubtask(task.ID, "")
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	s := testStore(t)

	saved, err := s.Import([]types.Task{
		{Title: "first", Status: types.StatusDone, Subtasks: []types.Subtask{{Title: "sub"}}},
		{Title: "second"},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)

	// Imported tasks are reassigned ids and reset to backlog.
	assert.NotEmpty(t, saved[0].ID)
	assert.Equal(t, types.StatusBacklog, saved[0].Status)
	assert.NotEmpty(t, saved[0].Subtasks[0].ID)

	all, err := s.List(ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUniqueIDs(t *testing.T) {
	s := testStore(t)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		task := mustCreate(t, s, "task")
		require.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}
}

func TestCorruptBoardFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, DataDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DataDir, tasksFile), []byte("{not json"), 0o644))

	s := NewStore(dir)
	_, err := s.Load()
	assert.Error(t, err)
}
