// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package board persists a project's task board as a JSON file and
// implements every board mutation: the whole file is read, changed in
// memory, and written back atomically.
package board

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/taskdeck/pkg/types"
)

const (
	// DataDir is the per-project taskdeck directory.
	DataDir = ".taskdeck"

	tasksFile = "tasks.json"
)

// now is the clock; tests substitute a fixed time.
var now = time.Now

// Store manages one project's tasks.json.
type Store struct {
	path string
}

// NewStore returns a store for the given project directory. The board
// file is created lazily on first save.
func NewStore(projectDir string) *Store {
	return &Store{path: filepath.Join(projectDir, DataDir, tasksFile)}
}

// Path returns the board file location.
func (s *Store) Path() string { return s.path }

// Load reads the full board. A missing file is an empty board.
func (s *Store) Load() ([]types.Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading board %s: %w", s.path, err)
	}
	var tasks []types.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parsing board %s: %w", s.path, err)
	}
	return tasks, nil
}

// save writes the board back through a temp-file rename so a crashed
// write cannot leave a truncated board behind.
func (s *Store) save(tasks []types.Task) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating board directory: %w", err)
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling board: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing board: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing board: %w", err)
	}
	return nil
}

// Create validates the input, appends a new backlog task, and saves.
func (s *Store) Create(in CreateTaskInput) (types.Task, error) {
	if err := in.Validate(); err != nil {
		return types.Task{}, err
	}

	tasks, err := s.Load()
	if err != nil {
		return types.Task{}, err
	}
	if err := checkDependencies(tasks, in.Dependencies, ""); err != nil {
		return types.Task{}, err
	}

	priority := in.Priority
	if priority == "" {
		priority = types.PriorityMedium
	}

	ts := now().UTC()
	task := types.Task{
		ID:           uuid.NewString(),
		Title:        in.Title,
		Description:  in.Description,
		Status:       types.StatusBacklog,
		Priority:     priority,
		Labels:       in.Labels,
		Dependencies: in.Dependencies,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	tasks = append(tasks, task)
	if err := s.save(tasks); err != nil {
		return types.Task{}, err
	}
	return task, nil
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (types.Task, error) {
	tasks, err := s.Load()
	if err != nil {
		return types.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return types.Task{}, fmt.Errorf("task %s not found", id)
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	Status types.TaskStatus
	Label  string
}

// List returns tasks in board-file order, optionally filtered.
func (s *Store) List(f ListFilter) ([]types.Task, error) {
	tasks, err := s.Load()
	if err != nil {
		return nil, err
	}
	if f.Status == "" && f.Label == "" {
		return tasks, nil
	}
	var out []types.Task
	for _, t := range tasks {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Label != "" && !hasLabel(t, f.Label) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Update applies the non-nil fields of in to the task and saves.
func (s *Store) Update(id string, in UpdateTaskInput) (types.Task, error) {
	if err := in.Validate(); err != nil {
		return types.Task{}, err
	}

	tasks, err := s.Load()
	if err != nil {
		return types.Task{}, err
	}

	i := indexOf(tasks, id)
	if i < 0 {
		return types.Task{}, fmt.Errorf("task %s not found", id)
	}

	if in.Dependencies != nil {
		if err := checkDependencies(tasks, *in.Dependencies, id); err != nil {
			return types.Task{}, err
		}
		tasks[i].Dependencies = *in.Dependencies
	}
	if in.Title != nil {
		tasks[i].Title = *in.Title
	}
	if in.Description != nil {
		tasks[i].Description = *in.Description
	}
	if in.Status != nil {
		tasks[i].Status = *in.Status
	}
	if in.Priority != nil {
		tasks[i].Priority = *in.Priority
	}
	if in.Labels != nil {
		tasks[i].Labels = *in.Labels
	}
	tasks[i].UpdatedAt = now().UTC()

	if err := s.save(tasks); err != nil {
		return types.Task{}, err
	}
	return tasks[i], nil
}

// Move transitions the task to the given status.
func (s *Store) Move(id string, status types.TaskStatus) (types.Task, error) {
	if !validStatus(status) {
		return types.Task{}, fmt.Errorf("invalid status %q", status)
	}
	return s.Update(id, UpdateTaskInput{Status: &status})
}

// Delete removes the task and strips any dependency references other
// tasks held on it.
func (s *Store) Delete(id string) error {
	tasks, err := s.Load()
	if err != nil {
		return err
	}

	i := indexOf(tasks, id)
	if i < 0 {
		return fmt.Errorf("task %s not found", id)
	}
	tasks = append(tasks[:i], tasks[i+1:]...)

	ts := now().UTC()
	for j := range tasks {
		kept := tasks[j].Dependencies[:0]
		for _, dep := range tasks[j].Dependencies {
			if dep != id {
				kept = append(kept, dep)
			}
		}
		if len(kept) != len(tasks[j].Dependencies) {
			tasks[j].Dependencies = kept
			tasks[j].UpdatedAt = ts
		}
	}

	return s.save(tasks)
}

// AddSubtask appends a checklist entry to the task.
func (s *Store) AddSubtask(taskID, title string) (types.Task, error) {
	if title == "" {
		return types.Task{}, fmt.Errorf("subtask title is required")
	}

	tasks, err := s.Load()
	if err != nil {
		return types.Task{}, err
	}
	i := indexOf(tasks, taskID)
	if i < 0 {
		return types.Task{}, fmt.Errorf("task %s not found", taskID)
	}

	tasks[i].Subtasks = append(tasks[i].Subtasks, types.Subtask{
		ID:    uuid.NewString(),
		Title: title,
	})
	tasks[i].UpdatedAt = now().UTC()

	if err := s.save(tasks); err != nil {
		return types.Task{}, err
	}
	return tasks[i], nil
}

// ToggleSubtask flips the done state of one checklist entry.
func (s *Store) ToggleSubtask(taskID, subtaskID string) (types.Task, error) {
	tasks, err := s.Load()
	if err != nil {
		return types.Task{}, err
	}
	i := indexOf(tasks, taskID)
	if i < 0 {
		return types.Task{}, fmt.Errorf("task %s not found", taskID)
	}

	for j := range tasks[i].Subtasks {
		if tasks[i].Subtasks[j].ID == subtaskID {
			tasks[i].Subtasks[j].Done = !tasks[i].Subtasks[j].Done
			tasks[i].UpdatedAt = now().UTC()
			if err := s.save(tasks); err != nil {
				return types.Task{}, err
			}
			return tasks[i], nil
		}
	}
	return types.Task{}, fmt.Errorf("subtask %s not found on task %s", subtaskID, taskID)
}

// Import appends pre-built tasks (from the markdown importer) in order
// with backlog status. Tasks arriving without ids get fresh ones; the
// importer pre-assigns ids when it had to resolve dependencies between
// the incoming tasks.
func (s *Store) Import(incoming []types.Task) ([]types.Task, error) {
	tasks, err := s.Load()
	if err != nil {
		return nil, err
	}

	ts := now().UTC()
	saved := make([]types.Task, 0, len(incoming))
	for _, t := range incoming {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		t.Status = types.StatusBacklog
		if t.Priority == "" {
			t.Priority = types.PriorityMedium
		}
		for j := range t.Subtasks {
			if t.Subtasks[j].ID == "" {
				t.Subtasks[j].ID = uuid.NewString()
			}
		}
		t.CreatedAt = ts
		t.UpdatedAt = ts
		tasks = append(tasks, t)
		saved = append(saved, t)
	}

	if err := s.save(tasks); err != nil {
		return nil, err
	}
	return saved, nil
}

func indexOf(tasks []types.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func hasLabel(t types.Task, label string) bool {
	for _, l := range t.Labels {
		if l == label {
			return true
		}
	}
	return false
}

func validStatus(s types.TaskStatus) bool {
	for _, v := range types.TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// checkDependencies verifies every dependency id names an existing task
// other than self.
func checkDependencies(tasks []types.Task, deps []string, self string) error {
	for _, dep := range deps {
		if dep == self {
			return fmt.Errorf("task cannot depend on itself")
		}
		if indexOf(tasks, dep) < 0 {
			return fmt.Errorf("dependency %s not found", dep)
		}
	}
	return nil
}
