// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TaskStatus tracks a task's position on the board.
type TaskStatus string

const (
	StatusBacklog    TaskStatus = "backlog"
	StatusQueued     TaskStatus = "queued"
	StatusInProgress TaskStatus = "in_progress"
	StatusInReview   TaskStatus = "in_review"
	StatusDone       TaskStatus = "done"
	StatusError      TaskStatus = "error"
)

// TaskStatuses lists every valid status in board order.
var TaskStatuses = []TaskStatus{
	StatusBacklog, StatusQueued, StatusInProgress,
	StatusInReview, StatusDone, StatusError,
}

// TaskPriority orders tasks within a board column.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Subtask is a checklist entry belonging to a task.
type Subtask struct {
	// ID uniquely identifies the subtask within its task.
	ID string `json:"id" yaml:"id"`

	// Title is the checklist line.
	Title string `json:"title" yaml:"title"`

	// Done marks the entry as completed.
	Done bool `json:"done" yaml:"done"`
}

// Task is one card on a project board.
type Task struct {
	// ID uniquely identifies the task within its project.
	ID string `json:"id" yaml:"id"`

	// Title is the card headline.
	Title string `json:"title" yaml:"title"`

	// Description is the free-form task body (Markdown).
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Status is the board column: backlog, queued, in_progress,
	// in_review, done, or error.
	Status TaskStatus `json:"status" yaml:"status"`

	// Priority orders the card within its column.
	Priority TaskPriority `json:"priority" yaml:"priority"`

	// Labels are free-form tags used for filtering and search.
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty"`

	// Dependencies lists ids of tasks that must finish first.
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`

	// Subtasks is the card's checklist.
	Subtasks []Subtask `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`

	// CreatedAt is set once when the task is created.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// UpdatedAt refreshes on every mutation.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Project is one entry in the project registry.
type Project struct {
	// ID uniquely identifies the project.
	ID string `json:"id" yaml:"id"`

	// Name is the display name.
	Name string `json:"name" yaml:"name"`

	// Path is the absolute project directory (contains .taskdeck/).
	Path string `json:"path" yaml:"path"`

	// CreatedAt is set once when the project is registered.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// UpdatedAt refreshes on every mutation.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}
