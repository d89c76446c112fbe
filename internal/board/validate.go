// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package board

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/pdiddy/taskdeck/pkg/types"
)

// CreateTaskInput is the validated request shape for Store.Create.
// Status is not accepted: new tasks always start in backlog.
type CreateTaskInput struct {
	Title        string
	Description  string
	Priority     types.TaskPriority
	Labels       []string
	Dependencies []string
}

// Validate checks the input against the closed value sets.
func (in CreateTaskInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required.Error("title is required")),
		validation.Field(&in.Priority, validation.In(
			types.PriorityLow, types.PriorityMedium, types.PriorityHigh,
		).Error("priority must be low, medium, or high")),
	)
}

// UpdateTaskInput is the validated request shape for Store.Update.
// Nil fields are left untouched.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *types.TaskStatus
	Priority     *types.TaskPriority
	Labels       *[]string
	Dependencies *[]string
}

// Validate checks the supplied fields against the closed value sets.
func (in UpdateTaskInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.By(func(v any) error {
			if p, ok := v.(*string); ok && p != nil && *p == "" {
				return validation.NewError("taskdeck.board.title_empty", "title cannot be empty")
			}
			return nil
		})),
		validation.Field(&in.Status, validation.By(func(v any) error {
			p, ok := v.(*types.TaskStatus)
			if !ok || p == nil {
				return nil
			}
			if !validStatus(*p) {
				return validation.NewError("taskdeck.board.bad_status", "invalid status")
			}
			return nil
		})),
		validation.Field(&in.Priority, validation.By(func(v any) error {
			p, ok := v.(*types.TaskPriority)
			if !ok || p == nil {
				return nil
			}
			switch *p {
			case types.PriorityLow, types.PriorityMedium, types.PriorityHigh:
				return nil
			}
			return validation.NewError("taskdeck.board.bad_priority", "priority must be low, medium, or high")
		})),
	)
}
