package models

import (
	"time"

	"github.com/julianstephens/cadence/internal/constants"
)

// Task is an external to-do record mirrored from habit completions.
// It is linked to a habit by (Title == habit name, DueDate == completion day).
type Task struct {
	ID          string               `json:"id" db:"id"`
	Title       string               `json:"title" db:"title"`
	DueDate     string               `json:"due_date" db:"due_date"` // YYYY-MM-DD format
	IsCompleted bool                 `json:"is_completed" db:"is_completed"`
	CompletedAt *time.Time           `json:"completed_at,omitempty" db:"completed_at"`
	Status      constants.TaskStatus `json:"status" db:"status"`
	CreatedAt   time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at" db:"updated_at"`
}

// MarkCompleted sets the completed flag, timestamp and status together
func (t *Task) MarkCompleted(at time.Time) {
	t.IsCompleted = true
	t.CompletedAt = &at
	t.Status = constants.TaskStatusCompleted
	t.UpdatedAt = at
}

// MarkOngoing clears the completion state
func (t *Task) MarkOngoing(at time.Time) {
	t.IsCompleted = false
	t.CompletedAt = nil
	t.Status = constants.TaskStatusOngoing
	t.UpdatedAt = at
}
