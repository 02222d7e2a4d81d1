// Package mirror keeps external task records in step with habit completions.
//
// Tasks are linked to habits by value: a task mirrors a habit's completion on
// a day when its title equals the habit name and its due date equals the day.
// Renaming a habit therefore breaks the link for existing tasks.
package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/schedule"
)

// Command is the intended end state of every task matching (Title, Day).
// It is never a toggle, so replaying it after a failure cannot invert the result.
type Command struct {
	Title     string
	Day       time.Time
	Completed bool
	IssuedAt  time.Time
}

type key struct {
	title string
	day   string
}

func (c Command) key() key {
	return key{title: c.Title, day: schedule.FormatDate(c.Day)}
}

func (c Command) String() string {
	state := "ongoing"
	if c.Completed {
		state = "completed"
	}
	return fmt.Sprintf("%s@%s=%s", c.Title, schedule.FormatDate(c.Day), state)
}

// TaskStore is the part of storage.Provider the bridge writes through
type TaskStore interface {
	FindTasks(ctx context.Context, title, dueDate string) ([]models.Task, error)
	UpdateTask(ctx context.Context, task models.Task) error
}

// Applier writes one command to the external task list
type Applier interface {
	Apply(ctx context.Context, cmd Command) (int, error)
}

// Bridge applies commands synchronously against a TaskStore
type Bridge struct {
	store TaskStore
	now   func() time.Time
}

func NewBridge(store TaskStore) *Bridge {
	return &Bridge{store: store, now: time.Now}
}

// Apply sets every matching task to the commanded state and returns how many
// were written. No matching task is not an error; nothing is created.
func (b *Bridge) Apply(ctx context.Context, cmd Command) (int, error) {
	tasks, err := b.store.FindTasks(ctx, cmd.Title, schedule.FormatDate(cmd.Day))
	if err != nil {
		return 0, fmt.Errorf("failed to find tasks for %s: %w", cmd, err)
	}

	updated := 0
	for _, task := range tasks {
		if cmd.Completed {
			at := cmd.IssuedAt
			if at.IsZero() {
				at = b.now()
			}
			task.MarkCompleted(at.UTC())
		} else {
			task.MarkOngoing(b.now().UTC())
		}
		if err := b.store.UpdateTask(ctx, task); err != nil {
			return updated, fmt.Errorf("failed to update task %s: %w", task.ID, err)
		}
		updated++
	}
	return updated, nil
}
