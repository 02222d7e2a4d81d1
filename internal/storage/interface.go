package storage

import (
	"context"

	"github.com/julianstephens/cadence/internal/models"
)

// Provider is the persistence port consumed by the tracker service.
// Lookups of missing rows return errors.ErrNotFound (wrapped).
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	AddHabit(ctx context.Context, habit models.Habit) error
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	GetHabitByName(ctx context.Context, name string) (models.Habit, error)
	GetAllHabits(ctx context.Context, includeArchived, includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(ctx context.Context, habit models.Habit) error
	ArchiveHabit(ctx context.Context, id string) error
	UnarchiveHabit(ctx context.Context, id string) error
	DeleteHabit(ctx context.Context, id string) error
	RestoreHabit(ctx context.Context, id string) error
	// PurgeHabit removes a habit and all of its completions permanently.
	PurgeHabit(ctx context.Context, id string) error

	// Completions
	AddCompletion(ctx context.Context, completion models.Completion) error
	RemoveCompletion(ctx context.Context, habitID, day string) error
	GetCompletions(ctx context.Context, habitID string) ([]models.Completion, error)
	GetAllCompletions(ctx context.Context) ([]models.Completion, error)

	// Tasks
	AddTask(ctx context.Context, task models.Task) error
	GetTask(ctx context.Context, id string) (models.Task, error)
	GetAllTasks(ctx context.Context) ([]models.Task, error)
	// FindTasks returns every task whose title and due date match exactly.
	FindTasks(ctx context.Context, title, dueDate string) ([]models.Task, error)
	UpdateTask(ctx context.Context, task models.Task) error
	DeleteTask(ctx context.Context, id string) error

	// Utils
	GetConfigPath() string
}
