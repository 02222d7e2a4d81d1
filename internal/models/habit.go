package models

import (
	"time"

	"github.com/julianstephens/cadence/internal/schedule"
)

// Habit is a recurring activity with a weekly schedule and a total completion goal
type Habit struct {
	ID            string           `json:"id" yaml:"id" db:"id"`
	Name          string           `json:"name" yaml:"name" db:"name"`
	Description   string           `json:"description" yaml:"description,omitempty" db:"description"`
	StartDate     string           `json:"start_date" yaml:"start_date" db:"start_date"` // YYYY-MM-DD format
	Pattern       schedule.Pattern `json:"target_days" yaml:"target_days" db:"target_days"`
	GoalCount     int              `json:"habit_days" yaml:"habit_days" db:"habit_days"`
	CoverImageURL string           `json:"cover_image_url,omitempty" yaml:"cover_image_url,omitempty" db:"cover_image_url"`
	CreatedAt     time.Time        `json:"created_at" yaml:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" yaml:"updated_at" db:"updated_at"`
	ArchivedAt    *time.Time       `json:"archived_at,omitempty" yaml:"archived_at,omitempty" db:"archived_at"`
	DeletedAt     *time.Time       `json:"deleted_at,omitempty" yaml:"deleted_at,omitempty" db:"deleted_at"`
}

// IsArchived reports whether the habit has reached its terminal "goal met" state
func (h Habit) IsArchived() bool {
	return h.ArchivedAt != nil
}

// IsDeleted reports whether the habit has been soft deleted
func (h Habit) IsDeleted() bool {
	return h.DeletedAt != nil
}

// Start parses StartDate as a civil date
func (h Habit) Start() (time.Time, error) {
	return schedule.ParseDate(h.StartDate)
}

// Completion marks a habit as done on a day. Absence means not done.
type Completion struct {
	HabitID   string    `json:"habit_id" yaml:"habit_id" db:"habit_id"`
	Day       string    `json:"completed_date" yaml:"completed_date" db:"completed_date"` // YYYY-MM-DD format
	CreatedAt time.Time `json:"created_at" yaml:"created_at" db:"created_at"`
}
