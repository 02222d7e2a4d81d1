// Package memory is a process-local storage provider used for dry runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/models"
)

type completionKey struct {
	habitID string
	day     string
}

type Store struct {
	mu          sync.RWMutex
	habits      map[string]models.Habit
	completions map[completionKey]models.Completion
	tasks       map[string]models.Task
}

func NewStore() *Store {
	return &Store{
		habits:      make(map[string]models.Habit),
		completions: make(map[completionKey]models.Completion),
		tasks:       make(map[string]models.Task),
	}
}

func (s *Store) Init() error  { return nil }
func (s *Store) Load() error  { return nil }
func (s *Store) Close() error { return nil }

func (s *Store) GetConfigPath() string {
	return ":memory:"
}

func missing(kind, key string) error {
	return fmt.Errorf("%s %q: %w", kind, key, errors.ErrNotFound)
}

// Habits

func (s *Store) AddHabit(_ context.Context, habit models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habits[habit.ID]; ok {
		return fmt.Errorf("habit %q: %w", habit.ID, errors.ErrAlreadyExists)
	}
	for _, h := range s.habits {
		if h.Name == habit.Name && !h.IsDeleted() && !habit.IsDeleted() {
			return fmt.Errorf("habit %q: %w", habit.Name, errors.ErrAlreadyExists)
		}
	}
	s.habits[habit.ID] = habit
	return nil
}

func (s *Store) GetHabit(_ context.Context, id string) (models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.habits[id]
	if !ok || h.IsDeleted() {
		return models.Habit{}, missing("habit", id)
	}
	return h, nil
}

func (s *Store) GetHabitByName(_ context.Context, name string) (models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, h := range s.habits {
		if h.Name == name && !h.IsDeleted() {
			return h, nil
		}
	}
	return models.Habit{}, missing("habit", name)
}

func (s *Store) GetAllHabits(_ context.Context, includeArchived, includeDeleted bool) ([]models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	habits := []models.Habit{}
	for _, h := range s.habits {
		if h.IsArchived() && !includeArchived {
			continue
		}
		if h.IsDeleted() && !includeDeleted {
			continue
		}
		habits = append(habits, h)
	}
	sort.Slice(habits, func(i, j int) bool { return habits[i].Name < habits[j].Name })
	return habits, nil
}

func (s *Store) UpdateHabit(_ context.Context, habit models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habits[habit.ID]; !ok {
		return missing("habit", habit.ID)
	}
	s.habits[habit.ID] = habit
	return nil
}

// mutate applies fn to a habit that passes the filter
func (s *Store) mutate(id string, filter func(models.Habit) bool, fn func(*models.Habit, time.Time)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.habits[id]
	if !ok || !filter(h) {
		return missing("habit", id)
	}
	now := time.Now().UTC()
	fn(&h, now)
	h.UpdatedAt = now
	s.habits[id] = h
	return nil
}

func live(h models.Habit) bool    { return !h.IsDeleted() }
func deleted(h models.Habit) bool { return h.IsDeleted() }

func (s *Store) ArchiveHabit(_ context.Context, id string) error {
	return s.mutate(id, live, func(h *models.Habit, now time.Time) { h.ArchivedAt = &now })
}

func (s *Store) UnarchiveHabit(_ context.Context, id string) error {
	return s.mutate(id, live, func(h *models.Habit, _ time.Time) { h.ArchivedAt = nil })
}

func (s *Store) DeleteHabit(_ context.Context, id string) error {
	return s.mutate(id, live, func(h *models.Habit, now time.Time) { h.DeletedAt = &now })
}

func (s *Store) RestoreHabit(_ context.Context, id string) error {
	return s.mutate(id, deleted, func(h *models.Habit, _ time.Time) { h.DeletedAt = nil })
}

func (s *Store) PurgeHabit(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habits[id]; !ok {
		return missing("habit", id)
	}
	delete(s.habits, id)
	for k := range s.completions {
		if k.habitID == id {
			delete(s.completions, k)
		}
	}
	return nil
}

// Completions

func (s *Store) AddCompletion(_ context.Context, c models.Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habits[c.HabitID]; !ok {
		return missing("habit", c.HabitID)
	}
	key := completionKey{c.HabitID, c.Day}
	if _, ok := s.completions[key]; !ok {
		s.completions[key] = c
	}
	return nil
}

func (s *Store) RemoveCompletion(_ context.Context, habitID, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.completions, completionKey{habitID, day})
	return nil
}

func (s *Store) GetCompletions(_ context.Context, habitID string) ([]models.Completion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Completion{}
	for k, c := range s.completions {
		if k.habitID == habitID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func (s *Store) GetAllCompletions(_ context.Context) ([]models.Completion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Completion, 0, len(s.completions))
	for _, c := range s.completions {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HabitID != out[j].HabitID {
			return out[i].HabitID < out[j].HabitID
		}
		return out[i].Day < out[j].Day
	})
	return out, nil
}

// Tasks

func (s *Store) AddTask(_ context.Context, task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; ok {
		return fmt.Errorf("task %q: %w", task.ID, errors.ErrAlreadyExists)
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *Store) GetTask(_ context.Context, id string) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, missing("task", id)
	}
	return t, nil
}

func (s *Store) GetAllTasks(_ context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sortTasks(out)
	return out, nil
}

func (s *Store) FindTasks(_ context.Context, title, dueDate string) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Task{}
	for _, t := range s.tasks {
		if t.Title == title && t.DueDate == dueDate {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateTask(_ context.Context, task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return missing("task", task.ID)
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *Store) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return missing("task", id)
	}
	delete(s.tasks, id)
	return nil
}

func sortTasks(tasks []models.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].DueDate != tasks[j].DueDate {
			return tasks[i].DueDate < tasks[j].DueDate
		}
		return tasks[i].Title < tasks[j].Title
	})
}
