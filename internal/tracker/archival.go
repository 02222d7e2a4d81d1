package tracker

import (
	"context"
	"time"

)

// GoalCompleted is emitted once, when a habit is archived automatically
type GoalCompleted struct {
	HabitID string
	Name    string
	Count   int
	Goal    int
	At      time.Time
}

// archiveIfGoalMet archives a live habit whose ledger has reached its goal.
// Must be called with mu held.
func (t *Tracker) archiveIfGoalMet(ctx context.Context, a *activity) (*GoalCompleted, error) {
	if a.habit.IsArchived() || a.ledger.Count() < a.habit.GoalCount {
		return nil, nil
	}

	if err := t.store.ArchiveHabit(ctx, a.habit.ID); err != nil {
		return nil, err
	}

	now := t.now().UTC()
	a.habit.ArchivedAt = &now
	a.habit.UpdatedAt = now
	a.generation++

	log.Info("Habit reached its goal", "id", a.habit.ID, "name", a.habit.Name, "goal", a.habit.GoalCount)
	return &GoalCompleted{
		HabitID: a.habit.ID,
		Name:    a.habit.Name,
		Count:   a.ledger.Count(),
		Goal:    a.habit.GoalCount,
		At:      now,
	}, nil
}

func (t *Tracker) notify(ctx context.Context, ev GoalCompleted) {
	if t.notifier == nil {
		return
	}
	if err := t.notifier.NotifyGoalCompleted(ctx, ev.Name, ev.Goal); err != nil {
		log.Warn("Goal notification failed", "habit", ev.Name, "error", err)
	}
}

// CheckAndArchive archives the habit if its goal is met and it is still
// active. It returns nil when nothing changed.
func (t *Tracker) CheckAndArchive(ctx context.Context, id string) (*GoalCompleted, error) {
	t.mu.Lock()
	a, err := t.lookup(id)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	ev, err := t.archiveIfGoalMet(ctx, a)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if ev != nil {
		t.notify(ctx, *ev)
	}
	return ev, nil
}

// Complete archives a habit regardless of its completion count.
// Completing an archived habit is a no-op.
func (t *Tracker) Complete(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, err := t.lookup(id)
	if err != nil {
		return err
	}
	if a.habit.IsArchived() {
		return nil
	}
	if err := t.store.ArchiveHabit(ctx, id); err != nil {
		return err
	}

	now := t.now().UTC()
	a.habit.ArchivedAt = &now
	a.habit.UpdatedAt = now
	a.generation++
	return nil
}

// Restore returns an archived habit to the active state. It may be archived
// again automatically by the next completion if its goal is still met.
func (t *Tracker) Restore(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, err := t.lookup(id)
	if err != nil {
		return err
	}
	if !a.habit.IsArchived() {
		return nil
	}
	if err := t.store.UnarchiveHabit(ctx, id); err != nil {
		return err
	}

	a.habit.ArchivedAt = nil
	a.habit.UpdatedAt = t.now().UTC()
	a.generation++
	return nil
}
