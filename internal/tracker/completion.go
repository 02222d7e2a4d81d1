package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/mirror"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/schedule"
)

// ToggleResult describes the outcome of a completion change
type ToggleResult struct {
	Completed  bool
	Changed    bool
	Generation uint64
	// Goal is set when this change archived the habit
	Goal *GoalCompleted
}

// ToggleCompletion flips the completion state of day. generation must match
// the habit's current generation or the request is discarded with
// ErrConcurrentModification. Two accepted toggles cancel out, so retries
// should use SetCompletion instead.
func (t *Tracker) ToggleCompletion(ctx context.Context, id string, day time.Time, generation uint64) (ToggleResult, error) {
	t.mu.Lock()
	a, err := t.lookup(id)
	if err != nil {
		t.mu.Unlock()
		return ToggleResult{}, err
	}
	if a.generation != generation {
		current := a.generation
		t.mu.Unlock()
		log.Debug("Discarding stale toggle", "habit", id, "generation", generation, "current", current)
		return ToggleResult{}, fmt.Errorf("habit %q at generation %d (current %d): %w",
			id, generation, current, errors.ErrConcurrentModification)
	}

	day = schedule.Date(day)
	completed := a.ledger.Toggle(day)
	res, cmd, err := t.commit(ctx, a, day, completed, func() { a.ledger.Toggle(day) })
	t.mu.Unlock()
	if err != nil {
		return ToggleResult{}, err
	}

	t.afterCommit(ctx, cmd, res)
	return res, nil
}

// SetCompletion forces day to the given state. It is idempotent: setting the
// current state writes nothing but still re-sends the mirror command so the
// external task list can catch up.
func (t *Tracker) SetCompletion(ctx context.Context, id string, day time.Time, completed bool) (ToggleResult, error) {
	t.mu.Lock()
	a, err := t.lookup(id)
	if err != nil {
		t.mu.Unlock()
		return ToggleResult{}, err
	}

	day = schedule.Date(day)
	if !a.ledger.Set(day, completed) {
		res := ToggleResult{Completed: completed, Generation: a.generation}
		cmd := t.command(a.habit, day, completed)
		t.mu.Unlock()
		t.afterCommit(ctx, cmd, res)
		return res, nil
	}

	res, cmd, err := t.commit(ctx, a, day, completed, func() { a.ledger.Set(day, !completed) })
	t.mu.Unlock()
	if err != nil {
		return ToggleResult{}, err
	}

	t.afterCommit(ctx, cmd, res)
	return res, nil
}

// commit persists an in-memory ledger change, reverting it on failure, then
// bumps the generation and runs the archival check. Must be called with mu held.
func (t *Tracker) commit(ctx context.Context, a *activity, day time.Time, completed bool, revert func()) (ToggleResult, mirror.Command, error) {
	var err error
	if completed {
		err = t.store.AddCompletion(ctx, models.Completion{
			HabitID:   a.habit.ID,
			Day:       schedule.FormatDate(day),
			CreatedAt: t.now().UTC(),
		})
	} else {
		err = t.store.RemoveCompletion(ctx, a.habit.ID, schedule.FormatDate(day))
	}
	if err != nil {
		revert()
		return ToggleResult{}, mirror.Command{}, fmt.Errorf("failed to save completion for %s: %w", schedule.FormatDate(day), err)
	}

	a.generation++
	res := ToggleResult{Completed: completed, Changed: true}
	if completed {
		goal, err := t.archiveIfGoalMet(ctx, a)
		if err != nil {
			// the completion itself is saved; archival is retried by the next check
			log.Error("Failed to archive habit after reaching goal", "habit", a.habit.ID, "error", err)
		}
		res.Goal = goal
	}
	res.Generation = a.generation
	return res, t.command(a.habit, day, completed), nil
}

func (t *Tracker) command(h models.Habit, day time.Time, completed bool) mirror.Command {
	return mirror.Command{Title: h.Name, Day: day, Completed: completed, IssuedAt: t.now().UTC()}
}

// afterCommit runs the best-effort side effects outside the lock
func (t *Tracker) afterCommit(ctx context.Context, cmd mirror.Command, res ToggleResult) {
	if t.mirror != nil {
		t.mirror.Enqueue(cmd)
	}
	if res.Goal != nil {
		t.notify(ctx, *res.Goal)
	}
}

// Resync re-sends the current state of every completed day of a habit to the
// mirror. Completed tasks titled after the habit whose due date is not in the
// ledger are queued as ongoing so the task list converges in both directions.
func (t *Tracker) Resync(ctx context.Context, id string) (int, error) {
	t.mu.Lock()
	a, err := t.lookup(id)
	if err != nil {
		t.mu.Unlock()
		return 0, err
	}
	days := a.ledger.Days()
	snapshot := a.ledger.Clone()
	h := a.habit
	t.mu.Unlock()

	if t.mirror == nil {
		return 0, nil
	}
	for _, day := range days {
		t.mirror.Enqueue(t.command(h, day, true))
	}

	tasks, err := t.store.GetAllTasks(ctx)
	if err != nil {
		return len(days), fmt.Errorf("failed to load tasks for %s: %w", h.Name, err)
	}
	queued := len(days)
	reopened := make(map[time.Time]struct{})
	for _, task := range tasks {
		if task.Title != h.Name || !task.IsCompleted {
			continue
		}
		day, err := schedule.ParseDate(task.DueDate)
		if err != nil {
			log.Warn("Skipping task with unparseable due date", "task", task.ID, "due", task.DueDate)
			continue
		}
		if snapshot.IsCompleted(day) {
			continue
		}
		if _, ok := reopened[day]; ok {
			continue
		}
		reopened[day] = struct{}{}
		t.mirror.Enqueue(t.command(h, day, false))
		queued++
	}
	return queued, nil
}
