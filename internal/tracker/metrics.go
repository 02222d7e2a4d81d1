package tracker

import (
	"time"

	"github.com/julianstephens/cadence/internal/progress"
	"github.com/julianstephens/cadence/internal/schedule"
)

// Summary holds every derived value of a habit, computed on read
type Summary struct {
	HabitID         string
	Name            string
	Start           time.Time
	End             time.Time
	Pattern         schedule.Pattern
	Goal            int
	TotalCompleted  int
	ProgressPercent float64
	Streak          int
	LongestStreak   int
	ScheduledToday  bool
	CompletedToday  bool
	Archived        bool
	Generation      uint64
}

// ResolveEndDate computes the habit's end date from its current definition
func (t *Tracker) ResolveEndDate(id string) (time.Time, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, err := t.lookup(id)
	if err != nil {
		return time.Time{}, err
	}
	return t.resolver.ResolveEndDate(a.start, a.habit.Pattern, a.habit.GoalCount)
}

// ComputeStreak returns the current streak as of today
func (t *Tracker) ComputeStreak(id string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, err := t.lookup(id)
	if err != nil {
		return 0, err
	}
	return progress.Streak(t.today(), a.start, a.habit.Pattern, a.ledger), nil
}

// Scope selects the habits momentum is computed over. The zero value means
// every active (non-archived) habit; HabitID narrows it to one habit,
// archived or not.
type Scope struct {
	HabitID string
}

// ComputeMomentum aggregates completion ratios for today. In the aggregate
// scope a habit whose end date cannot be resolved is logged and left out;
// a single-habit scope returns the resolution error.
func (t *Tracker) ComputeMomentum(scope Scope) (progress.Momentum, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var selected []*activity
	if scope.HabitID != "" {
		a, err := t.lookup(scope.HabitID)
		if err != nil {
			return progress.Momentum{}, err
		}
		selected = append(selected, a)
	} else {
		for _, a := range t.habits {
			if !a.habit.IsArchived() {
				selected = append(selected, a)
			}
		}
	}

	subjects := make([]progress.Subject, 0, len(selected))
	for _, a := range selected {
		end, err := t.resolver.ResolveEndDate(a.start, a.habit.Pattern, a.habit.GoalCount)
		if err != nil {
			if scope.HabitID != "" {
				return progress.Momentum{}, err
			}
			log.Warn("Leaving habit out of momentum", "habit", a.habit.ID, "error", err)
			continue
		}
		subjects = append(subjects, progress.Subject{
			Start:   a.start,
			End:     end,
			Pattern: a.habit.Pattern,
			Goal:    a.habit.GoalCount,
			Ledger:  a.ledger,
		})
	}
	return progress.Aggregate(t.today(), subjects, t.weights), nil
}

// Summary computes all derived values of a habit at once
func (t *Tracker) Summary(id string) (Summary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, err := t.lookup(id)
	if err != nil {
		return Summary{}, err
	}
	end, err := t.resolver.ResolveEndDate(a.start, a.habit.Pattern, a.habit.GoalCount)
	if err != nil {
		return Summary{}, err
	}

	today := t.today()
	through := today
	if through.After(end) {
		through = end
	}
	total := a.ledger.Count()
	return Summary{
		HabitID:         a.habit.ID,
		Name:            a.habit.Name,
		Start:           a.start,
		End:             end,
		Pattern:         a.habit.Pattern,
		Goal:            a.habit.GoalCount,
		TotalCompleted:  total,
		ProgressPercent: float64(total) / float64(a.habit.GoalCount) * 100,
		Streak:          progress.Streak(today, a.start, a.habit.Pattern, a.ledger),
		LongestStreak:   progress.LongestStreak(a.start, through, a.habit.Pattern, a.ledger),
		ScheduledToday:  a.habit.Pattern.IsScheduled(today),
		CompletedToday:  a.ledger.IsCompleted(today),
		Archived:        a.habit.IsArchived(),
		Generation:      a.generation,
	}, nil
}
