package schedule

import (
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/errors"
)

// Resolver computes habit end dates. MaxDays bounds the day-by-day walk;
// zero means constants.GoalCapDays.
type Resolver struct {
	MaxDays int
}

// DefaultResolver walks at most ten years of calendar days.
var DefaultResolver = Resolver{MaxDays: constants.GoalCapDays}

// ResolveEndDate returns the date on which the goal-th scheduled occurrence
// on or after start falls, using the default resolution cap.
func ResolveEndDate(start time.Time, pattern Pattern, goal int) (time.Time, error) {
	return DefaultResolver.ResolveEndDate(start, pattern, goal)
}

// ResolveEndDate returns the date on which the goal-th scheduled occurrence
// on or after start falls.
//
// An all-false pattern fails with errors.ErrInvalidPattern; a walk longer than
// MaxDays fails with errors.ErrGoalUnreachable.
func (r Resolver) ResolveEndDate(start time.Time, pattern Pattern, goal int) (time.Time, error) {
	if pattern.IsEmpty() {
		return time.Time{}, errors.ErrInvalidPattern
	}
	if goal < 1 {
		return time.Time{}, fmt.Errorf("%w: got %d", errors.ErrInvalidGoal, goal)
	}

	maxDays := r.MaxDays
	if maxDays <= 0 {
		maxDays = constants.GoalCapDays
	}

	day := Date(start)
	count := 0
	for i := 0; i < maxDays; i++ {
		if pattern.IsScheduled(day) {
			count++
			if count == goal {
				return day, nil
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	return time.Time{}, fmt.Errorf("%w: %d occurrences of %s from %s exceed %d days",
		errors.ErrGoalUnreachable, goal, pattern, FormatDate(start), maxDays)
}

// Advance returns the date of the n-th scheduled day on or after from (n >= 1).
func (r Resolver) Advance(from time.Time, pattern Pattern, n int) (time.Time, error) {
	return r.ResolveEndDate(from, pattern, n)
}

// ScheduledBetween counts scheduled days in [start, end], inclusive.
func ScheduledBetween(start, end time.Time, pattern Pattern) int {
	start, end = Date(start), Date(end)
	if end.Before(start) || pattern.IsEmpty() {
		return 0
	}

	days := DaysBetween(start, end) + 1
	count := (days / DaysPerWeek) * pattern.Count()
	day := start.AddDate(0, 0, (days/DaysPerWeek)*DaysPerWeek)
	for ; !day.After(end); day = day.AddDate(0, 0, 1) {
		if pattern.IsScheduled(day) {
			count++
		}
	}
	return count
}
