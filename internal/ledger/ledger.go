// Package ledger holds the sparse per-habit record of completed days.
package ledger

import (
	"sort"
	"time"

	"github.com/julianstephens/cadence/internal/schedule"
)

// Ledger is a set of completed civil dates. A day is either present (completed)
// or absent; there is no explicit "not completed" entry.
//
// Ledger is not safe for concurrent use; the owning service serialises access.
type Ledger struct {
	days map[time.Time]struct{}
}

// New creates a ledger pre-populated with the given days.
func New(days ...time.Time) *Ledger {
	l := &Ledger{days: make(map[time.Time]struct{}, len(days))}
	for _, d := range days {
		l.days[schedule.Date(d)] = struct{}{}
	}
	return l
}

// IsCompleted reports whether day has a completion entry.
func (l *Ledger) IsCompleted(day time.Time) bool {
	if l == nil {
		return false
	}
	_, ok := l.days[schedule.Date(day)]
	return ok
}

// Toggle flips the entry for day and returns the new state.
//
// Toggle is a flip, not a set: two identical calls cancel out. Callers that
// retry or de-duplicate requests must use Set with the intended end state.
func (l *Ledger) Toggle(day time.Time) bool {
	d := schedule.Date(day)
	if _, ok := l.days[d]; ok {
		delete(l.days, d)
		return false
	}
	l.days[d] = struct{}{}
	return true
}

// Set forces the entry for day to the given state and reports whether anything changed.
func (l *Ledger) Set(day time.Time, completed bool) bool {
	d := schedule.Date(day)
	_, ok := l.days[d]
	switch {
	case completed && !ok:
		l.days[d] = struct{}{}
		return true
	case !completed && ok:
		delete(l.days, d)
		return true
	}
	return false
}

// Count returns the total number of entries, including days outside the
// habit's current live range.
func (l *Ledger) Count() int {
	if l == nil {
		return 0
	}
	return len(l.days)
}

// CountBetween counts entries in [start, end], inclusive.
func (l *Ledger) CountBetween(start, end time.Time) int {
	if l == nil {
		return 0
	}
	n := 0
	for d := range l.days {
		if schedule.IsWithinRange(d, start, end) {
			n++
		}
	}
	return n
}

// Days returns all completed days in ascending order.
func (l *Ledger) Days() []time.Time {
	if l == nil {
		return nil
	}
	out := make([]time.Time, 0, len(l.days))
	for d := range l.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	if l == nil {
		return New()
	}
	return New(l.Days()...)
}
