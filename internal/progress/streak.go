// Package progress derives streaks and momentum scores from habit ledgers.
// Nothing here is stored; every value is recomputed from the ledger on read.
package progress

import (
	"time"

	"github.com/julianstephens/cadence/internal/ledger"
	"github.com/julianstephens/cadence/internal/schedule"
)

// Streak counts consecutive completed scheduled days walking backward from today.
//
// Unscheduled days neither break nor extend the streak. A scheduled day that
// was missed ends the streak, except today: while today is still open its
// missing completion is forgiven and the walk continues with yesterday.
func Streak(today, start time.Time, pattern schedule.Pattern, l *ledger.Ledger) int {
	today = schedule.Date(today)
	start = schedule.Date(start)

	streak := 0
	for cursor := today; !cursor.Before(start); cursor = cursor.AddDate(0, 0, -1) {
		if !pattern.IsScheduled(cursor) {
			continue
		}
		if l.IsCompleted(cursor) {
			streak++
			continue
		}
		if !cursor.Equal(today) {
			break
		}
	}
	return streak
}

// LongestStreak returns the longest run of consecutive completed scheduled days
// in [start, through].
func LongestStreak(start, through time.Time, pattern schedule.Pattern, l *ledger.Ledger) int {
	start = schedule.Date(start)
	through = schedule.Date(through)

	best, run := 0, 0
	for cursor := start; !cursor.After(through); cursor = cursor.AddDate(0, 0, 1) {
		if !pattern.IsScheduled(cursor) {
			continue
		}
		if l.IsCompleted(cursor) {
			run++
			if run > best {
				best = run
			}
			continue
		}
		run = 0
	}
	return best
}
