package progress

import (
	"testing"
	"time"

	"github.com/julianstephens/cadence/internal/ledger"
	"github.com/julianstephens/cadence/internal/schedule"
)

func d(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := schedule.ParseDate(s)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", s, err)
	}
	return v
}

func ledgerOf(t *testing.T, days ...string) *ledger.Ledger {
	t.Helper()
	l := ledger.New()
	for _, s := range days {
		l.Toggle(d(t, s))
	}
	return l
}

// Start 2024-01-01 is a Monday.
func TestStreak_FridayStillOpen(t *testing.T) {
	l := ledgerOf(t, "2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04")
	got := Streak(d(t, "2024-01-05"), d(t, "2024-01-01"), schedule.Weekdays, l)
	if got != 4 {
		t.Errorf("Streak on open Friday = %d, want 4", got)
	}
}

func TestStreak_PastMissBreaks(t *testing.T) {
	l := ledgerOf(t, "2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04")
	got := Streak(d(t, "2024-01-08"), d(t, "2024-01-01"), schedule.Weekdays, l)
	if got != 0 {
		t.Errorf("Streak on following Monday = %d, want 0", got)
	}
}

// Today's open status never shrinks the streak relative to yesterday's.
func TestStreak_TodayOpenIsForgiven(t *testing.T) {
	start := d(t, "2024-01-01")
	l := ledgerOf(t, "2024-01-01", "2024-01-02", "2024-01-03")
	yesterday := d(t, "2024-01-03")
	today := d(t, "2024-01-04")

	if Streak(today, start, schedule.Weekdays, l) != Streak(yesterday, start, schedule.Weekdays, l) {
		t.Errorf("streak(today)=%d, streak(yesterday)=%d; want equal",
			Streak(today, start, schedule.Weekdays, l), Streak(yesterday, start, schedule.Weekdays, l))
	}
}

// Nothing at or before a past miss is counted.
func TestStreak_MissTwoDaysAgoStopsCount(t *testing.T) {
	start := d(t, "2024-01-01")
	// Wed 01-03 missed; Mon, Tue, Thu completed, Fri is today and completed
	l := ledgerOf(t, "2024-01-01", "2024-01-02", "2024-01-04", "2024-01-05")
	got := Streak(d(t, "2024-01-05"), start, schedule.Weekdays, l)
	if got != 2 {
		t.Errorf("Streak() = %d, want 2 (Thu, Fri only)", got)
	}
}

func TestStreak_UnscheduledDaysAreTransparent(t *testing.T) {
	start := d(t, "2024-01-01")
	// Full first week done; Monday 01-08 done; weekend unscheduled
	l := ledgerOf(t, "2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-08")
	if got := Streak(d(t, "2024-01-08"), start, schedule.Weekdays, l); got != 6 {
		t.Errorf("Streak() = %d, want 6", got)
	}
	// Weekend today: nothing scheduled, streak carries through
	if got := Streak(d(t, "2024-01-07"), start, schedule.Weekdays, l); got != 5 {
		t.Errorf("Streak() on Sunday = %d, want 5", got)
	}
}

func TestStreak_StopsAtStartDate(t *testing.T) {
	start := d(t, "2024-01-03")
	// Completions before the start date are ignored
	l := ledgerOf(t, "2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04")
	if got := Streak(d(t, "2024-01-04"), start, schedule.Weekdays, l); got != 2 {
		t.Errorf("Streak() = %d, want 2", got)
	}
}

func TestStreak_TodayCompletedCounts(t *testing.T) {
	l := ledgerOf(t, "2024-01-01")
	if got := Streak(d(t, "2024-01-01"), d(t, "2024-01-01"), schedule.Daily, l); got != 1 {
		t.Errorf("Streak() = %d, want 1", got)
	}
}

func TestStreak_EmptyPatternIsZero(t *testing.T) {
	l := ledgerOf(t, "2024-01-01")
	if got := Streak(d(t, "2024-02-01"), d(t, "2024-01-01"), schedule.Pattern{}, l); got != 0 {
		t.Errorf("Streak() = %d, want 0", got)
	}
}

func TestLongestStreak(t *testing.T) {
	start := d(t, "2024-01-01")
	l := ledgerOf(t, "2024-01-01", "2024-01-02", "2024-01-04", "2024-01-05", "2024-01-08", "2024-01-09")
	if got := LongestStreak(start, d(t, "2024-01-12"), schedule.Weekdays, l); got != 4 {
		t.Errorf("LongestStreak() = %d, want 4 (Thu, Fri, Mon, Tue)", got)
	}
}
