package ledger

import (
	"testing"
	"time"

	"github.com/julianstephens/cadence/internal/schedule"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := schedule.ParseDate(s)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", s, err)
	}
	return d
}

func TestToggle(t *testing.T) {
	l := New()
	d := day(t, "2024-01-01")

	if l.IsCompleted(d) {
		t.Fatal("new ledger should be empty")
	}
	if state := l.Toggle(d); !state {
		t.Error("first toggle should return true")
	}
	if !l.IsCompleted(d) {
		t.Error("expected day to be completed after toggle")
	}
	if state := l.Toggle(d); state {
		t.Error("second toggle should return false")
	}
	if l.IsCompleted(d) {
		t.Error("expected day to be cleared after second toggle")
	}
}

func TestToggleIsInvolutive(t *testing.T) {
	l := New(day(t, "2024-01-02"), day(t, "2024-01-04"))
	for _, s := range []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"} {
		d := day(t, s)
		before := l.IsCompleted(d)
		countBefore := l.Count()
		l.Toggle(d)
		l.Toggle(d)
		if l.IsCompleted(d) != before {
			t.Errorf("%s: state changed after double toggle", s)
		}
		if l.Count() != countBefore {
			t.Errorf("%s: count changed after double toggle", s)
		}
	}
}

func TestToggleIgnoresTimeOfDay(t *testing.T) {
	l := New()
	morning := time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC)

	l.Toggle(morning)
	if !l.IsCompleted(evening) {
		t.Error("expected same calendar day to match regardless of time")
	}
	if l.Count() != 1 {
		t.Errorf("Count() = %d, want 1", l.Count())
	}
}

func TestSet(t *testing.T) {
	l := New()
	d := day(t, "2024-01-01")

	if !l.Set(d, true) {
		t.Error("Set(true) on empty day should report a change")
	}
	if l.Set(d, true) {
		t.Error("repeated Set(true) should be a no-op")
	}
	if !l.Set(d, false) {
		t.Error("Set(false) on completed day should report a change")
	}
	if l.Set(d, false) {
		t.Error("repeated Set(false) should be a no-op")
	}
}

func TestCountAndDays(t *testing.T) {
	l := New(day(t, "2024-01-03"), day(t, "2024-01-01"), day(t, "2023-12-25"))

	if l.Count() != 3 {
		t.Errorf("Count() = %d, want 3", l.Count())
	}
	if n := l.CountBetween(day(t, "2024-01-01"), day(t, "2024-01-31")); n != 2 {
		t.Errorf("CountBetween() = %d, want 2", n)
	}

	days := l.Days()
	want := []string{"2023-12-25", "2024-01-01", "2024-01-03"}
	for i, w := range want {
		if got := schedule.FormatDate(days[i]); got != w {
			t.Errorf("Days()[%d] = %s, want %s", i, got, w)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	l := New(day(t, "2024-01-01"))
	c := l.Clone()
	c.Toggle(day(t, "2024-01-02"))
	if l.Count() != 1 {
		t.Errorf("original Count() = %d after mutating clone, want 1", l.Count())
	}
}

func TestNilLedger(t *testing.T) {
	var l *Ledger
	if l.Count() != 0 || l.IsCompleted(day(t, "2024-01-01")) || l.Days() != nil {
		t.Error("nil ledger should behave as empty")
	}
}
