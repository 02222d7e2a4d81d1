package progress

import (
	"math"
	"testing"

	"github.com/julianstephens/cadence/internal/ledger"
	"github.com/julianstephens/cadence/internal/schedule"
)

func subject(t *testing.T, start string, p schedule.Pattern, goal int, l *ledger.Ledger) Subject {
	t.Helper()
	s := d(t, start)
	end, err := schedule.ResolveEndDate(s, p, goal)
	if err != nil {
		t.Fatalf("ResolveEndDate() error: %v", err)
	}
	return Subject{Start: s, End: end, Pattern: p, Goal: goal, Ledger: l}
}

func TestAggregate_NoSubjects(t *testing.T) {
	m := Aggregate(d(t, "2024-01-05"), nil, DefaultWeights)
	if m.Daily != 0 || m.Weekly != 0 || m.Overall != 0 || m.Momentum != 0 {
		t.Errorf("Aggregate(nil) = %+v, want all zero", m)
	}
}

func TestAggregate_SingleHabit(t *testing.T) {
	// Weekdays, goal 10, Mon-Thu of first week done, today is Friday (open)
	l := ledgerOf(t, "2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04")
	s := subject(t, "2024-01-01", schedule.Weekdays, 10, l)

	m := Aggregate(d(t, "2024-01-05"), []Subject{s}, DefaultWeights)
	if m.Daily != 0 {
		t.Errorf("Daily = %v, want 0", m.Daily)
	}
	if math.Abs(m.Weekly-80) > 1e-9 {
		t.Errorf("Weekly = %v, want 80", m.Weekly)
	}
	if math.Abs(m.Overall-40) > 1e-9 {
		t.Errorf("Overall = %v, want 40", m.Overall)
	}
	// round(0*40 + 0.8*30 + 0.4*30) = 36
	if m.Momentum != 36 {
		t.Errorf("Momentum = %d, want 36", m.Momentum)
	}
}

func TestAggregate_WindowExcludesDaysBeforeStart(t *testing.T) {
	// Starts Thursday; the weekly window only counts Thu and Fri
	l := ledgerOf(t, "2024-01-04", "2024-01-05")
	s := subject(t, "2024-01-04", schedule.Weekdays, 20, l)

	m := Aggregate(d(t, "2024-01-05"), []Subject{s}, DefaultWeights)
	if m.Daily != 100 || m.Weekly != 100 {
		t.Errorf("Daily=%v Weekly=%v, want 100/100", m.Daily, m.Weekly)
	}
}

func TestAggregate_PastEndDateNotScheduled(t *testing.T) {
	// Goal of 2 from Monday ends Tuesday; Friday is outside the live range
	l := ledgerOf(t, "2024-01-01", "2024-01-02")
	s := subject(t, "2024-01-01", schedule.Weekdays, 2, l)

	m := Aggregate(d(t, "2024-01-05"), []Subject{s}, DefaultWeights)
	if m.Daily != 0 {
		t.Errorf("Daily = %v, want 0 (nothing live today)", m.Daily)
	}
	if m.Weekly != 100 {
		t.Errorf("Weekly = %v, want 100", m.Weekly)
	}
	if m.Overall != 100 {
		t.Errorf("Overall = %v, want 100", m.Overall)
	}
	if m.Momentum != 60 {
		t.Errorf("Momentum = %d, want 60", m.Momentum)
	}
}

func TestAggregate_MultipleHabits(t *testing.T) {
	today := "2024-01-03" // Wednesday
	a := subject(t, "2024-01-01", schedule.Daily, 30, ledgerOf(t, "2024-01-01", "2024-01-02", "2024-01-03"))
	b := subject(t, "2024-01-01", schedule.Weekdays, 10, ledgerOf(t))

	m := Aggregate(d(t, today), []Subject{a, b}, DefaultWeights)
	if m.Daily != 50 {
		t.Errorf("Daily = %v, want 50", m.Daily)
	}
	if m.Weekly != 50 {
		t.Errorf("Weekly = %v, want 50", m.Weekly)
	}
	if math.Abs(m.Overall-7.5) > 1e-9 {
		t.Errorf("Overall = %v, want 7.5", m.Overall)
	}
	// round(0.5*40 + 0.5*30 + 0.075*30) = round(37.25) = 37
	if m.Momentum != 37 {
		t.Errorf("Momentum = %d, want 37", m.Momentum)
	}
}

func TestAggregate_OverallClampedWhenGoalExceeded(t *testing.T) {
	l := ledgerOf(t, "2023-12-01", "2023-12-02", "2024-01-01")
	s := subject(t, "2024-01-01", schedule.Daily, 1, l)
	m := Aggregate(d(t, "2024-01-01"), []Subject{s}, DefaultWeights)
	if m.Overall != 100 || m.Momentum != 100 {
		t.Errorf("Aggregate() = %+v, want overall 100 and momentum 100", m)
	}
}

func TestScore_Bounds(t *testing.T) {
	inputs := []float64{-5, -1, 0, 0.25, 0.5, 0.999, 1, 1.5, 100, math.Inf(1), math.Inf(-1), math.NaN()}
	for _, a := range inputs {
		for _, b := range inputs {
			for _, c := range inputs {
				m := Score(a, b, c, DefaultWeights)
				if m < 0 || m > 100 {
					t.Fatalf("Score(%v, %v, %v) = %d, out of [0, 100]", a, b, c, m)
				}
			}
		}
	}
}

func TestScore_Weighting(t *testing.T) {
	tests := []struct {
		daily, weekly, overall float64
		want                   int
	}{
		{1, 0, 0, 40},
		{0, 1, 0, 30},
		{0, 0, 1, 30},
		{1, 1, 1, 100},
		{0.5, 0.5, 0.5, 50},
		{0.01, 0.01, 0.01, 1},
	}
	for _, tt := range tests {
		if got := Score(tt.daily, tt.weekly, tt.overall, DefaultWeights); got != tt.want {
			t.Errorf("Score(%v, %v, %v) = %d, want %d", tt.daily, tt.weekly, tt.overall, got, tt.want)
		}
	}
}

func TestWeightsValidate(t *testing.T) {
	if err := DefaultWeights.Validate(); err != nil {
		t.Errorf("DefaultWeights.Validate() = %v", err)
	}
	if err := (Weights{Daily: 50, Weekly: 30, Overall: 30}).Validate(); err == nil {
		t.Error("expected error for weights summing to 110")
	}
	if err := (Weights{Daily: -10, Weekly: 80, Overall: 30}).Validate(); err == nil {
		t.Error("expected error for negative weight")
	}
}
