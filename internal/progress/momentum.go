package progress

import (
	"fmt"
	"math"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/ledger"
	"github.com/julianstephens/cadence/internal/schedule"
)

// Weights are the percentage points each completion ratio contributes to momentum.
type Weights struct {
	Daily   float64 `mapstructure:"daily" yaml:"daily"`
	Weekly  float64 `mapstructure:"weekly" yaml:"weekly"`
	Overall float64 `mapstructure:"overall" yaml:"overall"`
}

// DefaultWeights favour recency: 40 daily, 30 weekly, 30 all-time.
var DefaultWeights = Weights{
	Daily:   constants.MomentumDailyWeight,
	Weekly:  constants.MomentumWeeklyWeight,
	Overall: constants.MomentumOverallWeight,
}

// Validate checks that weights are non-negative and sum to 100.
func (w Weights) Validate() error {
	if w.Daily < 0 || w.Weekly < 0 || w.Overall < 0 {
		return fmt.Errorf("momentum weights must be non-negative: %+v", w)
	}
	if sum := w.Daily + w.Weekly + w.Overall; math.Abs(sum-100) > 1e-9 {
		return fmt.Errorf("momentum weights must sum to 100, got %g", sum)
	}
	return nil
}

// Subject is one habit as seen by the aggregator. End is the resolved end date.
type Subject struct {
	Start   time.Time
	End     time.Time
	Pattern schedule.Pattern
	Goal    int
	Ledger  *ledger.Ledger
}

// isLive reports whether the subject counts on day: scheduled and inside [Start, End].
func (s Subject) isLive(day time.Time) bool {
	return s.Pattern.IsScheduled(day) && schedule.IsWithinRange(day, s.Start, s.End)
}

// Momentum holds completion percentages (0-100) and the weighted momentum index.
type Momentum struct {
	Daily    float64 `json:"daily_progress" yaml:"daily_progress"`
	Weekly   float64 `json:"weekly_progress" yaml:"weekly_progress"`
	Overall  float64 `json:"overall_progress" yaml:"overall_progress"`
	Momentum int     `json:"momentum" yaml:"momentum"`
}

// ratio divides with a zero denominator contributing 0, clamped to [0, 1].
func ratio(num, den int) float64 {
	if den <= 0 || num <= 0 {
		return 0
	}
	r := float64(num) / float64(den)
	if r > 1 {
		return 1
	}
	return r
}

// Score combines the three ratios (each in [0, 1]) into a momentum index in [0, 100].
func Score(daily, weekly, overall float64, w Weights) int {
	m := math.Round(clamp01(daily)*w.Daily + clamp01(weekly)*w.Weekly + clamp01(overall)*w.Overall)
	switch {
	case math.IsNaN(m) || m < 0:
		return 0
	case m > 100:
		return 100
	}
	return int(m)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Aggregate computes daily, weekly and overall progress for the given subjects.
// Callers decide the scope (a single habit, or all non-archived habits).
func Aggregate(today time.Time, subjects []Subject, w Weights) Momentum {
	today = schedule.Date(today)

	var dailyDone, dailyDue int
	var weeklyDone, weeklyDue int
	var totalDone, totalGoal int

	for _, s := range subjects {
		if s.isLive(today) {
			dailyDue++
			if s.Ledger.IsCompleted(today) {
				dailyDone++
			}
		}

		for i := 0; i < constants.MomentumWindowDays; i++ {
			day := today.AddDate(0, 0, -i)
			if !s.isLive(day) {
				continue
			}
			weeklyDue++
			if s.Ledger.IsCompleted(day) {
				weeklyDone++
			}
		}

		totalDone += s.Ledger.Count()
		totalGoal += s.Goal
	}

	daily := ratio(dailyDone, dailyDue)
	weekly := ratio(weeklyDone, weeklyDue)
	overall := ratio(totalDone, totalGoal)

	return Momentum{
		Daily:    daily * 100,
		Weekly:   weekly * 100,
		Overall:  overall * 100,
		Momentum: Score(daily, weekly, overall, w),
	}
}
