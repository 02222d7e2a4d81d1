package constants

const (
	// Momentum weights:
	// - MomentumDailyWeight, MomentumWeeklyWeight and MomentumOverallWeight are the
	//   percentage points each completion ratio contributes to the momentum score.
	//   They must sum to 100 so that momentum stays within [0, 100].
	MomentumDailyWeight   = 40 // weight of today's completion ratio
	MomentumWeeklyWeight  = 30 // weight of the trailing 7-day completion ratio
	MomentumOverallWeight = 30 // weight of the all-time completion ratio

	// MomentumWindowDays is the length of the trailing window used for weekly progress
	MomentumWindowDays = 7

	// GoalCapDays bounds end-date resolution (10 years, leap days included).
	GoalCapDays = 3653
)

func init() {
	if MomentumDailyWeight+MomentumWeeklyWeight+MomentumOverallWeight != 100 {
		panic("MomentumDailyWeight, MomentumWeeklyWeight and MomentumOverallWeight must sum to 100")
	}
}
