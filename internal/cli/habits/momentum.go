package habits

import (
	"strconv"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/tracker"
)

type MomentumCmd struct {
	Habit string `arg:"" optional:"" help:"Limit to one habit (name or ID). Defaults to all active habits."`
}

func (c *MomentumCmd) Run(ctx *cli.Context) error {
	var scope tracker.Scope
	if c.Habit != "" {
		habit, err := ctx.Tracker.Find(c.Habit)
		if err != nil {
			return err
		}
		scope.HabitID = habit.ID
	}

	m, err := ctx.Tracker.ComputeMomentum(scope)
	if err != nil {
		return err
	}

	ctx.Printf("Momentum: %s\n", ctx.Bold(formatScore(m.Momentum)))
	ctx.Printf("  Today:     %5.1f%%\n", m.Daily)
	ctx.Printf("  Last 7d:   %5.1f%%\n", m.Weekly)
	ctx.Printf("  Overall:   %5.1f%%\n", m.Overall)
	return nil
}

func formatScore(score int) string {
	bar := make([]rune, 10)
	filled := score / 10
	for i := range bar {
		if i < filled {
			bar[i] = '█'
		} else {
			bar[i] = '░'
		}
	}
	return string(bar) + " " + strconv.Itoa(score)
}
