package system

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/schedule"
)

type DebugCmd struct {
	DBPath    DebugDBPathCmd    `cmd:"" name:"db-path" help:"Show database path."`
	DumpHabit DebugDumpHabitCmd `cmd:"" help:"Dump a habit, its completions and derived values as JSON."`
	DumpTasks DebugDumpTasksCmd `cmd:"" help:"Dump the task list as JSON."`
}

func printJSON(ctx *cli.Context, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(data))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugDumpHabitCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

type habitDump struct {
	Habit       models.Habit `json:"habit"`
	Completions []string     `json:"completions"`
	EndDate     string       `json:"end_date"`
	Streak      int          `json:"streak"`
	Generation  uint64       `json:"generation"`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.Find(cmd.Habit)
	if err != nil {
		return err
	}
	s, err := ctx.Tracker.Summary(habit.ID)
	if err != nil {
		return err
	}
	days, err := ctx.Tracker.Completions(habit.ID)
	if err != nil {
		return err
	}

	dump := habitDump{
		Habit:       habit,
		Completions: make([]string, 0, len(days)),
		EndDate:     schedule.FormatDate(s.End),
		Streak:      s.Streak,
		Generation:  s.Generation,
	}
	for _, d := range days {
		dump.Completions = append(dump.Completions, schedule.FormatDate(d))
	}
	return printJSON(ctx, dump)
}

type DebugDumpTasksCmd struct{}

func (cmd *DebugDumpTasksCmd) Run(ctx *cli.Context) error {
	tasks, err := ctx.Store.GetAllTasks(context.Background())
	if err != nil {
		return err
	}
	return printJSON(ctx, tasks)
}
