package habits

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/schedule"
	"github.com/julianstephens/cadence/internal/tracker"
)

type HabitCmd struct {
	Add      HabitAddCmd      `cmd:"" help:"Add a new habit."`
	Edit     HabitEditCmd     `cmd:"" help:"Edit a habit."`
	List     HabitListCmd     `cmd:"" help:"List habits."`
	Show     HabitShowCmd     `cmd:"" help:"Show a habit's progress."`
	Toggle   HabitToggleCmd   `cmd:"" help:"Toggle completion for a day."`
	Set      HabitSetCmd      `cmd:"" help:"Set completion for a day to an explicit state."`
	Complete HabitCompleteCmd `cmd:"" help:"Archive a habit as completed."`
	Restore  HabitRestoreCmd  `cmd:"" help:"Return an archived habit to active."`
	Delete   HabitDeleteCmd   `cmd:"" help:"Delete a habit."`
	Undelete HabitUndeleteCmd `cmd:"" help:"Restore a deleted habit."`
	Resync   HabitResyncCmd   `cmd:"" help:"Re-send completed days to the task list."`
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Days        string `short:"d" help:"Scheduled weekdays: daily, weekdays, weekends or a list like mon,wed,fri." default:"daily"`
	Goal        int    `short:"g" help:"Number of completed days that fulfils the habit." required:""`
	Start       string `short:"s" help:"Start date (YYYY-MM-DD, default: today)."`
	Description string `help:"Optional description."`
	Cover       string `help:"Optional cover image URL."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	pattern, err := schedule.ParsePattern(c.Days)
	if err != nil {
		return err
	}
	start, err := ctx.ParseDay(c.Start)
	if err != nil {
		return err
	}

	habit, err := ctx.Tracker.Create(context.Background(), tracker.HabitInput{
		Name:          c.Name,
		Description:   c.Description,
		StartDate:     start,
		Pattern:       pattern,
		GoalCount:     c.Goal,
		CoverImageURL: c.Cover,
	})
	if err != nil {
		return err
	}

	end, err := ctx.Tracker.ResolveEndDate(habit.ID)
	if err != nil {
		return err
	}
	ctx.Printf("Added habit: %s (%s, %d days, ends %s)\n", ctx.Bold(habit.Name), habit.Pattern, habit.GoalCount, schedule.FormatDate(end))
	return nil
}

type HabitEditCmd struct {
	Habit       string `arg:"" help:"Habit name or ID."`
	Name        string `help:"New name."`
	Days        string `short:"d" help:"New scheduled weekdays."`
	Goal        int    `short:"g" help:"New goal."`
	Start       string `short:"s" help:"New start date (YYYY-MM-DD)."`
	Description string `help:"New description."`
	Cover       string `help:"New cover image URL."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.Find(c.Habit)
	if err != nil {
		return err
	}
	start, err := habit.Start()
	if err != nil {
		return err
	}

	in := tracker.HabitInput{
		Name:          habit.Name,
		Description:   habit.Description,
		StartDate:     start,
		Pattern:       habit.Pattern,
		GoalCount:     habit.GoalCount,
		CoverImageURL: habit.CoverImageURL,
	}
	if c.Name != "" {
		in.Name = c.Name
	}
	if c.Days != "" {
		if in.Pattern, err = schedule.ParsePattern(c.Days); err != nil {
			return err
		}
	}
	if c.Goal != 0 {
		in.GoalCount = c.Goal
	}
	if c.Start != "" {
		if in.StartDate, err = ctx.ParseDay(c.Start); err != nil {
			return err
		}
	}
	if c.Description != "" {
		in.Description = c.Description
	}
	if c.Cover != "" {
		in.CoverImageURL = c.Cover
	}

	updated, err := ctx.Tracker.Edit(context.Background(), habit.ID, in)
	if err != nil {
		return err
	}
	ctx.Printf("Updated habit: %s\n", ctx.Bold(updated.Name))
	return nil
}

type HabitListCmd struct {
	Archived bool `help:"Include archived habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits := ctx.Tracker.List(c.Archived)
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	width := len("NAME")
	for _, h := range habits {
		if len(h.Name) > width {
			width = len(h.Name)
		}
	}

	ctx.Printf("%-*s  %-22s  %-9s  %-8s  %s\n", width, "NAME", "DAYS", "PROGRESS", "STATUS", "ID")
	for _, h := range habits {
		progress := "?"
		if summary, err := ctx.Tracker.Summary(h.ID); err != nil {
			logger.Warn("Failed to summarize habit", "habit", h.ID, "error", err)
		} else {
			progress = fmt.Sprintf("%d/%d", summary.TotalCompleted, summary.Goal)
		}
		ctx.Printf("%-*s  %-22s  %-9s  %-8s  %s\n", width, h.Name, h.Pattern, progress, cli.HabitStatus(h), h.ID)
	}
	return nil
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.Find(c.Habit)
	if err != nil {
		return err
	}
	s, err := ctx.Tracker.Summary(habit.ID)
	if err != nil {
		return err
	}

	ctx.Println(ctx.Bold(s.Name))
	if habit.Description != "" {
		ctx.Printf("  %s\n", habit.Description)
	}
	ctx.Printf("  Days:      %s\n", s.Pattern)
	ctx.Printf("  Start:     %s\n", schedule.FormatDate(s.Start))
	ctx.Printf("  End:       %s\n", schedule.FormatDate(s.End))
	ctx.Printf("  Progress:  %d/%d (%.1f%%)\n", s.TotalCompleted, s.Goal, s.ProgressPercent)
	ctx.Printf("  Streak:    %d (longest %d)\n", s.Streak, s.LongestStreak)
	ctx.Printf("  Today:     %s\n", todayLabel(s))
	ctx.Printf("  Status:    %s\n", cli.HabitStatus(habit))
	return nil
}

func todayLabel(s tracker.Summary) string {
	switch {
	case !s.ScheduledToday:
		return "not scheduled"
	case s.CompletedToday:
		return "done"
	default:
		return "pending"
	}
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Date  string `help:"Day to toggle (YYYY-MM-DD, today, yesterday)." default:"today"`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.Find(c.Habit)
	if err != nil {
		return err
	}
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}
	gen, err := ctx.Tracker.Generation(habit.ID)
	if err != nil {
		return err
	}

	res, err := ctx.Tracker.ToggleCompletion(context.Background(), habit.ID, day, gen)
	if err != nil {
		return err
	}
	report(ctx, habit, day, res)
	return nil
}

type HabitSetCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	State string `arg:"" enum:"done,undone" help:"Completion state (done|undone)."`
	Date  string `help:"Day to set (YYYY-MM-DD, today, yesterday)." default:"today"`
}

func (c *HabitSetCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.Find(c.Habit)
	if err != nil {
		return err
	}
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}

	res, err := ctx.Tracker.SetCompletion(context.Background(), habit.ID, day, c.State == "done")
	if err != nil {
		return err
	}
	report(ctx, habit, day, res)
	return nil
}

func report(ctx *cli.Context, habit models.Habit, day time.Time, res tracker.ToggleResult) {
	verb := "Unmarked"
	if res.Completed {
		verb = "Marked"
	}
	suffix := ""
	if !res.Changed {
		suffix = " (unchanged)"
	}
	ctx.Printf("%s %s for %s%s\n", verb, ctx.Bold(habit.Name), schedule.FormatDate(day), suffix)
	if res.Goal != nil {
		ctx.Printf("🎉 Goal of %d days reached. %s has been archived.\n", res.Goal.Goal, habit.Name)
	}
}

type HabitCompleteCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitCompleteCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.Find(c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Tracker.Complete(context.Background(), habit.ID); err != nil {
		return err
	}
	ctx.Printf("Archived habit: %s\n", habit.Name)
	return nil
}

type HabitRestoreCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitRestoreCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.Find(c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Tracker.Restore(context.Background(), habit.ID); err != nil {
		return err
	}
	ctx.Printf("Restored habit: %s\n", habit.Name)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Purge bool   `help:"Remove the habit and its completions permanently."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.Find(c.Habit)
	if err != nil {
		return err
	}

	question := fmt.Sprintf("Delete habit %q?", habit.Name)
	if c.Purge {
		question = fmt.Sprintf("Permanently delete habit %q and all of its completions?", habit.Name)
	}
	ok, err := ctx.Confirm(question)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Delete cancelled.")
		return nil
	}

	bg := context.Background()
	if c.Purge {
		ctx.PerformAutomaticBackup(bg)
	}
	if err := ctx.Tracker.Delete(bg, habit.ID, c.Purge); err != nil {
		return err
	}

	if c.Purge {
		ctx.Printf("Purged habit: %s\n", habit.Name)
	} else {
		ctx.Printf("Deleted habit: %s (restore with 'cadence habit undelete %s')\n", habit.Name, habit.ID)
	}
	return nil
}

type HabitUndeleteCmd struct {
	Habit string `arg:"" help:"Name or ID of the deleted habit."`
}

func (c *HabitUndeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	all, err := ctx.Store.GetAllHabits(bg, true, true)
	if err != nil {
		return err
	}

	var id string
	for _, h := range all {
		if !h.IsDeleted() {
			continue
		}
		if h.ID == c.Habit {
			id = h.ID
			break
		}
		if strings.EqualFold(h.Name, c.Habit) {
			id = h.ID
		}
	}
	if id == "" {
		return fmt.Errorf("deleted habit %q: %w", c.Habit, errors.ErrNotFound)
	}

	habit, err := ctx.Tracker.Undelete(bg, id)
	if err != nil {
		return err
	}
	ctx.Printf("Restored habit: %s\n", habit.Name)
	return nil
}

type HabitResyncCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitResyncCmd) Run(ctx *cli.Context) error {
	if ctx.Sync == nil {
		return fmt.Errorf("task sync is disabled (set %s: true)", constants.SettingSyncEnabled)
	}
	habit, err := ctx.Tracker.Find(c.Habit)
	if err != nil {
		return err
	}
	n, err := ctx.Tracker.Resync(context.Background(), habit.ID)
	if err != nil {
		return err
	}
	ctx.Printf("Queued %d day(s) of %s for sync\n", n, habit.Name)
	return nil
}
