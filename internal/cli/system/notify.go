package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/notifier"
	"github.com/julianstephens/cadence/internal/schedule"
)

type reminderSender interface {
	Notify(ctx context.Context, text string) error
}

// newSender is swapped in tests
var newSender = func() reminderSender { return notifier.New() }

// NotifyCmd sends one reminder per active habit that is scheduled today and
// not yet completed. It is meant to run from cron or a systemd timer.
type NotifyCmd struct {
	DryRun bool `help:"Print reminders to stdout instead of sending them."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	if ctx.Config != nil && !ctx.Config.Notify.Reminders {
		if c.DryRun {
			ctx.Println("Reminders are disabled in config.")
		}
		return nil
	}

	today := ctx.Today()
	var pending []string
	for _, h := range ctx.Tracker.List(false) {
		s, err := ctx.Tracker.Summary(h.ID)
		if err != nil {
			logger.Warn("Skipping habit in reminders", "habit", h.Name, "error", err)
			continue
		}
		if !s.ScheduledToday || s.CompletedToday || !schedule.IsWithinRange(today, s.Start, s.End) {
			continue
		}
		pending = append(pending, fmt.Sprintf("Reminder: %s is still open today (%d/%d)", s.Name, s.TotalCompleted, s.Goal))
	}

	if len(pending) == 0 {
		if c.DryRun {
			ctx.Println("Nothing pending today.")
		}
		return nil
	}

	var sender reminderSender
	if !c.DryRun {
		sender = newSender()
	}
	bg := context.Background()
	for _, msg := range pending {
		if c.DryRun {
			ctx.Println("[DryRun] " + msg)
			continue
		}
		if err := sender.Notify(bg, msg); err != nil {
			// the tray app may not be running; keep going for the rest
			ctx.Printf("Failed to send notification: %v\n", err)
		}
	}
	return nil
}
