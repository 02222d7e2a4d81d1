package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/cadence/internal/backup"
	"github.com/julianstephens/cadence/internal/config"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/mirror"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/schedule"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
	"github.com/julianstephens/cadence/internal/tracker"
)

type Context struct {
	Config  *config.Config
	Store   storage.Provider
	Tracker *tracker.Tracker
	// Sync is nil when task mirroring is disabled
	Sync *mirror.Dispatcher

	Out       io.Writer
	Now       func() time.Time
	AssumeYes bool
}

// Writer is where command output goes, stdout unless Out is set
func (c *Context) Writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Writer(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Writer(), args...)
}

// Bold renders s with emphasis when the output is a terminal
func (c *Context) Bold(s string) string {
	return lipgloss.NewRenderer(c.Writer()).NewStyle().Bold(true).Render(s)
}

// Faint renders secondary text
func (c *Context) Faint(s string) string {
	return lipgloss.NewRenderer(c.Writer()).NewStyle().Faint(true).Render(s)
}

func (c *Context) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Context) location() *time.Location {
	if c.Config == nil {
		return time.Local
	}
	loc, err := c.Config.Location()
	if err != nil {
		return time.Local
	}
	return loc
}

// Today is the current civil date in the configured timezone
func (c *Context) Today() time.Time {
	return schedule.Date(c.now().In(c.location()))
}

// ParseDay accepts YYYY-MM-DD, "today", "yesterday" or an empty string (today)
func (c *Context) ParseDay(s string) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return c.Today(), nil
	case "yesterday":
		return schedule.AddDays(c.Today(), -1), nil
	}
	day, err := schedule.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
	}
	return day, nil
}

// Confirm asks a yes/no question unless --yes was given
func (c *Context) Confirm(title string) (bool, error) {
	if c.AssumeYes {
		return true, nil
	}
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// PerformAutomaticBackup snapshots a SQLite database and logs failures
// without interrupting the command
func (c *Context) PerformAutomaticBackup(ctx context.Context) {
	store, ok := c.Store.(*sqlite.Store)
	if !ok {
		return
	}
	if _, err := backup.NewManager(store.GetConfigPath()).Create(ctx); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// FlushSync waits for pending mirror writes, bounded by timeout
func (c *Context) FlushSync(timeout time.Duration) error {
	if c.Sync == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.Sync.Flush(ctx)
}

// Close stops the mirror worker and the store
func (c *Context) Close() error {
	if c.Sync != nil {
		if err := c.Sync.Close(); err != nil {
			logger.Warn("Failed to stop task sync", "error", err)
		}
	}
	if c.Store != nil {
		return c.Store.Close()
	}
	return nil
}

// HabitStatus is the short status label shown in listings
func HabitStatus(h models.Habit) string {
	switch {
	case h.IsDeleted():
		return "deleted"
	case h.IsArchived():
		return "archived"
	default:
		return "active"
	}
}
