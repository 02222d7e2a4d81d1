package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/cadence/internal/backup"
	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB checks are skipped when the database is unreachable
	needsDB bool
	// warnOnly failures do not fail the run
	warnOnly bool
	fn       func(context.Context, *cli.Context) error
}

var checks = []check{
	{name: "Database reachable", fn: checkDBReachable},
	{name: "Schema version", needsDB: true, fn: checkSchemaVersion},
	{name: "Backups present", warnOnly: true, fn: checkBackupsPresent},
	{name: "Clock/timezone", fn: checkTimezone},
	{name: "Habit integrity", needsDB: true, fn: checkHabitIntegrity},
	{name: "Orphaned completions", needsDB: true, fn: checkOrphanedCompletions},
	{name: "Task sync", warnOnly: true, fn: checkSync},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	bg := context.Background()
	hasError := false
	dbReachable := true

	for i, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.fn(bg, ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			if i == 0 {
				dbReachable = false
			}
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(_ context.Context, ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	return nil
}

func checkSchemaVersion(bg context.Context, ctx *cli.Context) error {
	migrator, ok := ctx.Store.(storage.Migrator)
	if !ok {
		return nil
	}
	current, latest, err := migrator.SchemaVersion(bg)
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("schema version %d is behind %d, run 'cadence migrate'", current, latest)
	}
	return nil
}

func checkBackupsPresent(_ context.Context, ctx *cli.Context) error {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil
	}
	mgr := backup.NewManager(store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s (run 'cadence backup create')", mgr.Dir())
	}
	return nil
}

func checkTimezone(_ context.Context, ctx *cli.Context) error {
	if ctx.Config == nil {
		return nil
	}
	_, err := ctx.Config.Location()
	return err
}

func checkHabitIntegrity(bg context.Context, ctx *cli.Context) error {
	if err := ctx.Tracker.Load(bg); err != nil {
		return err
	}
	for _, h := range ctx.Tracker.List(true) {
		if _, err := ctx.Tracker.ResolveEndDate(h.ID); err != nil {
			return fmt.Errorf("habit %q: %w", h.Name, err)
		}
	}
	return nil
}

func checkOrphanedCompletions(bg context.Context, ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(bg, true, true)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(habits))
	for _, h := range habits {
		known[h.ID] = true
	}

	completions, err := ctx.Store.GetAllCompletions(bg)
	if err != nil {
		return err
	}
	orphans := 0
	for _, c := range completions {
		if !known[c.HabitID] {
			orphans++
		}
	}
	if orphans > 0 {
		return fmt.Errorf("%d completion(s) reference missing habits", orphans)
	}
	return nil
}

func checkSync(_ context.Context, ctx *cli.Context) error {
	if ctx.Sync == nil {
		return fmt.Errorf("task sync is disabled")
	}
	if stats := ctx.Sync.Stats(); stats.LastError != nil {
		return fmt.Errorf("last sync error: %v", stats.LastError)
	}
	return nil
}
