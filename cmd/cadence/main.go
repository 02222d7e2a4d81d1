package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/cli/backups"
	"github.com/julianstephens/cadence/internal/cli/habits"
	"github.com/julianstephens/cadence/internal/cli/system"
	"github.com/julianstephens/cadence/internal/cli/tasks"
	"github.com/julianstephens/cadence/internal/config"
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/keyring"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/mirror"
	"github.com/julianstephens/cadence/internal/notifier"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/tracker"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path." type:"path" default:"${config_path}"`
	DB       string `name:"db" help:"SQLite path or PostgreSQL connection string. PostgreSQL credentials must NOT be embedded; use the keyring or CADENCE_DB_CONNECTION instead."`
	Verbose  bool   `name:"verbose" short:"v" help:"Log debug output to stderr."`
	Yes      bool   `short:"y" help:"Answer yes to confirmation prompts."`

	Init     system.InitCmd     `cmd:"" help:"Initialize cadence storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Habit    habits.HabitCmd    `cmd:"" help:"Manage habits and completions."`
	Momentum habits.MomentumCmd `cmd:"" help:"Show the momentum score."`
	Task     tasks.TaskCmd      `cmd:"" help:"Manage the to-do list."`
	Export   system.ExportCmd   `cmd:"" help:"Export habits and completions as YAML."`
	Import   system.ImportCmd   `cmd:"" help:"Import habits and completions from YAML."`
	Backup   backups.BackupCmd  `cmd:"" help:"Manage database backups."`
	Keyring  system.KeyringCmd  `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Notify   system.NotifyCmd   `cmd:"" help:"Send reminders for habits still open today (run from cron)."`
	Debug    system.DebugCmd    `cmd:"" help:"Inspect stored data." hidden:""`
}

func parserOptions() []kong.Option {
	return []kong.Option{
		kong.Name(constants.AppName),
		kong.Description("Recurring habit tracker with streaks, momentum and to-do sync"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": config.DefaultPath(),
		},
	}
}

func main() {
	kctx := kong.Parse(&CLI, parserOptions()...)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Format(err))
		os.Exit(1)
	}
	if err := logger.Init(logger.Config{Debug: cfg.Debug || CLI.Verbose, ConfigDir: cfg.Dir()}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	command := kctx.Command()
	if strings.HasPrefix(command, "keyring") {
		errors.Fatal(kctx.Run(&cli.Context{Config: cfg, AssumeYes: CLI.Yes}))
		return
	}

	store, err := openStore(cfg, CLI.DB)
	if err != nil {
		errors.Fatal(err)
	}

	appCtx, err := newContext(cfg, store, command)
	if err != nil {
		if appCtx != nil {
			appCtx.Close()
		} else {
			store.Close()
		}
		errors.Fatal(err)
	}

	err = kctx.Run(appCtx)
	if ferr := appCtx.FlushSync(constants.SyncApplyTimeout); ferr != nil {
		logger.Warn("Task sync did not finish", "error", ferr)
	}
	if cerr := appCtx.Close(); cerr != nil {
		logger.Warn("Failed to close storage", "error", cerr)
	}
	errors.Fatal(err)
}

// openStore resolves the database: --db first, then a credentialed
// connection string from CADENCE_DB_CONNECTION or the keyring, then the
// database named in the config file
func openStore(cfg *config.Config, dbFlag string) (storage.Provider, error) {
	if dbFlag != "" {
		return storage.Open(dbFlag)
	}

	connStr, source, err := keyring.ResolveConnectionString()
	if err != nil {
		logger.Debug("Keyring lookup failed", "error", err)
	}
	if source != keyring.SourceNone {
		logger.Debug("Using connection string", "source", source)
		return storage.OpenSecret(connStr)
	}
	return storage.Open(cfg.Database)
}

func newContext(cfg *config.Config, store storage.Provider, command string) (*cli.Context, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	appCtx := &cli.Context{
		Config:    cfg,
		Store:     store,
		AssumeYes: CLI.Yes,
	}

	opts := []tracker.Option{
		tracker.WithLocation(loc),
		tracker.WithGoalCap(cfg.Engine.GoalCapDays),
		tracker.WithWeights(cfg.Engine.Momentum),
	}
	if cfg.Sync.Enabled {
		mopts := mirror.DefaultOptions()
		mopts.MaxRetries = cfg.Sync.MaxRetries
		mopts.RetryDelay = cfg.Sync.RetryDelay
		mopts.OnFailure = func(cmd mirror.Command, err error) {
			fmt.Fprintf(os.Stderr, "Warning: could not update to-do list for %s: %v\n", cmd, err)
		}
		appCtx.Sync = mirror.NewDispatcher(mirror.NewBridge(store), mopts)
		opts = append(opts, tracker.WithMirror(appCtx.Sync))
	}
	if cfg.Notify.GoalCompleted {
		opts = append(opts, tracker.WithNotifier(notifier.New()))
	}
	appCtx.Tracker = tracker.New(store, opts...)

	// init creates the database and doctor reports load failures itself
	if strings.HasPrefix(command, "init") || strings.HasPrefix(command, "doctor") {
		return appCtx, nil
	}
	if err := store.Load(); err != nil {
		return appCtx, err
	}
	if err := appCtx.Tracker.Load(context.Background()); err != nil {
		return appCtx, err
	}
	return appCtx, nil
}
