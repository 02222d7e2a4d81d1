package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/config"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
)

type InitCmd struct {
	Force bool `help:"Delete an existing SQLite database before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if _, ok := ctx.Store.(*sqlite.Store); ok {
			dbPath := ctx.Store.GetConfigPath()
			if _, err := os.Stat(dbPath); err == nil {
				if err := ctx.Store.Close(); err != nil {
					return fmt.Errorf("failed to close existing database: %w", err)
				}
				if err := os.Remove(dbPath); err != nil {
					return fmt.Errorf("failed to delete existing database: %w", err)
				}
				ctx.Printf("Deleted existing database at: %s\n", dbPath)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("failed to access existing database: %w", err)
			}
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized cadence storage at: %s\n", ctx.Store.GetConfigPath())

	if ctx.Config != nil && ctx.Config.Path() != "" {
		if _, err := os.Stat(ctx.Config.Path()); os.IsNotExist(err) {
			if err := config.Save(ctx.Config.Path(), ctx.Config); err != nil {
				return err
			}
			ctx.Printf("Wrote default config to: %s\n", ctx.Config.Path())
		}
	}
	return nil
}
