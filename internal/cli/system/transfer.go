package system

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/schedule"
	"github.com/julianstephens/cadence/internal/transfer"
)

type ExportCmd struct {
	Output         string `short:"o" help:"Write to this file instead of stdout."`
	IncludeDeleted bool   `help:"Include soft-deleted habits."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	now := time.Now()
	if ctx.Now != nil {
		now = ctx.Now()
	}
	doc, err := transfer.Export(context.Background(), ctx.Store, c.IncludeDeleted, now)
	if err != nil {
		return err
	}

	if c.Output == "" {
		return transfer.Encode(ctx.Writer(), doc)
	}

	f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := transfer.Encode(f, doc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	ctx.Printf("Exported %d habit(s) to %s\n", len(doc.Habits), c.Output)
	return nil
}

type ImportCmd struct {
	File string `arg:"" help:"YAML file produced by 'cadence export' (- for stdin)."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	var r io.Reader = os.Stdin
	if c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return fmt.Errorf("failed to open import file: %w", err)
		}
		defer f.Close()
		r = f
	}

	doc, err := transfer.Decode(r)
	if err != nil {
		return err
	}
	resolver := schedule.DefaultResolver
	if ctx.Config != nil {
		resolver = schedule.Resolver{MaxDays: ctx.Config.Engine.GoalCapDays}
	}
	if err := doc.ValidateWith(resolver); err != nil {
		return err
	}

	bg := context.Background()
	ctx.PerformAutomaticBackup(bg)
	res, err := transfer.Import(bg, ctx.Store, doc, resolver)
	if err != nil {
		return err
	}
	if err := ctx.Tracker.Load(bg); err != nil {
		return err
	}

	ctx.Printf("Imported %d habit(s): %d created, %d updated, %d completion(s)\n",
		res.Created+res.Updated, res.Created, res.Updated, res.Completions)
	return nil
}
