// Package transfer moves habits and their completion days between stores as
// a YAML document.
package transfer

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/schedule"
	"github.com/julianstephens/cadence/internal/storage"
)

// FormatVersion is bumped whenever the document layout changes incompatibly
const FormatVersion = 1

type Document struct {
	Version    int           `yaml:"version"`
	ExportedAt time.Time     `yaml:"exported_at"`
	Habits     []HabitRecord `yaml:"habits"`
}

// HabitRecord is a habit plus its completed days (YYYY-MM-DD, ascending)
type HabitRecord struct {
	models.Habit `yaml:",inline"`
	Completions  []string `yaml:"completions"`
}

// Result counts what Import changed
type Result struct {
	Created     int
	Updated     int
	Completions int
}

// Export collects every habit (soft-deleted ones only when includeDeleted)
// together with its completions.
func Export(ctx context.Context, store storage.Provider, includeDeleted bool, now time.Time) (Document, error) {
	habits, err := store.GetAllHabits(ctx, true, includeDeleted)
	if err != nil {
		return Document{}, err
	}

	doc := Document{Version: FormatVersion, ExportedAt: now.UTC(), Habits: make([]HabitRecord, 0, len(habits))}
	for _, h := range habits {
		completions, err := store.GetCompletions(ctx, h.ID)
		if err != nil {
			return Document{}, fmt.Errorf("habit %s: %w", h.ID, err)
		}
		days := make([]string, 0, len(completions))
		for _, c := range completions {
			days = append(days, c.Day)
		}
		sort.Strings(days)
		doc.Habits = append(doc.Habits, HabitRecord{Habit: h, Completions: days})
	}
	return doc, nil
}

func Encode(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return enc.Close()
}

func Decode(r io.Reader) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode import: %w", err)
	}
	if doc.Version != FormatVersion {
		return Document{}, fmt.Errorf("unsupported export version %d (expected %d)", doc.Version, FormatVersion)
	}
	return doc, nil
}

// Validate checks every record before anything is written, resolving end
// dates with the default cap.
func (d Document) Validate() error {
	return d.ValidateWith(schedule.DefaultResolver)
}

// ValidateWith is Validate with an explicit end-date resolver. A goal the
// resolver cannot reach fails with errors.ErrGoalUnreachable.
func (d Document) ValidateWith(resolver schedule.Resolver) error {
	seen := make(map[string]bool, len(d.Habits))
	for i, rec := range d.Habits {
		if rec.ID == "" {
			return fmt.Errorf("habit #%d: missing id", i+1)
		}
		if seen[rec.ID] {
			return fmt.Errorf("habit %s: duplicate id", rec.ID)
		}
		seen[rec.ID] = true

		if strings.TrimSpace(rec.Name) == "" {
			return fmt.Errorf("habit %s: missing name", rec.ID)
		}
		if rec.Pattern.IsEmpty() {
			return fmt.Errorf("habit %s: %w", rec.ID, errors.ErrInvalidPattern)
		}
		if rec.GoalCount < 1 {
			return fmt.Errorf("habit %s: %w", rec.ID, errors.ErrInvalidGoal)
		}
		start, err := schedule.ParseDate(rec.StartDate)
		if err != nil {
			return fmt.Errorf("habit %s: %w", rec.ID, err)
		}
		if _, err := resolver.ResolveEndDate(start, rec.Pattern, rec.GoalCount); err != nil {
			return fmt.Errorf("habit %s: %w", rec.ID, err)
		}
		for _, day := range rec.Completions {
			if _, err := schedule.ParseDate(day); err != nil {
				return fmt.Errorf("habit %s: %w", rec.ID, err)
			}
		}
	}
	return nil
}

// Import upserts habits by id and merges completion days into the store.
// Days already recorded are kept; nothing is removed. A record whose name
// belongs to a different live habit is rejected with ErrAlreadyExists.
func Import(ctx context.Context, store storage.Provider, doc Document, resolver schedule.Resolver) (Result, error) {
	var res Result
	if err := doc.ValidateWith(resolver); err != nil {
		return res, err
	}

	existing, err := store.GetAllHabits(ctx, true, true)
	if err != nil {
		return res, err
	}
	byID := make(map[string]models.Habit, len(existing))
	liveNames := make(map[string]string, len(existing))
	for _, h := range existing {
		byID[h.ID] = h
		if !h.IsDeleted() {
			liveNames[strings.ToLower(h.Name)] = h.ID
		}
	}

	for _, rec := range doc.Habits {
		if !rec.IsDeleted() {
			if owner, ok := liveNames[strings.ToLower(rec.Name)]; ok && owner != rec.ID {
				return res, fmt.Errorf("habit %q: %w", rec.Name, errors.ErrAlreadyExists)
			}
		}

		if _, ok := byID[rec.ID]; ok {
			if err := store.UpdateHabit(ctx, rec.Habit); err != nil {
				return res, err
			}
			res.Updated++
		} else {
			if err := store.AddHabit(ctx, rec.Habit); err != nil {
				return res, err
			}
			res.Created++
		}
		if !rec.IsDeleted() {
			liveNames[strings.ToLower(rec.Name)] = rec.ID
		}

		for _, day := range rec.Completions {
			err := store.AddCompletion(ctx, models.Completion{HabitID: rec.ID, Day: day, CreatedAt: time.Now().UTC()})
			if err != nil {
				return res, fmt.Errorf("habit %s day %s: %w", rec.ID, day, err)
			}
			res.Completions++
		}
	}
	return res, nil
}
