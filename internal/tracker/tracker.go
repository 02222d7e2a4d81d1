// Package tracker owns the habit collection and exposes the engine's public API.
//
// All mutations go through a single mutex. Each habit carries a generation
// counter that every mutation bumps; callers that captured a generation before
// issuing a toggle get ErrConcurrentModification if anything changed since.
package tracker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/ledger"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/mirror"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/progress"
	"github.com/julianstephens/cadence/internal/schedule"
	"github.com/julianstephens/cadence/internal/storage"
)

var log = logger.For("tracker")

// Mirror receives end-state commands for the external task list
type Mirror interface {
	Enqueue(cmd mirror.Command)
}

// Notifier is told when a habit reaches its goal
type Notifier interface {
	NotifyGoalCompleted(ctx context.Context, habitName string, goal int) error
}

type activity struct {
	habit      models.Habit
	start      time.Time
	ledger     *ledger.Ledger
	generation uint64
}

type Tracker struct {
	store storage.Provider

	mu     sync.Mutex
	habits map[string]*activity

	now      func() time.Time
	location *time.Location
	resolver schedule.Resolver
	weights  progress.Weights
	mirror   Mirror
	notifier Notifier
}

type Option func(*Tracker)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLocation sets the timezone that decides which calendar day "today" is
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.location = loc
		}
	}
}

func WithMirror(m Mirror) Option {
	return func(t *Tracker) { t.mirror = m }
}

func WithNotifier(n Notifier) Option {
	return func(t *Tracker) { t.notifier = n }
}

// WithGoalCap bounds end-date resolution to maxDays
func WithGoalCap(maxDays int) Option {
	return func(t *Tracker) { t.resolver = schedule.Resolver{MaxDays: maxDays} }
}

func WithWeights(w progress.Weights) Option {
	return func(t *Tracker) { t.weights = w }
}

func New(store storage.Provider, opts ...Option) *Tracker {
	t := &Tracker{
		store:    store,
		habits:   make(map[string]*activity),
		now:      time.Now,
		location: time.Local,
		resolver: schedule.DefaultResolver,
		weights:  progress.DefaultWeights,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// HabitInput carries the user-editable fields of a habit
type HabitInput struct {
	Name          string
	Description   string
	StartDate     time.Time
	Pattern       schedule.Pattern
	GoalCount     int
	CoverImageURL string
}

// Load replaces the in-memory collection with live (non-deleted) habits from storage
func (t *Tracker) Load(ctx context.Context) error {
	habits, err := t.store.GetAllHabits(ctx, true, false)
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}
	completions, err := t.store.GetAllCompletions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load completions: %w", err)
	}

	loaded := make(map[string]*activity, len(habits))
	for _, h := range habits {
		a, err := newActivity(h)
		if err != nil {
			return err
		}
		loaded[h.ID] = a
	}
	for _, c := range completions {
		a, ok := loaded[c.HabitID]
		if !ok {
			continue
		}
		day, err := schedule.ParseDate(c.Day)
		if err != nil {
			return fmt.Errorf("habit %s: %w", c.HabitID, err)
		}
		a.ledger.Set(day, true)
	}

	t.mu.Lock()
	t.habits = loaded
	t.mu.Unlock()

	log.Debug("Loaded habits", "count", len(loaded), "completions", len(completions))
	return nil
}

func newActivity(h models.Habit) (*activity, error) {
	start, err := h.Start()
	if err != nil {
		return nil, fmt.Errorf("habit %q: %w", h.Name, err)
	}
	return &activity{habit: h, start: start, ledger: ledger.New()}, nil
}

// today is the current civil date in the tracker's location
func (t *Tracker) today() time.Time {
	return schedule.Date(t.now().In(t.location))
}

func (t *Tracker) validate(in HabitInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("habit name cannot be empty")
	}
	if in.Pattern.IsEmpty() {
		return errors.ErrInvalidPattern
	}
	if in.GoalCount < 1 {
		return fmt.Errorf("%w: got %d", errors.ErrInvalidGoal, in.GoalCount)
	}
	if in.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	_, err := t.resolver.ResolveEndDate(schedule.Date(in.StartDate), in.Pattern, in.GoalCount)
	return err
}

// lookup must be called with mu held
func (t *Tracker) lookup(id string) (*activity, error) {
	a, ok := t.habits[id]
	if !ok {
		return nil, fmt.Errorf("habit %q: %w", id, errors.ErrNotFound)
	}
	return a, nil
}

// nameTaken must be called with mu held
func (t *Tracker) nameTaken(name, exceptID string) bool {
	for id, a := range t.habits {
		if id != exceptID && strings.EqualFold(a.habit.Name, name) {
			return true
		}
	}
	return false
}

// Create validates and stores a new habit with an empty ledger
func (t *Tracker) Create(ctx context.Context, in HabitInput) (models.Habit, error) {
	if err := t.validate(in); err != nil {
		return models.Habit{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	name := strings.TrimSpace(in.Name)
	if t.nameTaken(name, "") {
		return models.Habit{}, fmt.Errorf("habit %q: %w", name, errors.ErrAlreadyExists)
	}

	now := t.now().UTC()
	h := models.Habit{
		ID:            uuid.New().String(),
		Name:          name,
		Description:   in.Description,
		StartDate:     schedule.FormatDate(in.StartDate),
		Pattern:       in.Pattern,
		GoalCount:     in.GoalCount,
		CoverImageURL: in.CoverImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := t.store.AddHabit(ctx, h); err != nil {
		return models.Habit{}, err
	}

	t.habits[h.ID] = &activity{habit: h, start: schedule.Date(in.StartDate), ledger: ledger.New()}
	log.Info("Created habit", "id", h.ID, "name", h.Name, "pattern", h.Pattern.String(), "goal", h.GoalCount)
	return h, nil
}

// Edit replaces a habit's editable fields. Completions are kept even when
// they fall outside the new range. Archival is not re-evaluated; call
// CheckAndArchive afterwards if the goal was lowered.
func (t *Tracker) Edit(ctx context.Context, id string, in HabitInput) (models.Habit, error) {
	if err := t.validate(in); err != nil {
		return models.Habit{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	a, err := t.lookup(id)
	if err != nil {
		return models.Habit{}, err
	}
	name := strings.TrimSpace(in.Name)
	if t.nameTaken(name, id) {
		return models.Habit{}, fmt.Errorf("habit %q: %w", name, errors.ErrAlreadyExists)
	}

	h := a.habit
	h.Name = name
	h.Description = in.Description
	h.StartDate = schedule.FormatDate(in.StartDate)
	h.Pattern = in.Pattern
	h.GoalCount = in.GoalCount
	h.CoverImageURL = in.CoverImageURL
	h.UpdatedAt = t.now().UTC()

	if err := t.store.UpdateHabit(ctx, h); err != nil {
		return models.Habit{}, err
	}
	if h.Name != a.habit.Name {
		log.Warn("Renamed habit; existing tasks titled with the old name are no longer mirrored",
			"id", id, "old", a.habit.Name, "new", h.Name)
	}

	a.habit = h
	a.start = schedule.Date(in.StartDate)
	a.generation++
	return h, nil
}

// Get returns a habit by id
func (t *Tracker) Get(id string) (models.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, err := t.lookup(id)
	if err != nil {
		return models.Habit{}, err
	}
	return a.habit, nil
}

// Find resolves a habit by id or, failing that, by case-insensitive name
func (t *Tracker) Find(ref string) (models.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if a, ok := t.habits[ref]; ok {
		return a.habit, nil
	}
	for _, a := range t.habits {
		if strings.EqualFold(a.habit.Name, ref) {
			return a.habit, nil
		}
	}
	return models.Habit{}, fmt.Errorf("habit %q: %w", ref, errors.ErrNotFound)
}

// List returns habits sorted by name
func (t *Tracker) List(includeArchived bool) []models.Habit {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.Habit, 0, len(t.habits))
	for _, a := range t.habits {
		if a.habit.IsArchived() && !includeArchived {
			continue
		}
		out = append(out, a.habit)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Completions returns the completed days of a habit in ascending order
func (t *Tracker) Completions(id string) ([]time.Time, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	return a.ledger.Days(), nil
}

// Delete removes a habit from the collection. A soft delete keeps its
// completions for Undelete; purge removes them permanently. External tasks
// are never touched.
func (t *Tracker) Delete(ctx context.Context, id string, purge bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, err := t.lookup(id)
	if err != nil {
		return err
	}
	if purge {
		err = t.store.PurgeHabit(ctx, id)
	} else {
		err = t.store.DeleteHabit(ctx, id)
	}
	if err != nil {
		return err
	}

	delete(t.habits, id)
	log.Info("Deleted habit", "id", id, "name", a.habit.Name, "purge", purge)
	return nil
}

// Undelete restores a soft-deleted habit together with its completions
func (t *Tracker) Undelete(ctx context.Context, id string) (models.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.habits[id]; ok {
		return models.Habit{}, fmt.Errorf("habit %q is not deleted", id)
	}

	all, err := t.store.GetAllHabits(ctx, true, true)
	if err != nil {
		return models.Habit{}, err
	}
	var h models.Habit
	for _, candidate := range all {
		if candidate.ID == id && candidate.IsDeleted() {
			h = candidate
			break
		}
	}
	if h.ID == "" {
		return models.Habit{}, fmt.Errorf("deleted habit %q: %w", id, errors.ErrNotFound)
	}
	if t.nameTaken(h.Name, id) {
		return models.Habit{}, fmt.Errorf("habit %q: %w", h.Name, errors.ErrAlreadyExists)
	}

	a, err := newActivity(h)
	if err != nil {
		return models.Habit{}, err
	}
	completions, err := t.store.GetCompletions(ctx, id)
	if err != nil {
		return models.Habit{}, err
	}
	for _, c := range completions {
		day, err := schedule.ParseDate(c.Day)
		if err != nil {
			return models.Habit{}, fmt.Errorf("habit %s: %w", id, err)
		}
		a.ledger.Set(day, true)
	}

	if err := t.store.RestoreHabit(ctx, id); err != nil {
		return models.Habit{}, err
	}
	a.habit.DeletedAt = nil

	t.habits[id] = a
	return a.habit, nil
}

// Generation returns the current generation of a habit
func (t *Tracker) Generation(id string) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, err := t.lookup(id)
	if err != nil {
		return 0, err
	}
	return a.generation, nil
}
