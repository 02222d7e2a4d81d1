package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/models"
)

const habitColumns = `id, name, description, target_days, habit_days, start_date, cover_image_url,
	archived_at, created_at, updated_at, deleted_at`

func (q Queries) AddHabit(ctx context.Context, habit models.Habit) error {
	if err := q.ready(); err != nil {
		return err
	}
	_, err := q.db.NamedExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (:id, :name, :description, :target_days, :habit_days, :start_date, :cover_image_url,
			:archived_at, :created_at, :updated_at, :deleted_at)`, habit)
	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	return nil
}

func (q Queries) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	if err := q.ready(); err != nil {
		return models.Habit{}, err
	}
	var h models.Habit
	err := q.db.GetContext(ctx, &h, q.db.Rebind(`
		SELECT `+habitColumns+`
		FROM habits WHERE id = ? AND deleted_at IS NULL`), id)
	if err != nil {
		return models.Habit{}, notFound("habit", id, err)
	}
	return h, nil
}

func (q Queries) GetHabitByName(ctx context.Context, name string) (models.Habit, error) {
	if err := q.ready(); err != nil {
		return models.Habit{}, err
	}
	var h models.Habit
	err := q.db.GetContext(ctx, &h, q.db.Rebind(`
		SELECT `+habitColumns+`
		FROM habits WHERE name = ? AND deleted_at IS NULL`), name)
	if err != nil {
		return models.Habit{}, notFound("habit", name, err)
	}
	return h, nil
}

func (q Queries) GetAllHabits(ctx context.Context, includeArchived, includeDeleted bool) ([]models.Habit, error) {
	if err := q.ready(); err != nil {
		return nil, err
	}
	query := `SELECT ` + habitColumns + ` FROM habits WHERE 1=1`
	if !includeArchived {
		query += ` AND archived_at IS NULL`
	}
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY name`

	habits := []models.Habit{}
	if err := q.db.SelectContext(ctx, &habits, query); err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	return habits, nil
}

func (q Queries) UpdateHabit(ctx context.Context, habit models.Habit) error {
	if err := q.ready(); err != nil {
		return err
	}
	res, err := q.db.NamedExecContext(ctx, `
		UPDATE habits SET
			name = :name,
			description = :description,
			target_days = :target_days,
			habit_days = :habit_days,
			start_date = :start_date,
			cover_image_url = :cover_image_url,
			archived_at = :archived_at,
			updated_at = :updated_at,
			deleted_at = :deleted_at
		WHERE id = :id`, habit)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	return expectOne(res, "habit", habit.ID)
}

func (q Queries) ArchiveHabit(ctx context.Context, id string) error {
	return q.stamp(ctx, `UPDATE habits SET archived_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, id)
}

func (q Queries) UnarchiveHabit(ctx context.Context, id string) error {
	if err := q.ready(); err != nil {
		return err
	}
	res, err := q.db.ExecContext(ctx, q.db.Rebind(`
		UPDATE habits SET archived_at = NULL, updated_at = ? WHERE id = ? AND deleted_at IS NULL`),
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to unarchive habit: %w", err)
	}
	return expectOne(res, "habit", id)
}

func (q Queries) DeleteHabit(ctx context.Context, id string) error {
	return q.stamp(ctx, `UPDATE habits SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, id)
}

func (q Queries) RestoreHabit(ctx context.Context, id string) error {
	if err := q.ready(); err != nil {
		return err
	}
	res, err := q.db.ExecContext(ctx, q.db.Rebind(`
		UPDATE habits SET deleted_at = NULL, updated_at = ? WHERE id = ? AND deleted_at IS NOT NULL`),
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to restore habit: %w", err)
	}
	return expectOne(res, "deleted habit", id)
}

func (q Queries) PurgeHabit(ctx context.Context, id string) error {
	if err := q.ready(); err != nil {
		return err
	}
	tx, err := q.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM habit_completions WHERE habit_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete completions: %w", err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM habits WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if err := expectOne(res, "habit", id); err != nil {
		return err
	}
	return tx.Commit()
}

// stamp sets a nullable timestamp column and updated_at to now
func (q Queries) stamp(ctx context.Context, query, id string) error {
	if err := q.ready(); err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, q.db.Rebind(query), now, now, id)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	return expectOne(res, "habit", id)
}
