package sqlstore

import (
	"context"
	"fmt"

	"github.com/julianstephens/cadence/internal/models"
)

// AddCompletion records a completion. Recording the same day twice is a no-op.
func (q Queries) AddCompletion(ctx context.Context, c models.Completion) error {
	if err := q.ready(); err != nil {
		return err
	}
	_, err := q.db.NamedExecContext(ctx, `
		INSERT INTO habit_completions (habit_id, completed_date, created_at)
		VALUES (:habit_id, :completed_date, :created_at)
		ON CONFLICT (habit_id, completed_date) DO NOTHING`, c)
	if err != nil {
		return fmt.Errorf("failed to insert completion: %w", err)
	}
	return nil
}

// RemoveCompletion deletes a completion. Removing an absent day is a no-op.
func (q Queries) RemoveCompletion(ctx context.Context, habitID, day string) error {
	if err := q.ready(); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx, q.db.Rebind(`
		DELETE FROM habit_completions WHERE habit_id = ? AND completed_date = ?`), habitID, day)
	if err != nil {
		return fmt.Errorf("failed to delete completion: %w", err)
	}
	return nil
}

func (q Queries) GetCompletions(ctx context.Context, habitID string) ([]models.Completion, error) {
	if err := q.ready(); err != nil {
		return nil, err
	}
	completions := []models.Completion{}
	err := q.db.SelectContext(ctx, &completions, q.db.Rebind(`
		SELECT habit_id, completed_date, created_at
		FROM habit_completions WHERE habit_id = ?
		ORDER BY completed_date`), habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	return completions, nil
}

func (q Queries) GetAllCompletions(ctx context.Context) ([]models.Completion, error) {
	if err := q.ready(); err != nil {
		return nil, err
	}
	completions := []models.Completion{}
	err := q.db.SelectContext(ctx, &completions, `
		SELECT habit_id, completed_date, created_at
		FROM habit_completions
		ORDER BY habit_id, completed_date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	return completions, nil
}
