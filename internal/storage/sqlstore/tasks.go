package sqlstore

import (
	"context"
	"fmt"

	"github.com/julianstephens/cadence/internal/models"
)

const taskColumns = `id, title, due_date, is_completed, completed_at, status, created_at, updated_at`

func (q Queries) AddTask(ctx context.Context, task models.Task) error {
	if err := q.ready(); err != nil {
		return err
	}
	_, err := q.db.NamedExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (:id, :title, :due_date, :is_completed, :completed_at, :status, :created_at, :updated_at)`, task)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (q Queries) GetTask(ctx context.Context, id string) (models.Task, error) {
	if err := q.ready(); err != nil {
		return models.Task{}, err
	}
	var t models.Task
	err := q.db.GetContext(ctx, &t, q.db.Rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id)
	if err != nil {
		return models.Task{}, notFound("task", id, err)
	}
	return t, nil
}

func (q Queries) GetAllTasks(ctx context.Context) ([]models.Task, error) {
	if err := q.ready(); err != nil {
		return nil, err
	}
	tasks := []models.Task{}
	if err := q.db.SelectContext(ctx, &tasks, `SELECT `+taskColumns+` FROM tasks ORDER BY due_date, title`); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (q Queries) FindTasks(ctx context.Context, title, dueDate string) ([]models.Task, error) {
	if err := q.ready(); err != nil {
		return nil, err
	}
	tasks := []models.Task{}
	err := q.db.SelectContext(ctx, &tasks, q.db.Rebind(`
		SELECT `+taskColumns+` FROM tasks
		WHERE title = ? AND due_date = ?
		ORDER BY created_at`), title, dueDate)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	return tasks, nil
}

func (q Queries) UpdateTask(ctx context.Context, task models.Task) error {
	if err := q.ready(); err != nil {
		return err
	}
	res, err := q.db.NamedExecContext(ctx, `
		UPDATE tasks SET
			title = :title,
			due_date = :due_date,
			is_completed = :is_completed,
			completed_at = :completed_at,
			status = :status,
			updated_at = :updated_at
		WHERE id = :id`, task)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return expectOne(res, "task", task.ID)
}

func (q Queries) DeleteTask(ctx context.Context, id string) error {
	if err := q.ready(); err != nil {
		return err
	}
	res, err := q.db.ExecContext(ctx, q.db.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return expectOne(res, "task", id)
}
