package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/julianstephens/cadence/internal/mirror"
	"github.com/julianstephens/cadence/internal/models"
)

// TaskStore is a mock for mirror.TaskStore.
type TaskStore struct {
	mock.Mock
}

func (m *TaskStore) FindTasks(ctx context.Context, title, dueDate string) ([]models.Task, error) {
	args := m.Called(ctx, title, dueDate)
	if tasks, ok := args.Get(0).([]models.Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskStore) UpdateTask(ctx context.Context, task models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

// Applier is a mock for mirror.Applier.
type Applier struct {
	mock.Mock
}

func (m *Applier) Apply(ctx context.Context, cmd mirror.Command) (int, error) {
	args := m.Called(ctx, cmd)
	return args.Int(0), args.Error(1)
}

// Enqueuer records commands handed to the mirror.
type Enqueuer struct {
	mock.Mock
}

func (m *Enqueuer) Enqueue(cmd mirror.Command) {
	m.Called(cmd)
}
