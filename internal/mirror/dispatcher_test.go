package mirror_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cerrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/mirror"
	"github.com/julianstephens/cadence/internal/mirror/mocks"
)

func fastOptions() mirror.Options {
	return mirror.Options{
		MaxRetries:   3,
		RetryDelay:   time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		ApplyTimeout: time.Second,
	}
}

func flush(t *testing.T, d *mirror.Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Flush(ctx))
}

func TestDispatcherAppliesCommand(t *testing.T) {
	applier := new(mocks.Applier)
	cmd := mirror.Command{Title: "Read", Day: day, Completed: true}
	applier.On("Apply", mock.Anything, cmd).Return(1, nil).Once()

	d := mirror.NewDispatcher(applier, fastOptions())
	defer d.Close()

	d.Enqueue(cmd)
	flush(t, d)

	applier.AssertExpectations(t)
	stats := d.Stats()
	require.Equal(t, 1, stats.Applied)
	require.Zero(t, stats.Pending)
}

func TestDispatcherRetriesSameEndState(t *testing.T) {
	applier := new(mocks.Applier)
	cmd := mirror.Command{Title: "Read", Day: day, Completed: true}
	applier.On("Apply", mock.Anything, cmd).Return(0, errors.New("timeout")).Twice()
	applier.On("Apply", mock.Anything, cmd).Return(1, nil).Once()

	d := mirror.NewDispatcher(applier, fastOptions())
	defer d.Close()

	d.Enqueue(cmd)
	flush(t, d)

	applier.AssertNumberOfCalls(t, "Apply", 3)
	require.Equal(t, 1, d.Stats().Applied)
	require.Zero(t, d.Stats().Failed)
}

func TestDispatcherReportsFailureAfterRetries(t *testing.T) {
	applier := new(mocks.Applier)
	cmd := mirror.Command{Title: "Read", Day: day, Completed: true}
	applier.On("Apply", mock.Anything, cmd).Return(0, errors.New("unreachable"))

	var (
		mu       sync.Mutex
		reported []error
	)
	opts := fastOptions()
	opts.OnFailure = func(_ mirror.Command, err error) {
		mu.Lock()
		defer mu.Unlock()
		reported = append(reported, err)
	}

	d := mirror.NewDispatcher(applier, opts)
	defer d.Close()

	d.Enqueue(cmd)
	flush(t, d)

	applier.AssertNumberOfCalls(t, "Apply", 3)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, reported, 1)
	require.ErrorIs(t, reported[0], cerrors.ErrSyncWriteFailed)
	require.Equal(t, 1, d.Stats().Failed)
}

func TestDispatcherCloseDuringRetryWaitLogsDrop(t *testing.T) {
	var buf bytes.Buffer
	restore := logger.Capture(&buf, log.WarnLevel)
	defer restore()

	attempted := make(chan struct{})
	var once sync.Once
	cmd := mirror.Command{Title: "Read", Day: day, Completed: true}
	applier := new(mocks.Applier)
	applier.On("Apply", mock.Anything, cmd).Return(0, errors.New("remote down")).
		Run(func(mock.Arguments) { once.Do(func() { close(attempted) }) })

	opts := fastOptions()
	opts.RetryDelay = time.Hour
	opts.MaxDelay = time.Hour
	d := mirror.NewDispatcher(applier, opts)

	d.Enqueue(cmd)
	<-attempted

	closed := make(chan struct{})
	go func() {
		_ = d.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked on the retry wait")
	}

	applier.AssertNumberOfCalls(t, "Apply", 1)
	stats := d.Stats()
	require.Zero(t, stats.Failed)
	require.Equal(t, 1, stats.Dropped)
	require.Contains(t, buf.String(), "Dropping unsynced task update")
	require.Contains(t, buf.String(), "Read")
}

// blockingApplier holds the first Apply until released so later commands queue up.
type blockingApplier struct {
	mu      sync.Mutex
	release chan struct{}
	first   sync.Once
	started chan struct{}
	applied []mirror.Command
}

func (b *blockingApplier) Apply(_ context.Context, cmd mirror.Command) (int, error) {
	b.first.Do(func() {
		close(b.started)
		<-b.release
	})
	b.mu.Lock()
	defer b.mu.Unlock()
	b.applied = append(b.applied, cmd)
	return 1, nil
}

func TestDispatcherCoalescesLastWriteWins(t *testing.T) {
	applier := &blockingApplier{release: make(chan struct{}), started: make(chan struct{})}
	d := mirror.NewDispatcher(applier, fastOptions())
	defer d.Close()

	other := mirror.Command{Title: "Run", Day: day, Completed: true}
	d.Enqueue(other)
	<-applier.started

	d.Enqueue(mirror.Command{Title: "Read", Day: day, Completed: true})
	d.Enqueue(mirror.Command{Title: "Read", Day: day, Completed: false})
	d.Enqueue(mirror.Command{Title: "Read", Day: day, Completed: true})
	require.Equal(t, 2, d.Stats().Coalesced)

	close(applier.release)
	flush(t, d)

	applier.mu.Lock()
	defer applier.mu.Unlock()
	require.Len(t, applier.applied, 2)
	require.Equal(t, other, applier.applied[0])
	require.Equal(t, "Read", applier.applied[1].Title)
	require.True(t, applier.applied[1].Completed)
}

func TestDispatcherFlushHonoursContext(t *testing.T) {
	applier := &blockingApplier{release: make(chan struct{}), started: make(chan struct{})}
	d := mirror.NewDispatcher(applier, fastOptions())

	d.Enqueue(mirror.Command{Title: "Read", Day: day, Completed: true})
	<-applier.started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, d.Flush(ctx), context.DeadlineExceeded)

	close(applier.release)
	require.NoError(t, d.Close())
}

func TestDispatcherFlushWhenIdle(t *testing.T) {
	d := mirror.NewDispatcher(new(mocks.Applier), fastOptions())
	defer d.Close()
	flush(t, d)
}
