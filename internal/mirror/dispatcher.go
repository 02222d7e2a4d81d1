package mirror

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/logger"
)

var log = logger.For("mirror")

// Options tunes the dispatcher's retry behaviour
type Options struct {
	MaxRetries   int
	RetryDelay   time.Duration
	MaxDelay     time.Duration
	ApplyTimeout time.Duration
	// OnFailure is called with an error wrapping errors.ErrSyncWriteFailed once
	// a command has exhausted its retries.
	OnFailure func(cmd Command, err error)
}

// DefaultOptions returns the retry settings from constants
func DefaultOptions() Options {
	return Options{
		MaxRetries:   constants.SyncMaxRetries,
		RetryDelay:   constants.SyncRetryDelay,
		MaxDelay:     constants.SyncMaxDelay,
		ApplyTimeout: constants.SyncApplyTimeout,
	}
}

// Stats is a snapshot of dispatcher activity
type Stats struct {
	Pending   int
	Applied   int
	Failed    int
	Coalesced int
	// Dropped counts commands discarded by Close before they were written
	Dropped   int
	LastError error
	LastSync  time.Time
}

// Dispatcher applies commands on a single background goroutine. Pending
// commands for the same (title, day) are coalesced so only the most recent
// intended state is written: last write wins.
type Dispatcher struct {
	applier Applier
	opts    Options

	mu      sync.Mutex
	pending map[key]Command
	order   []key
	idle    chan struct{}
	stats   Stats

	wake     chan struct{}
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewDispatcher starts the worker goroutine. Call Close to stop it.
func NewDispatcher(applier Applier, opts Options) *Dispatcher {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = constants.SyncRetryDelay
	}
	if opts.MaxDelay < opts.RetryDelay {
		opts.MaxDelay = opts.RetryDelay
	}
	if opts.ApplyTimeout <= 0 {
		opts.ApplyTimeout = constants.SyncApplyTimeout
	}

	idle := make(chan struct{})
	close(idle)

	d := &Dispatcher{
		applier: applier,
		opts:    opts,
		pending: make(map[key]Command),
		idle:    idle,
		wake:    make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Enqueue schedules cmd without blocking. A pending command for the same
// (title, day) is replaced.
func (d *Dispatcher) Enqueue(cmd Command) {
	d.mu.Lock()
	k := cmd.key()
	if _, ok := d.pending[k]; ok {
		d.stats.Coalesced++
	} else {
		d.order = append(d.order, k)
	}
	d.pending[k] = cmd
	d.markBusy()
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every queued command has been applied or abandoned
func (d *Dispatcher) Flush(ctx context.Context) error {
	d.mu.Lock()
	idle := d.idle
	d.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the worker. Commands still pending are dropped and logged.
func (d *Dispatcher) Close() error {
	d.stopOnce.Do(func() { close(d.stopCh) })
	<-d.done

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, k := range d.order {
		log.Warn("Dropping unsynced task update", "command", d.pending[k].String())
		d.stats.Dropped++
	}
	d.pending = make(map[key]Command)
	d.order = nil
	d.markIdle()
	return nil
}

// Stats returns a snapshot of counters
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.stats
	s.Pending = len(d.order)
	return s
}

// markBusy and markIdle must be called with mu held
func (d *Dispatcher) markBusy() {
	select {
	case <-d.idle:
		d.idle = make(chan struct{})
	default:
	}
}

func (d *Dispatcher) markIdle() {
	select {
	case <-d.idle:
	default:
		close(d.idle)
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for {
		select {
		case <-d.stopCh:
			return
		case <-d.wake:
		}

		for {
			cmd, ok := d.next()
			if !ok {
				break
			}
			d.process(cmd)

			d.mu.Lock()
			if len(d.order) == 0 {
				d.markIdle()
			}
			d.mu.Unlock()

			select {
			case <-d.stopCh:
				return
			default:
			}
		}
	}
}

func (d *Dispatcher) next() (Command, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.order) == 0 {
		return Command{}, false
	}
	k := d.order[0]
	d.order = d.order[1:]
	cmd := d.pending[k]
	delete(d.pending, k)
	return cmd, true
}

// superseded reports whether a newer command for the same key is waiting
func (d *Dispatcher) superseded(cmd Command) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[cmd.key()]
	return ok
}

func (d *Dispatcher) process(cmd Command) {
	var lastErr error
	for attempt := 0; attempt < d.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if d.superseded(cmd) {
				log.Debug("Task update superseded before retry", "command", cmd.String())
				return
			}
			select {
			case <-d.stopCh:
				log.Warn("Dropping unsynced task update", "command", cmd.String(), "attempts", attempt, "error", lastErr)
				d.mu.Lock()
				d.stats.Dropped++
				d.mu.Unlock()
				return
			case <-time.After(d.backoff(attempt)):
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), d.opts.ApplyTimeout)
		n, err := d.applier.Apply(ctx, cmd)
		cancel()
		if err == nil {
			d.mu.Lock()
			d.stats.Applied++
			d.stats.LastSync = time.Now()
			d.mu.Unlock()
			log.Debug("Mirrored completion to tasks", "command", cmd.String(), "updated", n)
			return
		}

		lastErr = err
		log.Warn("Task sync attempt failed", "command", cmd.String(), "attempt", attempt+1, "error", err)
	}

	failure := fmt.Errorf("%w: %s after %d attempt(s): %v", errors.ErrSyncWriteFailed, cmd, d.opts.MaxRetries, lastErr)
	d.mu.Lock()
	d.stats.Failed++
	d.stats.LastError = failure
	d.mu.Unlock()

	log.Error("Task sync failed", "command", cmd.String(), "error", lastErr)
	if d.opts.OnFailure != nil {
		d.opts.OnFailure(cmd, failure)
	}
}

// backoff doubles the delay per attempt up to MaxDelay
func (d *Dispatcher) backoff(attempt int) time.Duration {
	delay := d.opts.RetryDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= d.opts.MaxDelay {
			return d.opts.MaxDelay
		}
	}
	return delay
}
