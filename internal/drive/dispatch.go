package drive

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	ErrDispatchQueueFull = errors.New("notification queue full")
	ErrDispatcherClosed  = errors.New("notification dispatcher closed")
)

type pendingUpdate struct {
	ctx    context.Context
	update Update
}

// Dispatcher delivers updates to the wrapped Notifier from a single
// background goroutine, so callers return as soon as they have committed.
// Updates that do not fit the buffer are dropped.
type Dispatcher struct {
	next   Notifier
	logger *slog.Logger

	mu      sync.RWMutex
	closed  bool
	pending chan pendingUpdate
	done    chan struct{}
}

var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher starts the delivery goroutine. A size below 1 uses 256.
func NewDispatcher(next Notifier, size int, logger *slog.Logger) *Dispatcher {
	if size < 1 {
		size = 256
	}
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		next:    next,
		logger:  logger,
		pending: make(chan pendingUpdate, size),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Notify queues the update without blocking.
func (d *Dispatcher) Notify(ctx context.Context, update Update) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	// the request context is cancelled once the response is written
	select {
	case d.pending <- pendingUpdate{ctx: context.WithoutCancel(ctx), update: update}:
		return nil
	default:
		return ErrDispatchQueueFull
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for p := range d.pending {
		if err := d.next.Notify(p.ctx, p.update); err != nil {
			d.logger.WarnContext(p.ctx, "failed to deliver update",
				"session_id", p.update.SessionID, "event", p.update.Event, "error", err)
		}
	}
}

// Close stops accepting updates and waits until the queued ones are
// delivered or ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.pending)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel that is closed once every queued update is handled.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}
