package lifecycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrInvalidInterval is returned by StartPolling for a non-positive interval.
	ErrInvalidInterval = errors.New("lifecycle: poll interval must be positive")
	// ErrPollerClosed is returned by StartPolling after Close.
	ErrPollerClosed = errors.New("lifecycle: poller is closed")
)

// PollHandle owns the timer of one polling run. Stop may be called any number
// of times from any goroutine, including from a notify callback.
type PollHandle struct {
	once    sync.Once
	stopped atomic.Bool
	done    chan struct{}
	halt    func()
}

// Stop ends the run: no further fetch is started and the result of the
// in-flight one, if any, is dropped.
func (h *PollHandle) Stop() {
	h.once.Do(func() {
		h.halt()
		close(h.done)
	})
}

// Done is closed once Stop has taken effect.
func (h *PollHandle) Done() <-chan struct{} {
	return h.done
}

func (h *PollHandle) active() bool {
	return !h.stopped.Load()
}

// Poller re-runs a request on a fixed interval through a Fetch, so a tick
// that fires while the previous request is outstanding supersedes it rather
// than queueing behind it. A failed tick is recorded and polling continues at
// the same cadence; there is no backoff.
type Poller[T any] struct {
	fetch     *Fetch[T]
	log       *zap.Logger
	name      string
	newTicker func(time.Duration) (<-chan time.Time, func())

	mu     sync.Mutex
	handle *PollHandle
	closed bool

	wg sync.WaitGroup
}

func NewPoller[T any](opts ...Option) *Poller[T] {
	f := NewFetch[T](opts...)
	return &Poller[T]{fetch: f, log: f.opts.logger, name: f.opts.name, newTicker: realTicker}
}

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// State returns the current snapshot of the underlying fetch.
func (p *Poller[T]) State() State[T] {
	return p.fetch.State()
}

// StartPolling issues fn immediately and then once per interval until the
// returned handle is stopped or ctx is cancelled. A handle from an earlier
// call is stopped first; a Poller never runs more than one timer.
func (p *Poller[T]) StartPolling(ctx context.Context, fn RequestFunc[T], interval time.Duration) (*PollHandle, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if ctx == nil {
		ctx = context.Background()
	}

	h := &PollHandle{done: make(chan struct{})}
	h.halt = func() {
		p.fetch.detach(func() { h.stopped.Store(true) })
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPollerClosed
	}
	prev := p.handle
	p.handle = h
	p.wg.Add(1)
	p.mu.Unlock()
	if prev != nil {
		prev.Stop()
	}

	p.log.Debug("polling started", zap.String("lifecycle", p.name), zap.Duration("interval", interval))
	p.fetch.start(ctx, fn, h.active)

	go p.loop(ctx, h, fn, interval)
	return h, nil
}

func (p *Poller[T]) loop(ctx context.Context, h *PollHandle, fn RequestFunc[T], interval time.Duration) {
	defer p.wg.Done()

	ticks, stop := p.newTicker(interval)
	defer stop()

	for {
		select {
		case <-h.done:
			return
		case <-ctx.Done():
			h.Stop()
			return
		case <-ticks:
			p.fetch.start(ctx, fn, h.active)
		}
	}
}

// Close stops the active handle and closes the underlying fetch. Later
// calls to StartPolling fail with ErrPollerClosed.
func (p *Poller[T]) Close() {
	p.mu.Lock()
	p.closed = true
	h := p.handle
	p.handle = nil
	p.mu.Unlock()
	if h != nil {
		h.Stop()
	}
	p.fetch.Close()
}

// Wait blocks until the timer goroutine and every request goroutine have
// returned.
func (p *Poller[T]) Wait() {
	p.wg.Wait()
	p.fetch.Wait()
}
