package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RequestFunc performs one remote read. It should honour ctx, but a Fetch
// stays correct when it does not.
type RequestFunc[T any] func(ctx context.Context) (T, error)

type options struct {
	name    string
	timeout time.Duration
	now     func() time.Time
	notify  func()
	logger  *zap.Logger
}

// Option configures a Fetch or a Poller.
type Option func(*options)

// WithName labels log lines emitted by the lifecycle.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithTimeout bounds every request. A request still running at the deadline
// resolves to PhaseFailure whatever it returns. Zero means no bound, in which
// case a request that never returns leaves the lifecycle in PhaseLoading.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithClock replaces time.Now for the FetchedAt/FailedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithNotify registers a callback invoked after every state transition. It
// runs on whichever goroutine caused the transition and must not block.
func WithNotify(fn func()) Option {
	return func(o *options) { o.notify = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{
		name:   "fetch",
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Fetch is the state machine around one asynchronous read. The zero value is
// not usable; create one with NewFetch.
type Fetch[T any] struct {
	opts options

	mu     sync.Mutex
	state  State[T]
	gen    uint64 // generation of the request allowed to resolve
	cancel context.CancelFunc
	closed bool

	wg sync.WaitGroup
}

func NewFetch[T any](opts ...Option) *Fetch[T] {
	return &Fetch[T]{opts: buildOptions(opts)}
}

// State returns the current snapshot.
func (f *Fetch[T]) State() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Start moves the lifecycle to PhaseLoading and runs fn in the background.
// Any request still in flight is superseded. Start never blocks on fn and
// is a no-op after Close.
func (f *Fetch[T]) Start(ctx context.Context, fn RequestFunc[T]) {
	f.start(ctx, fn, nil)
}

// start is Start with an admission check evaluated under the state lock, so
// that a concurrent detach cannot slip between the check and the launch.
func (f *Fetch[T]) start(ctx context.Context, fn RequestFunc[T], admit func() bool) bool {
	if ctx == nil {
		ctx = context.Background()
	}

	f.mu.Lock()
	if f.closed || (admit != nil && !admit()) {
		f.mu.Unlock()
		return false
	}
	f.detachLocked()
	gen := f.gen

	var reqCtx context.Context
	var cancel context.CancelFunc
	if f.opts.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, f.opts.timeout)
	} else {
		reqCtx, cancel = context.WithCancel(ctx)
	}
	f.cancel = cancel
	f.state = loading[T]()
	f.wg.Add(1)
	f.mu.Unlock()

	f.changed()
	go f.run(reqCtx, cancel, gen, fn)
	return true
}

func (f *Fetch[T]) run(ctx context.Context, cancel context.CancelFunc, gen uint64, fn RequestFunc[T]) {
	defer f.wg.Done()
	defer cancel()

	v, err := call(ctx, fn)

	// A cancelled request was superseded, closed or abandoned by its caller
	// and must not be observed. Deadline expiry is a failure even when fn
	// ignored its context and returned a value late.
	switch ctxErr := ctx.Err(); {
	case errors.Is(ctxErr, context.Canceled):
		f.opts.logger.Debug("dropping cancelled result", zap.String("lifecycle", f.opts.name))
		return
	case errors.Is(ctxErr, context.DeadlineExceeded) && err == nil:
		err = ctxErr
	}
	f.resolve(gen, v, err)
}

func call[T any](ctx context.Context, fn RequestFunc[T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("request panicked: %v", r)
		}
	}()
	return fn(ctx)
}

func (f *Fetch[T]) resolve(gen uint64, v T, err error) {
	f.mu.Lock()
	if f.closed || gen != f.gen {
		f.mu.Unlock()
		f.opts.logger.Debug("dropping superseded result",
			zap.String("lifecycle", f.opts.name),
			zap.Uint64("generation", gen))
		return
	}
	f.cancel = nil
	now := f.opts.now()
	if err != nil {
		f.state = failed[T](err, now)
	} else {
		f.state = succeeded(v, now)
	}
	f.mu.Unlock()

	if err != nil {
		f.opts.logger.Debug("fetch failed", zap.String("lifecycle", f.opts.name), zap.Error(err))
	}
	f.changed()
}

// detachLocked invalidates the in-flight request, if any.
func (f *Fetch[T]) detachLocked() {
	f.gen++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// detach runs mark and invalidates the in-flight request atomically with
// respect to start's admission check.
func (f *Fetch[T]) detach(mark func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if mark != nil {
		mark()
	}
	f.detachLocked()
}

// Close abandons any in-flight request and makes later Starts no-ops. The
// state keeps its last value. Close is idempotent.
func (f *Fetch[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.detachLocked()
}

// Wait blocks until every request goroutine has returned. Call it after
// Close; request functions that ignore their context delay it.
func (f *Fetch[T]) Wait() {
	f.wg.Wait()
}

func (f *Fetch[T]) changed() {
	if f.opts.notify != nil {
		f.opts.notify()
	}
}
