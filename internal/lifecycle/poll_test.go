package lifecycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualTicks replaces the poller's ticker with a channel the test drives.
func manualTicks[T any](p *Poller[T]) chan time.Time {
	ticks := make(chan time.Time, 8)
	p.newTicker = func(time.Duration) (<-chan time.Time, func()) {
		return ticks, func() {}
	}
	return ticks
}

func TestPollerRejectsNonPositiveInterval(t *testing.T) {
	p := NewPoller[int]()
	h, err := p.StartPolling(context.Background(), func(ctx context.Context) (int, error) { return 0, nil }, 0)
	assert.Nil(t, h)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestPollerFetchesImmediately(t *testing.T) {
	p := NewPoller[string]()
	manualTicks(p)

	h, err := p.StartPolling(context.Background(), func(ctx context.Context) (string, error) {
		return "51.5,-0.1", nil
	}, time.Hour)
	require.NoError(t, err)

	st := waitPhase(t, p.State, PhaseSuccess)
	assert.Equal(t, "51.5,-0.1", st.Value)

	h.Stop()
	p.Wait()
}

func TestPollerFailureDoesNotHaltPolling(t *testing.T) {
	p := NewPoller[int32]()
	ticks := manualTicks(p)

	var calls atomic.Int32
	h, err := p.StartPolling(context.Background(), func(ctx context.Context) (int32, error) {
		n := calls.Add(1)
		if n == 2 {
			return 0, errors.New("station feed unavailable")
		}
		return n, nil
	}, 5*time.Second)
	require.NoError(t, err)
	defer p.Wait()
	defer h.Stop()

	st := waitPhase(t, p.State, PhaseSuccess)
	assert.Equal(t, int32(1), st.Value)

	ticks <- time.Now()
	st = waitPhase(t, p.State, PhaseFailure)
	assert.Equal(t, "station feed unavailable", st.Err.Message)

	ticks <- time.Now()
	st = waitPhase(t, p.State, PhaseSuccess)
	assert.Equal(t, int32(3), st.Value)
}

func TestPollHandleStopIsIdempotent(t *testing.T) {
	var notified atomic.Int32
	p := NewPoller[int](WithNotify(func() { notified.Add(1) }))
	ticks := manualTicks(p)

	release := make(chan struct{})
	var calls atomic.Int32
	h, err := p.StartPolling(context.Background(), func(ctx context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 1, nil
	}, time.Second)
	require.NoError(t, err)

	// Stop before the first fetch completes.
	h.Stop()
	h.Stop()
	h.Stop()
	after := notified.Load()

	select {
	case <-h.Done():
	default:
		t.Fatal("Done not closed after Stop")
	}

	ticks <- time.Now()
	close(release)
	p.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, after, notified.Load())
	assert.True(t, p.State().IsLoading())
}

func TestPollHandleStopFromNotify(t *testing.T) {
	var handle atomic.Pointer[PollHandle]
	p := NewPoller[int]()
	p.fetch.opts.notify = func() {
		if p.State().IsSuccess() {
			if h := handle.Load(); h != nil {
				h.Stop()
			}
		}
	}
	manualTicks(p)

	ready := make(chan struct{})
	h, err := p.StartPolling(context.Background(), func(ctx context.Context) (int, error) {
		<-ready
		return 9, nil
	}, time.Second)
	require.NoError(t, err)
	handle.Store(h)
	close(ready)

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("handle not stopped from notify callback")
	}
	p.Wait()
	assert.Equal(t, 9, p.State().Value)
}

func TestPollerTickSupersedesOutstandingFetch(t *testing.T) {
	p := NewPoller[string]()
	ticks := manualTicks(p)

	slow := make(chan struct{})
	entered := make(chan struct{}, 1)
	var calls atomic.Int32
	h, err := p.StartPolling(context.Background(), func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			entered <- struct{}{}
			<-slow
			return "stale", nil
		}
		return "fresh", nil
	}, time.Second)
	require.NoError(t, err)

	// The first request must be inside fn before the tick starts the second.
	<-entered
	ticks <- time.Now()
	waitPhase(t, p.State, PhaseSuccess)

	close(slow)
	h.Stop()
	p.Wait()
	assert.Equal(t, "fresh", p.State().Value)
}

func TestPollerStartAfterCloseFails(t *testing.T) {
	p := NewPoller[int]()
	manualTicks(p)
	p.Close()

	var calls atomic.Int32
	h, err := p.StartPolling(context.Background(), func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 1, nil
	}, time.Second)
	assert.Nil(t, h)
	assert.ErrorIs(t, err, ErrPollerClosed)

	// No ticker goroutine was started, so Wait returns at once.
	p.Wait()
	assert.Zero(t, calls.Load())
	assert.True(t, p.State().IsIdle())
}

func TestPollerRestartStopsPreviousHandle(t *testing.T) {
	p := NewPoller[int]()
	manualTicks(p)
	fn := func(ctx context.Context) (int, error) { return 1, nil }

	first, err := p.StartPolling(context.Background(), fn, time.Second)
	require.NoError(t, err)
	second, err := p.StartPolling(context.Background(), fn, time.Second)
	require.NoError(t, err)

	select {
	case <-first.Done():
	default:
		t.Fatal("first handle still running")
	}
	waitPhase(t, p.State, PhaseSuccess)

	second.Stop()
	p.Wait()
}

func TestPollerStopsWhenContextCancelled(t *testing.T) {
	p := NewPoller[int]()
	manualTicks(p)
	ctx, cancel := context.WithCancel(context.Background())

	h, err := p.StartPolling(ctx, func(ctx context.Context) (int, error) { return 3, nil }, time.Second)
	require.NoError(t, err)
	cancel()

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("handle not stopped by context cancellation")
	}
	p.Wait()
}

func TestPollerCloseStopsAndIgnoresStarts(t *testing.T) {
	p := NewPoller[int]()
	manualTicks(p)

	h, err := p.StartPolling(context.Background(), func(ctx context.Context) (int, error) { return 5, nil }, time.Second)
	require.NoError(t, err)
	waitPhase(t, p.State, PhaseSuccess)

	p.Close()
	p.Close()
	<-h.Done()
	p.Wait()
	assert.Equal(t, 5, p.State().Value)
}

func TestPollerRealTicker(t *testing.T) {
	p := NewPoller[int]()

	var mu sync.Mutex
	seen := 0
	h, err := p.StartPolling(context.Background(), func(ctx context.Context) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		seen++
		return seen, nil
	}, 5*time.Millisecond)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		st := p.State()
		return st.IsSuccess() && st.Value >= 3
	}, 2*time.Second, time.Millisecond)

	h.Stop()
	p.Wait()
}
