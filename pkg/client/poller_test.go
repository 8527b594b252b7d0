package client

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

func TestPollerDropsStaleResponse(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32

	var mu sync.Mutex
	var applied []string

	p := &Poller[string]{
		Interval: time.Hour,
		Fetch: func(ctx context.Context) (string, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				close(started)
				<-release
				return "stale", nil
			}
			return "fresh", nil
		},
		Update: func(v string) {
			mu.Lock()
			applied = append(applied, v)
			mu.Unlock()
		},
	}

	ctx := context.Background()
	p.poll(ctx) // first tick, fetch hangs
	<-started
	p.poll(ctx) // second tick completes first

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(applied) == 1 && applied[0] == "fresh"
	}, time.Second, 5*time.Millisecond)

	// Now the first tick's response lands; it must be dropped.
	close(release)
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"fresh"}, applied)
}

func TestPollerNoUpdateAfterCancel(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	var updates int32
	p := &Poller[string]{
		Interval: time.Hour,
		Fetch: func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "late", nil
		},
		Update: func(string) { atomic.AddInt32(&updates, 1) },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	<-started
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}

	// The in-flight fetch completes after teardown; it must be swallowed.
	close(release)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&updates))
}

func TestPollerReportsErrors(t *testing.T) {
	errCh := make(chan error, 1)
	p := &Poller[int]{
		Interval: time.Hour,
		Fetch: func(ctx context.Context) (int, error) {
			return 0, errors.New("backend down")
		},
		Update:  func(int) { t.Error("update must not run on error") },
		OnError: func(err error) { errCh <- err },
	}
	p.poll(context.Background())

	select {
	case err := <-errCh:
		assert.Contains(t, err.Error(), "backend down")
	case <-time.After(time.Second):
		t.Fatal("OnError never called")
	}
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var fetches int32

	p := &Poller[int]{
		Interval: 10 * time.Millisecond,
		Fetch: func(ctx context.Context) (int, error) {
			return int(atomic.AddInt32(&fetches, 1)), nil
		},
		Update: func(int) {},
	}

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&fetches) >= 2
	}, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
