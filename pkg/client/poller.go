package client

import (
	"context"
	"sync"
	"time"
)

// Poller runs fetch on a fixed interval and hands each result to update.
// Ticks carry sequence numbers and a result is applied only when no newer
// result has landed first, so a slow in-flight response can never overwrite
// state from a later tick.
type Poller[T any] struct {
	Interval time.Duration
	Fetch    func(ctx context.Context) (T, error)
	Update   func(T)
	OnError  func(error)

	mu      sync.Mutex
	seq     uint64
	applied uint64
}

// Run fetches once immediately, then on every tick until ctx is cancelled.
func (p *Poller[T]) Run(ctx context.Context) {
	p.poll(ctx)
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller[T]) poll(ctx context.Context) {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	go func() {
		v, err := p.Fetch(ctx)
		// Once the context is done the caller may already have torn down;
		// neither callback fires after that point.
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if p.OnError != nil {
				p.OnError(err)
			}
			return
		}
		p.mu.Lock()
		stale := seq <= p.applied
		if !stale {
			p.applied = seq
		}
		p.mu.Unlock()
		if !stale {
			p.Update(v)
		}
	}()
}
