package scrape

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// pacer serializes request pacing across workers. Each Wait reserves a slot a
// randomized delay after the previous one, so the aggregate request rate
// honors the configured window regardless of worker count.
type pacer struct {
	mu       sync.Mutex
	minDelay time.Duration
	maxDelay time.Duration
	next     time.Time
}

func newPacer(minDelay, maxDelay time.Duration) *pacer {
	if minDelay < 0 {
		minDelay = 0
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &pacer{minDelay: minDelay, maxDelay: maxDelay}
}

func (p *pacer) delay() time.Duration {
	if p.maxDelay == 0 {
		return 0
	}
	if p.maxDelay == p.minDelay {
		return p.minDelay
	}
	return p.minDelay + time.Duration(rand.Int63n(int64(p.maxDelay-p.minDelay)))
}

// Wait blocks until the caller's reserved slot arrives or the context is done.
func (p *pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	slot := p.next
	if slot.Before(now) {
		slot = now
	}
	p.next = slot.Add(p.delay())
	p.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
