package quiz

import (
	"context"
	"sync"
	"time"
)

// Countdown is a per-question timer polled on a fixed interval. It ends
// either by expiring or by Stop/context cancellation, never both.
type Countdown struct {
	mu        sync.Mutex
	remaining time.Duration
	expired   chan struct{}
	done      chan struct{}
	cancel    context.CancelFunc
}

// StartCountdown begins a countdown of limit, ticking every interval. A
// non-positive limit yields a countdown that never expires.
func StartCountdown(ctx context.Context, limit, interval time.Duration) *Countdown {
	ctx, cancel := context.WithCancel(ctx)
	c := &Countdown{
		remaining: limit,
		expired:   make(chan struct{}),
		done:      make(chan struct{}),
		cancel:    cancel,
	}
	if limit <= 0 || interval <= 0 {
		go func() {
			defer close(c.done)
			<-ctx.Done()
		}()
		return c
	}
	go c.run(ctx, interval)
	return c
}

func (c *Countdown) run(ctx context.Context, interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			c.remaining = max(0, c.remaining-interval)
			left := c.remaining
			c.mu.Unlock()
			if left == 0 {
				close(c.expired)
				return
			}
		}
	}
}

func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) Expired() <-chan struct{} { return c.expired }

// Stop cancels the countdown and waits for its goroutine. Safe to call more
// than once.
func (c *Countdown) Stop() {
	c.cancel()
	<-c.done
}
