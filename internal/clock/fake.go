package clock

import (
	"sync"
	"time"
)

type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []waiter
}

type waiter struct {
	at time.Time
	ch chan time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.waiters = append(c.waiters, waiter{at: c.now.Add(d), ch: ch})
	return ch
}

// Advance moves the clock forward and fires every waiter whose deadline
// has passed, in deadline order.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var pending []waiter
	var due []waiter
	for _, w := range c.waiters {
		if w.at.After(c.now) {
			pending = append(pending, w)
		} else {
			due = append(due, w)
		}
	}
	c.waiters = pending
	now := c.now
	c.mu.Unlock()

	for _, w := range due {
		w.ch <- now
	}
}

// BlockUntil returns once at least n callers are blocked in After. It is
// how tests hand control to a goroutine before advancing the clock.
func (c *FakeClock) BlockUntil(n int) {
	for {
		c.mu.Lock()
		blocked := len(c.waiters)
		c.mu.Unlock()
		if blocked >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
}
