package timer

import (
	"sync"
	"time"
)

const DefaultInterval = time.Second

// Handle is what a running countdown exposes to its owner.
type Handle interface {
	Stop()
}

// Scheduler starts countdowns. Sessions take one so tests can drive ticks by hand.
type Scheduler interface {
	Start(seconds int, onTick func(remaining int), onExpire func()) Handle
}

// Countdown decrements once per interval, reports every tick and calls
// onExpire exactly once when it reaches zero. Stop may be called from
// inside a callback.
type Countdown struct {
	interval  time.Duration
	onTick    func(int)
	onExpire  func()
	stop      chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
	mu        sync.Mutex
	remaining int
}

func Start(seconds int, onTick func(int), onExpire func()) *Countdown {
	return StartWithInterval(seconds, DefaultInterval, onTick, onExpire)
}

func StartWithInterval(seconds int, interval time.Duration, onTick func(int), onExpire func()) *Countdown {
	c := &Countdown{
		interval:  interval,
		onTick:    onTick,
		onExpire:  onExpire,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		remaining: seconds,
	}
	go c.run()
	return c
}

func (c *Countdown) run() {
	defer close(c.done)

	if c.Remaining() <= 0 {
		c.expire()
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			c.remaining--
			remaining := c.remaining
			c.mu.Unlock()

			if c.stopped() {
				return
			}
			if c.onTick != nil {
				c.onTick(remaining)
			}
			if remaining <= 0 {
				c.expire()
				return
			}
		}
	}
}

func (c *Countdown) expire() {
	if c.stopped() || c.onExpire == nil {
		return
	}
	c.onExpire()
}

func (c *Countdown) stopped() bool {
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}

func (c *Countdown) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Done is closed once the countdown goroutine has exited.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

// RealScheduler runs Countdowns on the wall clock.
type RealScheduler struct {
	Interval time.Duration
}

func (s RealScheduler) Start(seconds int, onTick func(int), onExpire func()) Handle {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return StartWithInterval(seconds, interval, onTick, onExpire)
}
