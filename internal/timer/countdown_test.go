package timer

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func waitDone(t *testing.T, c *Countdown) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not finish")
	}
}

func TestCountdown_TicksThenExpiresOnce(t *testing.T) {
	var mu sync.Mutex
	var ticks []int
	var expired int32

	c := StartWithInterval(3, time.Millisecond, func(remaining int) {
		mu.Lock()
		ticks = append(ticks, remaining)
		mu.Unlock()
	}, func() {
		atomic.AddInt32(&expired, 1)
	})
	waitDone(t, c)

	mu.Lock()
	defer mu.Unlock()
	want := []int{2, 1, 0}
	if len(ticks) != len(want) {
		t.Fatalf("ticks = %v, want %v", ticks, want)
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Errorf("ticks[%d] = %d, want %d", i, ticks[i], want[i])
		}
	}
	if got := atomic.LoadInt32(&expired); got != 1 {
		t.Errorf("expired %d times, want 1", got)
	}
	if c.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", c.Remaining())
	}
}

func TestCountdown_StopPreventsExpire(t *testing.T) {
	var expired int32
	c := StartWithInterval(1000, time.Millisecond, nil, func() {
		atomic.AddInt32(&expired, 1)
	})
	c.Stop()
	c.Stop()
	waitDone(t, c)

	if got := atomic.LoadInt32(&expired); got != 0 {
		t.Errorf("expired %d times after Stop, want 0", got)
	}
}

func TestCountdown_StopFromTick(t *testing.T) {
	var ticks, expired int32
	var c *Countdown
	ready := make(chan struct{})
	c = StartWithInterval(5, time.Millisecond, func(remaining int) {
		<-ready
		atomic.AddInt32(&ticks, 1)
		c.Stop()
	}, func() {
		atomic.AddInt32(&expired, 1)
	})
	close(ready)
	waitDone(t, c)

	if got := atomic.LoadInt32(&ticks); got != 1 {
		t.Errorf("ticks = %d, want 1", got)
	}
	if got := atomic.LoadInt32(&expired); got != 0 {
		t.Errorf("expired = %d, want 0", got)
	}
}

func TestCountdown_ZeroExpiresImmediately(t *testing.T) {
	var ticks, expired int32
	c := StartWithInterval(0, time.Hour, func(int) {
		atomic.AddInt32(&ticks, 1)
	}, func() {
		atomic.AddInt32(&expired, 1)
	})
	waitDone(t, c)

	if ticks != 0 {
		t.Errorf("ticks = %d, want 0", ticks)
	}
	if expired != 1 {
		t.Errorf("expired = %d, want 1", expired)
	}
}

func TestRealScheduler_DefaultsInterval(t *testing.T) {
	h := RealScheduler{}.Start(10, nil, nil)
	c, ok := h.(*Countdown)
	if !ok {
		t.Fatalf("handle type = %T, want *Countdown", h)
	}
	defer c.Stop()
	if c.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", c.interval, DefaultInterval)
	}
}
