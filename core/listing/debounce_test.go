package listing

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesBursts(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var runs int32

	// a burst of keystrokes yields a single callback
	for i := 0; i < 5; i++ {
		d.Trigger(func() { atomic.AddInt32(&runs, 1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Errorf("callback ran %d times, want 1", got)
	}
}

func TestDebouncer_TriggerRestartsDelay(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	var runs int32

	d.Trigger(func() { atomic.AddInt32(&runs, 1) })
	time.Sleep(30 * time.Millisecond)
	// still pending; retriggering must cancel and restart
	d.Trigger(func() { atomic.AddInt32(&runs, 1) })
	time.Sleep(30 * time.Millisecond)

	if got := atomic.LoadInt32(&runs); got != 0 {
		t.Errorf("callback ran %d times before delay elapsed, want 0", got)
	}
	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Errorf("callback ran %d times, want 1", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var runs int32

	d.Trigger(func() { atomic.AddInt32(&runs, 1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != 0 {
		t.Errorf("callback ran %d times after Stop, want 0", got)
	}
}
