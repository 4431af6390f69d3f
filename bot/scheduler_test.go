package bot

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerRunsAndStops(t *testing.T) {
	var calls atomic.Int32
	s := &Scheduler{
		tasks: []sweepTask{{"counter", 5 * time.Millisecond, sweepFunc(func() int {
			calls.Add(1)
			return 1
		})}},
		done: make(chan struct{}),
	}
	s.Start()

	deadline := time.After(2 * time.Second)
	for calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("sweeper ran %d times, want at least 2", calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	s.Stop()
	s.Stop()

	after := calls.Load()
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != after {
		t.Errorf("sweeper kept running after Stop")
	}
}
