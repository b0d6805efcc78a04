package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_CoalescesToLastPayload(t *testing.T) {
	var mu sync.Mutex
	var got []int

	s := NewScheduler(50*time.Millisecond, func(v int) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	})

	for i := 0; i < 10; i++ {
		s.Schedule(i)
	}

	time.Sleep(120 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("handler fired %d times, want 1", len(got))
	}
	if got[0] != 9 {
		t.Errorf("payload = %d, want 9 (last call wins)", got[0])
	}
}

func TestScheduler_SpacedCallsFireEach(t *testing.T) {
	var count atomic.Int32

	s := NewScheduler(30*time.Millisecond, func(struct{}) {
		count.Add(1)
	})

	for i := 0; i < 3; i++ {
		s.Schedule(struct{}{})
		time.Sleep(80 * time.Millisecond)
	}

	if count.Load() != 3 {
		t.Errorf("handler fired %d times, want 3", count.Load())
	}
}

func TestScheduler_RescheduleResetsFullDelay(t *testing.T) {
	var fired atomic.Int32

	s := NewScheduler(60*time.Millisecond, func(struct{}) {
		fired.Add(1)
	})

	// Keep rescheduling at 40ms intervals; the delay resets each time so the
	// handler must not fire during the burst.
	for i := 0; i < 4; i++ {
		s.Schedule(struct{}{})
		time.Sleep(40 * time.Millisecond)
		if fired.Load() != 0 {
			t.Fatalf("handler fired during reschedule burst")
		}
	}

	time.Sleep(100 * time.Millisecond)
	if fired.Load() != 1 {
		t.Errorf("handler fired %d times after burst, want 1", fired.Load())
	}
}

func TestScheduler_Unschedule(t *testing.T) {
	var count atomic.Int32

	s := NewScheduler(40*time.Millisecond, func(struct{}) {
		count.Add(1)
	})

	s.Schedule(struct{}{})
	s.Unschedule()

	time.Sleep(100 * time.Millisecond)
	if count.Load() != 0 {
		t.Errorf("handler fired %d times after Unschedule, want 0", count.Load())
	}

	// Unschedule with nothing pending is a no-op.
	s.Unschedule()
}

func TestScheduler_IsPending(t *testing.T) {
	s := NewScheduler(60*time.Millisecond, func(struct{}) {})

	if s.IsPending() {
		t.Error("pending before any Schedule call")
	}

	s.Schedule(struct{}{})
	if !s.IsPending() {
		t.Error("not pending after Schedule")
	}

	time.Sleep(120 * time.Millisecond)
	if s.IsPending() {
		t.Error("still pending after the handler fired")
	}
}
