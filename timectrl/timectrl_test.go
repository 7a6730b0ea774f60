package timectrl

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestTimeControllerSetTime(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Second, RealTime)

	newNow := start.Add(42 * time.Second)
	tc.SetTime(newNow)

	if got := tc.Now(); !got.Equal(newNow) {
		t.Fatalf("Now() = %v, want %v", got, newNow)
	}
}

func TestTimeControllerTicksWithFakeClock(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	fc := clockwork.NewFakeClock()
	tc := NewTimeController(start, time.Second, RealTime, WithClock(fc))

	var (
		mu   sync.Mutex
		seen []time.Time
	)
	tc.AddListener(func(simTime time.Time) {
		mu.Lock()
		seen = append(seen, simTime)
		mu.Unlock()
	})

	done := tc.Start(3 * time.Second)

	for i := 0; i < 3; i++ {
		fc.BlockUntil(1)
		fc.Advance(time.Second)
		waitForTicks(t, &mu, &seen, i+1)
	}
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 {
		t.Fatalf("expected 3 listener ticks, got %d", len(seen))
	}
	for i, ts := range seen {
		want := start.Add(time.Duration(i+1) * time.Second)
		if !ts.Equal(want) {
			t.Fatalf("tick %d = %v, want %v", i, ts, want)
		}
	}
	if got := tc.Now(); !got.Equal(start.Add(3 * time.Second)) {
		t.Fatalf("Now() = %v, want %v", got, start.Add(3*time.Second))
	}
}

func TestTimeControllerAcceleratedShortensWallInterval(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	fc := clockwork.NewFakeClock()
	tc := NewTimeController(start, time.Minute, Accelerated, WithClock(fc))

	var (
		mu   sync.Mutex
		seen []time.Time
	)
	tc.AddListener(func(simTime time.Time) {
		mu.Lock()
		seen = append(seen, simTime)
		mu.Unlock()
	})

	done := tc.Start(2 * time.Minute)

	// Accelerated mode ticks on millisecond wall intervals while stepping
	// simulation time by the full tick.
	for i := 0; i < 2; i++ {
		fc.BlockUntil(1)
		fc.Advance(time.Millisecond)
		waitForTicks(t, &mu, &seen, i+1)
	}
	<-done

	if got := tc.Now(); !got.Equal(start.Add(2 * time.Minute)) {
		t.Fatalf("Now() = %v, want %v", got, start.Add(2*time.Minute))
	}
}

func waitForTicks(t *testing.T, mu *sync.Mutex, seen *[]time.Time, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(*seen)
		mu.Unlock()
		if n >= want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d ticks, have %d", want, n)
		}
		time.Sleep(time.Millisecond)
	}
}
