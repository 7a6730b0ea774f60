package timectrl

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// SimClock is an interface for accessing simulation time. Components that
// only need to know "when is it" depend on this rather than the concrete
// controller, which keeps them testable.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime advances simulation time in step with wall-clock time.
	RealTime Mode = iota
	// Accelerated steps simulation time by Tick on a much shorter wall
	// interval, replaying long windows quickly.
	Accelerated
)

// acceleratedWallInterval is the wall-clock spacing between ticks in
// accelerated mode.
const acceleratedWallInterval = time.Millisecond

// TimeController drives simulation time and notifies registered listeners
// once per tick. It implements SimClock.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	clock       clockwork.Clock
	currentTime time.Time

	listeners []func(time.Time)
}

// Option customises a TimeController.
type Option func(*TimeController)

// WithClock replaces the wall clock, letting tests drive ticks with a fake.
func WithClock(c clockwork.Clock) Option {
	return func(tc *TimeController) {
		if c != nil {
			tc.clock = c
		}
	}
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode, opts ...Option) *TimeController {
	tc := &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		clock:       clockwork.NewRealClock(),
		currentTime: start,
	}
	for _, opt := range opts {
		opt(tc)
	}
	return tc
}

// Now returns the current simulation time. Implements SimClock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SetTime jumps simulation time to the given instant. Listeners are not
// notified; the next tick advances from the new time.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.currentTime = t
}

// AddListener registers a callback invoked on every tick. Listeners must be
// registered before Start.
func (tc *TimeController) AddListener(fn func(time.Time)) {
	tc.listeners = append(tc.listeners, fn)
}

// Start runs the controller for the specified simulated duration in a
// separate goroutine; a non-positive duration runs until the process exits.
// It returns a channel that is closed when the controller finishes.
func (tc *TimeController) Start(duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		tc.mu.Lock()
		tc.currentTime = tc.StartTime
		tc.mu.Unlock()

		wallInterval := tc.Tick
		if tc.Mode == Accelerated && wallInterval > acceleratedWallInterval {
			wallInterval = acceleratedWallInterval
		}

		ticker := tc.clock.NewTicker(wallInterval)
		defer ticker.Stop()

		elapsed := time.Duration(0)
		for {
			if duration > 0 && elapsed >= duration {
				return
			}

			<-ticker.Chan()
			elapsed += tc.Tick

			// Advance from currentTime rather than a local counter so a
			// SetTime jump takes effect on the next tick.
			tc.mu.Lock()
			tc.currentTime = tc.currentTime.Add(tc.Tick)
			simTime := tc.currentTime
			tc.mu.Unlock()

			for _, fn := range tc.listeners {
				fn(simTime)
			}
		}
	}()
	return done
}
