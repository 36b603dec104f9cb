package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time

	// AfterFunc runs f in its own goroutine once d has elapsed.
	// The returned timer can be stopped to cancel the call.
	AfterFunc(d time.Duration, f func()) clockwork.Timer
}

// RealClock implements Clock using the system clock
type RealClock struct {
	clock clockwork.Clock
}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{clock: clockwork.NewRealClock()}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return c.clock.Now()
}

// AfterFunc schedules f on the system clock
func (c *RealClock) AfterFunc(d time.Duration, f func()) clockwork.Timer {
	return c.clock.AfterFunc(d, f)
}
