// Package gesture interprets press/release pairs on an interactive zone as a
// single step (tap) or a multiplied step (hold burst).
package gesture

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcoot/lifeboard/internal/dependencies/clock"
)

// State is the position of a zone in its press cycle
type State int

const (
	StateIdle State = iota
	StatePressed
	StateFired
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePressed:
		return "pressed"
	case StateFired:
		return "fired"
	default:
		return "unknown"
	}
}

// Kind distinguishes the two adjustments a zone can emit
type Kind int

const (
	KindTap Kind = iota
	KindBurst
)

func (k Kind) String() string {
	if k == KindBurst {
		return "burst"
	}
	return "tap"
}

// Adjustment is one emission from a zone
type Adjustment struct {
	Kind  Kind
	Delta int
}

// Config controls hold timing
type Config struct {
	// HoldDelay is how long a press must last before the burst fires
	HoldDelay time.Duration
	// BurstMultiplier scales the step for a hold
	BurstMultiplier int
}

// DefaultConfig returns the standard hold timing
func DefaultConfig() Config {
	return Config{
		HoldDelay:       500 * time.Millisecond,
		BurstMultiplier: 10,
	}
}

// Zone is the press state machine for one interactive zone.
// Zones are independent; each owns at most one pending timer.
type Zone struct {
	name   string
	step   int
	cfg    Config
	clock  clock.Clock
	emit   func(Adjustment)
	logger *slog.Logger

	mu         sync.Mutex
	state      State
	pressedAt  time.Time
	timer      clockwork.Timer
	generation uint64
	closed     bool
}

// NewZone creates a zone that emits step on a tap and step*BurstMultiplier on a hold.
// emit is called without the zone lock held, possibly from a timer goroutine.
func NewZone(name string, step int, cfg Config, clk clock.Clock, emit func(Adjustment), logger *slog.Logger) *Zone {
	return &Zone{
		name:   name,
		step:   step,
		cfg:    cfg,
		clock:  clk,
		emit:   emit,
		logger: logger.With(slog.String("component", "gesture"), slog.String("zone", name)),
	}
}

// Name returns the zone name
func (z *Zone) Name() string {
	return z.name
}

// State returns the current state
func (z *Zone) State() State {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.state
}

// PressStart begins a press and arms the hold timer.
// A repeated start while already active restarts the cycle without emitting.
func (z *Zone) PressStart() {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.closed {
		return
	}

	z.stopTimerLocked()
	z.generation++
	gen := z.generation
	z.state = StatePressed
	z.pressedAt = z.clock.Now()
	z.timer = z.clock.AfterFunc(z.cfg.HoldDelay, func() { z.fire(gen) })
}

// PressEnd releases the press
func (z *Zone) PressEnd() {
	z.finish("release")
}

// Leave is treated exactly like a release
func (z *Zone) Leave() {
	z.finish("leave")
}

// Close cancels any pending hold timer; the zone ignores later events
func (z *Zone) Close() {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.stopTimerLocked()
	z.generation++
	z.state = StateIdle
	z.closed = true
}

func (z *Zone) fire(gen uint64) {
	z.mu.Lock()
	if z.state != StatePressed || z.generation != gen {
		z.mu.Unlock()
		return
	}
	z.state = StateFired
	z.timer = nil
	delta := z.step * z.cfg.BurstMultiplier
	z.mu.Unlock()

	z.logger.Debug("hold fired", slog.Int("delta", delta))
	z.emit(Adjustment{Kind: KindBurst, Delta: delta})
}

func (z *Zone) finish(reason string) {
	z.mu.Lock()
	state := z.state
	pressedAt := z.pressedAt
	z.stopTimerLocked()
	z.generation++
	z.state = StateIdle
	z.mu.Unlock()

	if state != StatePressed {
		// Idle: nothing pending. Fired: the burst already counted.
		return
	}

	// A press that outlived the delay without the timer firing (suspended
	// process, clock skew) still counts once, as a tap.
	if held := z.clock.Now().Sub(pressedAt); held >= z.cfg.HoldDelay {
		z.logger.Debug("late release counted as tap", slog.String("reason", reason), slog.Duration("held", held))
	}
	z.emit(Adjustment{Kind: KindTap, Delta: z.step})
}

func (z *Zone) stopTimerLocked() {
	if z.timer != nil {
		z.timer.Stop()
		z.timer = nil
	}
}
