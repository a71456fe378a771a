package game

import "fmt"

// Match-minute landmarks.
const (
	HalfTimeMinute   = 45
	SecondHalfMinute = 46
	FullTimeMinute   = 90
)

// ClockState is the phase of the match clock.
type ClockState int

const (
	ClockPlaying ClockState = iota
	ClockHalfTime
	ClockFullTime
)

func (cs ClockState) String() string {
	switch cs {
	case ClockPlaying:
		return "playing"
	case ClockHalfTime:
		return "half_time"
	case ClockFullTime:
		return "full_time"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name.
func (cs ClockState) MarshalText() ([]byte, error) { return []byte(cs.String()), nil }

// UnmarshalText parses a state name.
func (cs *ClockState) UnmarshalText(b []byte) error {
	for cand := ClockPlaying; cand <= ClockFullTime; cand++ {
		if cand.String() == string(b) {
			*cs = cand
			return nil
		}
	}
	return fmt.Errorf("unknown clock state %q", b)
}

// clockSignal tells the driver what, if anything, the last Advance changed.
type clockSignal int

const (
	clockIdle clockSignal = iota
	clockMinute
	clockHalfTime
	clockSecondHalf
	clockFullTime
)

// Clock converts ticks into match minutes and owns the half-time pause.
type Clock struct {
	Elapsed int
	State   ClockState

	subTicks       int // ticks into the current minute
	pauseTicks     int // ticks spent in the half-time pause
	halfTimeDone   bool
	ticksPerMinute int
	halfTimeTicks  int
}

func newClock(cfg Config) Clock {
	return Clock{ticksPerMinute: cfg.TicksPerMinute, halfTimeTicks: cfg.HalfTimeTicks}
}

// Advance consumes one tick.
func (c *Clock) Advance() clockSignal {
	switch c.State {
	case ClockFullTime:
		return clockIdle
	case ClockHalfTime:
		c.pauseTicks++
		if c.pauseTicks < c.halfTimeTicks {
			return clockIdle
		}
		c.pauseTicks = 0
		c.State = ClockPlaying
		c.Elapsed = SecondHalfMinute
		return clockSecondHalf
	}

	c.subTicks++
	if c.subTicks < c.ticksPerMinute {
		return clockIdle
	}
	c.subTicks = 0
	c.Elapsed++

	if c.Elapsed == HalfTimeMinute && !c.halfTimeDone {
		c.halfTimeDone = true
		c.State = ClockHalfTime
		return clockHalfTime
	}
	if c.Elapsed >= FullTimeMinute {
		c.Elapsed = FullTimeMinute
		c.State = ClockFullTime
		return clockFullTime
	}
	return clockMinute
}

// PauseTicks is how long the half-time pause has run so far.
func (c *Clock) PauseTicks() int { return c.pauseTicks }
