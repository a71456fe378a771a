package game

// TestMatch is a headless harness used by tests and the report tool. It
// drives a Match exactly as the viewer does but records every event to a
// SimLog instead of drawing.
type TestMatch struct {
	Match  *Match
	SimLog *SimLog
	Events []Event // non-POSITIONS events, in emission order

	positions int
}

// HarnessOption is a builder function applied to a TestMatch during construction.
type HarnessOption func(*harnessConfig)

type harnessConfig struct {
	matchOpts []Option
	verbose   bool
}

// WithMatchOptions forwards options to the underlying Match.
func WithMatchOptions(opts ...Option) HarnessOption {
	return func(hc *harnessConfig) { hc.matchOpts = append(hc.matchOpts, opts...) }
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) HarnessOption {
	return func(hc *harnessConfig) { hc.verbose = v }
}

// NewTestMatch builds a harness for a match that finishes targetA-targetB.
func NewTestMatch(targetA, targetB int, opts ...HarnessOption) (*TestMatch, error) {
	hc := harnessConfig{}
	for _, o := range opts {
		o(&hc)
	}
	m, err := New(targetA, targetB, hc.matchOpts...)
	if err != nil {
		return nil, err
	}
	return &TestMatch{Match: m, SimLog: NewSimLog(hc.verbose)}, nil
}

// step runs one tick and records what it produced.
func (tm *TestMatch) step() []Event {
	evs := tm.Match.Step()
	tm.SimLog.Record(evs)
	for _, ev := range evs {
		if ev.Kind == EventPositions {
			tm.positions++
			continue
		}
		tm.Events = append(tm.Events, ev)
	}
	return evs
}

// RunTicks advances the match n ticks, or fewer if it finishes first.
func (tm *TestMatch) RunTicks(n int) {
	for i := 0; i < n && !tm.Match.Done(); i++ {
		tm.step()
	}
}

// RunUntil advances the match up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (tm *TestMatch) RunUntil(predicate func(*TestMatch) bool, maxTicks int) int {
	for i := 0; i < maxTicks && !tm.Match.Done(); i++ {
		tm.step()
		if predicate(tm) {
			return tm.Match.Tick()
		}
	}
	return -1
}

// RunToFullTime steps until FULL_TIME or maxTicks, returning the final score.
func (tm *TestMatch) RunToFullTime(maxTicks int) Score {
	tm.RunTicks(maxTicks)
	return tm.Match.Score()
}

// Count returns how many events of kind k have been seen.
func (tm *TestMatch) Count(k EventKind) int {
	if k == EventPositions {
		return tm.positions
	}
	n := 0
	for _, ev := range tm.Events {
		if ev.Kind == k {
			n++
		}
	}
	return n
}

// CurrentTick returns the current simulation tick.
func (tm *TestMatch) CurrentTick() int {
	return tm.Match.Tick()
}

// Snapshot returns the current visible state.
func (tm *TestMatch) Snapshot() Snapshot {
	return tm.Match.Snapshot()
}
