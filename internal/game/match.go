package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// ErrInvalidInput is returned for target scores the simulation cannot honour.
var ErrInvalidInput = errors.New("invalid input")

// Score is the running result.
type Score struct {
	A int `json:"a"`
	B int `json:"b"`
}

// For returns team t's goals.
func (s Score) For(t Team) int {
	if t == TeamA {
		return s.A
	}
	return s.B
}

// Option configures a Match at construction.
type Option func(*Match)

// WithSeed fixes the RNG seed so runs are reproducible.
func WithSeed(seed int64) Option {
	return func(m *Match) { m.seed = seed }
}

// WithConfig replaces the default tuning.
func WithConfig(cfg Config) Option {
	return func(m *Match) { m.cfg = cfg }
}

// WithLogger sets the logger for debug-level match narration.
func WithLogger(l *slog.Logger) Option {
	return func(m *Match) {
		if l != nil {
			m.log = l
		}
	}
}

// Match is the complete state of one simulation run. It is not safe for
// concurrent use: a single driver calls Step, Reset and Stop.
type Match struct {
	cfg  Config
	seed int64
	rng  *rand.Rand
	log  *slog.Logger

	targets  [2]int
	schedule [2][]int
	score    [2]int

	clock  Clock
	agents []*Agent // team A first, goalkeeper at index 0 of each team
	ball   Ball
	queue  deferredQueue
	stats  Stats
	banner *Team

	tick         int
	stopped      bool
	fullTimeSent bool

	out []Event // events emitted during the current Step
}

// New builds a match that will finish targetA-targetB.
func New(targetA, targetB int, opts ...Option) (*Match, error) {
	if targetA < 0 || targetB < 0 {
		return nil, fmt.Errorf("%w: target scores must be non-negative, got %d-%d", ErrInvalidInput, targetA, targetB)
	}
	m := &Match{
		cfg:     DefaultConfig(),
		seed:    time.Now().UnixNano(),
		log:     slog.New(slog.DiscardHandler),
		targets: [2]int{targetA, targetB},
	}
	for _, o := range opts {
		o(m)
	}
	if err := m.cfg.Validate(); err != nil {
		return nil, err
	}
	m.rng = rand.New(rand.NewSource(m.seed)) // #nosec G404 -- simulation only
	m.setup()
	return m, nil
}

// setup (re)creates every per-run entity from the targets.
func (m *Match) setup() {
	m.queue.invalidate()
	m.schedule[TeamA] = PlanGoalTimes(m.rng, m.targets[TeamA])
	m.schedule[TeamB] = PlanGoalTimes(m.rng, m.targets[TeamB])
	m.score = [2]int{}
	m.clock = newClock(m.cfg)
	m.stats = Stats{}
	m.banner = nil
	m.tick = 0
	m.stopped = false
	m.fullTimeSent = false

	m.agents = m.agents[:0]
	for _, t := range []Team{TeamA, TeamB} {
		for i, slot := range formationSlots(m.cfg.Formation, t) {
			a := newAgent(t, i, slot)
			a.pos = m.randomPosInOwnHalf(t)
			m.agents = append(m.agents, a)
		}
	}
	m.recentreBall()

	m.log.Debug("match set up",
		"seed", m.seed,
		"targets", fmt.Sprintf("%d-%d", m.targets[TeamA], m.targets[TeamB]),
		"schedule_a", m.schedule[TeamA],
		"schedule_b", m.schedule[TeamB],
	)
}

func (m *Match) randomPosInOwnHalf(t Team) Vec2 {
	r := t.Bounds()
	if t == TeamA {
		r.MaxX = Midfield.X
	} else {
		r.MinX = Midfield.X
	}
	return Vec2{
		X: r.MinX + m.rng.Float64()*(r.MaxX-r.MinX),
		Y: r.MinY + m.rng.Float64()*(r.MaxY-r.MinY),
	}
}

// Step advances the match by one tick and returns the events it produced.
// Phases run in a fixed order: deferred actions, clock, scheduled goals,
// steering, ball. Once FULL_TIME has been emitted, or after Stop, Step
// does nothing and returns nil.
func (m *Match) Step() []Event {
	if m.stopped || m.fullTimeSent {
		return nil
	}
	m.out = nil
	m.tick++

	m.runDeferred()

	switch m.clock.Advance() {
	case clockHalfTime:
		m.emit(EventHalfTime, TeamA, "")
		m.log.Debug("half time", "score", m.Score())
	case clockSecondHalf:
		m.resetFormation()
		m.recentreBall()
		m.emit(EventSecondHalf, TeamA, "")
	case clockFullTime:
		m.queue.invalidate()
		m.fullTimeSent = true
		m.emit(EventFullTime, TeamA, "")
		m.emitSnapshot()
		m.log.Debug("full time", "score", m.Score(), "ticks", m.tick)
		return m.out
	}

	if m.clock.State == ClockPlaying {
		m.checkScheduledGoals()
		m.steerAgents()
		m.moveBall()
		m.stats.recordPossession(&m.ball)
	}

	m.emitSnapshot()
	return m.out
}

// checkScheduledGoals fires every goal whose minute has been reached.
func (m *Match) checkScheduledGoals() {
	for _, t := range []Team{TeamA, TeamB} {
		for len(m.schedule[t]) > 0 && m.schedule[t][0] <= m.clock.Elapsed {
			m.schedule[t] = m.schedule[t][1:]
			m.creditGoal(t)
			m.placeInGoalArea(t)
			m.queue.schedule(m.tick, m.cfg.GoalRestartTicks, deferRestart)
		}
	}
}

// creditGoal increments t's score and raises the goal banner.
func (m *Match) creditGoal(t Team) {
	m.score[t]++
	m.stats.Teams[t].GoalMinutes = append(m.stats.Teams[t].GoalMinutes, m.clock.Elapsed)
	team := t
	m.banner = &team
	m.queue.schedule(m.tick, m.cfg.BannerTicks, deferBannerClear)
	m.emit(EventGoal, t, "")
	m.log.Debug("goal", "team", t, "minute", m.clock.Elapsed, "score", m.Score())
}

// runDeferred applies queued actions that have come due.
func (m *Match) runDeferred() {
	for _, d := range m.queue.due(m.tick) {
		switch d.kind {
		case deferRestart:
			m.recentreBall()
		case deferRestartReset:
			m.recentreBall()
			m.resetFormation()
		case deferBannerClear:
			m.banner = nil
			m.emit(EventBannerCleared, TeamA, "")
		}
	}
}

// resetFormation returns every agent to its baseline.
func (m *Match) resetFormation() {
	for _, a := range m.agents {
		a.pos = a.baseline
		a.move = Vec2{}
	}
}

func (m *Match) emit(kind EventKind, t Team, agent string) {
	m.out = append(m.out, Event{
		Kind:   kind,
		Tick:   m.tick,
		Minute: m.clock.Elapsed,
		Team:   t,
		ScoreA: m.score[TeamA],
		ScoreB: m.score[TeamB],
		Agent:  agent,
	})
}

func (m *Match) emitSnapshot() {
	snap := m.Snapshot()
	m.out = append(m.out, Event{
		Kind:     EventPositions,
		Tick:     m.tick,
		Minute:   m.clock.Elapsed,
		ScoreA:   m.score[TeamA],
		ScoreB:   m.score[TeamB],
		Snapshot: &snap,
	})
}

// Reset discards the run and starts over with the same targets: scores
// zeroed, schedules re-planned, agents scattered in their own halves, ball
// on the centre spot, clock at zero. Pending deferred actions are dropped.
func (m *Match) Reset() {
	m.setup()
}

// Stop ends the run. Subsequent Steps are no-ops and nothing deferred fires.
func (m *Match) Stop() {
	m.stopped = true
	m.queue.invalidate()
}

// Done reports whether the match will produce no further events.
func (m *Match) Done() bool { return m.stopped || m.fullTimeSent }

// Snapshot copies the visible state.
func (m *Match) Snapshot() Snapshot {
	s := Snapshot{
		Tick:   m.tick,
		Minute: m.clock.Elapsed,
		State:  m.clock.State,
		ScoreA: m.score[TeamA],
		ScoreB: m.score[TeamB],
		Ball:   m.ball.pos,
		Agents: make([]AgentSnapshot, len(m.agents)),
	}
	if m.ball.holder != nil {
		s.Holder = m.ball.holder.label
	}
	if m.banner != nil {
		t := *m.banner
		s.Banner = &t
	}
	for i, a := range m.agents {
		s.Agents[i] = AgentSnapshot{Label: a.label, Team: a.team, Role: a.role, Pos: a.pos}
	}
	return s
}

func (m *Match) Score() Score { return Score{A: m.score[TeamA], B: m.score[TeamB]} }

// Targets returns the final score the run is heading for.
func (m *Match) Targets() Score { return Score{A: m.targets[TeamA], B: m.targets[TeamB]} }

// Schedule returns the goal minutes team t has still to score.
func (m *Match) Schedule(t Team) []int { return append([]int(nil), m.schedule[t]...) }

func (m *Match) Clock() Clock     { return m.clock }
func (m *Match) Tick() int        { return m.tick }
func (m *Match) Seed() int64      { return m.seed }
func (m *Match) Config() Config   { return m.cfg }
func (m *Match) Ball() *Ball      { return &m.ball }
func (m *Match) Agents() []*Agent { return m.agents }

// Stats returns a copy of the statistics gathered so far.
func (m *Match) Stats() Stats { return m.stats.clone() }

// PendingDeferred is the number of queued one-shot actions.
func (m *Match) PendingDeferred() int { return m.queue.pending() }
