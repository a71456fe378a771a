package game

import (
	"errors"
	"testing"
)

const fullMatchTicks = 920

func newMatch(t *testing.T, a, b int, opts ...Option) *Match {
	t.Helper()
	m, err := New(a, b, opts...)
	if err != nil {
		t.Fatalf("New(%d,%d): %v", a, b, err)
	}
	return m
}

func newHarness(t *testing.T, a, b int, seed int64) *TestMatch {
	t.Helper()
	tm, err := NewTestMatch(a, b, WithMatchOptions(WithSeed(seed)))
	if err != nil {
		t.Fatalf("NewTestMatch(%d,%d): %v", a, b, err)
	}
	return tm
}

func TestNew_RejectsNegativeTargets(t *testing.T) {
	for _, tc := range [][2]int{{-1, 0}, {0, -2}} {
		_, err := New(tc[0], tc[1])
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("New(%d,%d): expected ErrInvalidInput, got %v", tc[0], tc[1], err)
		}
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TicksPerMinute = 0
	_, err := New(1, 1, WithConfig(cfg))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNew_InitialState(t *testing.T) {
	m := newMatch(t, 3, 1, WithSeed(5))
	if len(m.Agents()) != 2*PlayersPerTeam {
		t.Fatalf("expected %d agents, got %d", 2*PlayersPerTeam, len(m.Agents()))
	}
	if m.Ball().Pos() != Midfield {
		t.Fatalf("ball should start on the centre spot, got %+v", m.Ball().Pos())
	}
	if len(m.Schedule(TeamA)) != 3 || len(m.Schedule(TeamB)) != 1 {
		t.Fatalf("schedule lengths %d/%d, want 3/1", len(m.Schedule(TeamA)), len(m.Schedule(TeamB)))
	}
	checkAgentsInOwnHalf(t, m)
}

func TestMatch_FinalScoreMatchesTargets(t *testing.T) {
	targets := [][2]int{{0, 0}, {1, 0}, {2, 1}, {3, 3}, {5, 2}, {0, 4}}
	for i, tg := range targets {
		tm := newHarness(t, tg[0], tg[1], int64(100+i))
		score := tm.RunToFullTime(fullMatchTicks + 10)
		if score.A != tg[0] || score.B != tg[1] {
			t.Fatalf("target %d-%d: final score %d-%d", tg[0], tg[1], score.A, score.B)
		}
		if got := tm.Count(EventGoal); got != tg[0]+tg[1] {
			t.Fatalf("target %d-%d: %d GOAL events", tg[0], tg[1], got)
		}
	}
}

func TestMatch_FullTimeAtTick920(t *testing.T) {
	tm := newHarness(t, 1, 1, 3)
	tick := tm.RunUntil(func(tm *TestMatch) bool { return tm.Count(EventFullTime) > 0 }, 2000)
	if tick != fullMatchTicks {
		t.Fatalf("expected FULL_TIME at tick %d, got %d", fullMatchTicks, tick)
	}
	if m := tm.Match.Clock().Elapsed; m != FullTimeMinute {
		t.Fatalf("expected minute 90, got %d", m)
	}
}

func TestMatch_ClockEventsExactlyOnce(t *testing.T) {
	tm := newHarness(t, 2, 2, 9)
	tm.RunTicks(fullMatchTicks + 200)
	for _, k := range []EventKind{EventHalfTime, EventSecondHalf, EventFullTime} {
		if got := tm.Count(k); got != 1 {
			t.Fatalf("%s emitted %d times, want 1", k, got)
		}
	}
	if tm.Count(EventPositions) != fullMatchTicks {
		t.Fatalf("expected one POSITIONS per tick (%d), got %d", fullMatchTicks, tm.Count(EventPositions))
	}
}

func TestMatch_StepAfterFullTimeIsNoop(t *testing.T) {
	m := newMatch(t, 1, 0, WithSeed(1))
	for i := 0; i < fullMatchTicks; i++ {
		m.Step()
	}
	if !m.Done() {
		t.Fatal("match should be done after 920 ticks")
	}
	if evs := m.Step(); evs != nil {
		t.Fatalf("expected nil events after full time, got %d", len(evs))
	}
	if m.Tick() != fullMatchTicks {
		t.Fatalf("tick advanced after full time: %d", m.Tick())
	}
}

func TestMatch_GoalsLandOnPlannedMinutes(t *testing.T) {
	m := newMatch(t, 4, 3, WithSeed(21))
	planA, planB := m.Schedule(TeamA), m.Schedule(TeamB)
	for !m.Done() {
		m.Step()
	}
	st := m.Stats()
	if !equalInts(st.Teams[TeamA].GoalMinutes, planA) {
		t.Fatalf("team A goals at %v, planned %v", st.Teams[TeamA].GoalMinutes, planA)
	}
	if !equalInts(st.Teams[TeamB].GoalMinutes, planB) {
		t.Fatalf("team B goals at %v, planned %v", st.Teams[TeamB].GoalMinutes, planB)
	}
}

func TestMatch_GoalRaisesAndClearsBanner(t *testing.T) {
	tm := newHarness(t, 1, 0, 4)
	goalTick := tm.RunUntil(func(tm *TestMatch) bool { return tm.Count(EventGoal) > 0 }, fullMatchTicks)
	if goalTick < 0 {
		t.Fatal("no goal scored")
	}
	snap := tm.Snapshot()
	if snap.Banner == nil || *snap.Banner != TeamA {
		t.Fatalf("expected team A banner after goal, got %v", snap.Banner)
	}
	if !tm.Match.Ball().Dead() {
		t.Fatal("ball should be dead right after a goal")
	}

	tm.RunTicks(DefaultConfig().BannerTicks)
	if tm.Snapshot().Banner != nil {
		t.Fatal("banner should clear after BannerTicks")
	}
	if tm.Count(EventBannerCleared) != 1 {
		t.Fatalf("expected one GOAL_BANNER_CLEARED, got %d", tm.Count(EventBannerCleared))
	}
	if tm.Match.Ball().Dead() {
		t.Fatal("ball should be back in play after the restart delay")
	}
}

func TestMatch_ResetRestoresInitialState(t *testing.T) {
	m := newMatch(t, 2, 3, WithSeed(8))
	for i := 0; i < 600; i++ {
		m.Step()
	}
	m.Reset()

	if m.Tick() != 0 {
		t.Fatalf("tick should be 0 after reset, got %d", m.Tick())
	}
	if s := m.Score(); s.A != 0 || s.B != 0 {
		t.Fatalf("score should be 0-0 after reset, got %d-%d", s.A, s.B)
	}
	c := m.Clock()
	if c.Elapsed != 0 || c.State != ClockPlaying {
		t.Fatalf("clock should restart, got %s at %d", c.State, c.Elapsed)
	}
	if m.Ball().Pos() != Midfield || m.Ball().Holder() != nil {
		t.Fatal("ball should be unowned on the centre spot after reset")
	}
	if len(m.Schedule(TeamA)) != 2 || len(m.Schedule(TeamB)) != 3 {
		t.Fatal("schedules should be re-planned for the same targets")
	}
	if m.PendingDeferred() != 0 {
		t.Fatalf("deferred queue should be empty, has %d", m.PendingDeferred())
	}
	checkAgentsInOwnHalf(t, m)

	for !m.Done() {
		m.Step()
	}
	if s := m.Score(); s.A != 2 || s.B != 3 {
		t.Fatalf("reset run should still finish 2-3, got %d-%d", s.A, s.B)
	}
}

func TestMatch_ResetDropsPendingBanner(t *testing.T) {
	tm := newHarness(t, 2, 0, 12)
	if tm.RunUntil(func(tm *TestMatch) bool { return tm.Count(EventGoal) > 0 }, fullMatchTicks) < 0 {
		t.Fatal("no goal scored")
	}
	tm.Match.Reset()

	// Planned goals never land before minute 5, so nothing new can be queued here.
	for i := 0; i < 30; i++ {
		for _, ev := range tm.Match.Step() {
			if ev.Kind == EventBannerCleared {
				t.Fatalf("stale GOAL_BANNER_CLEARED fired at tick %d after reset", ev.Tick)
			}
		}
	}
}

func TestMatch_StopHaltsStepping(t *testing.T) {
	m := newMatch(t, 1, 1, WithSeed(2))
	for i := 0; i < 50; i++ {
		m.Step()
	}
	m.Stop()
	if evs := m.Step(); evs != nil {
		t.Fatalf("Step after Stop returned %d events", len(evs))
	}
	if m.Tick() != 50 {
		t.Fatalf("tick moved after Stop: %d", m.Tick())
	}
	if !m.Done() {
		t.Fatal("Done should report true after Stop")
	}
}

func TestMatch_SameSeedIsDeterministic(t *testing.T) {
	a := newMatch(t, 2, 1, WithSeed(77))
	b := newMatch(t, 2, 1, WithSeed(77))
	for i := 0; i < 300; i++ {
		a.Step()
		b.Step()
	}
	sa, sb := a.Snapshot(), b.Snapshot()
	if sa.Ball != sb.Ball {
		t.Fatalf("ball diverged: %+v vs %+v", sa.Ball, sb.Ball)
	}
	for i := range sa.Agents {
		if sa.Agents[i].Pos != sb.Agents[i].Pos {
			t.Fatalf("agent %s diverged", sa.Agents[i].Label)
		}
	}
}

func TestMatch_NoMovementDuringHalfTime(t *testing.T) {
	m := newMatch(t, 0, 0, WithSeed(6))
	for i := 0; i < 450; i++ {
		m.Step()
	}
	if m.Clock().State != ClockHalfTime {
		t.Fatalf("expected half time at tick 450, got %s", m.Clock().State)
	}
	before := m.Snapshot()
	for i := 0; i < 10; i++ {
		m.Step()
	}
	after := m.Snapshot()
	for i := range before.Agents {
		if before.Agents[i].Pos != after.Agents[i].Pos {
			t.Fatalf("agent %s moved during the half-time pause", before.Agents[i].Label)
		}
	}
}

func TestMatch_SecondHalfStartsFromFormation(t *testing.T) {
	tm := newHarness(t, 0, 0, 10)
	var resumed *Snapshot
	for !tm.Match.Done() && resumed == nil {
		for _, ev := range tm.step() {
			if ev.Kind == EventSecondHalf {
				s := tm.Snapshot()
				resumed = &s
			}
		}
	}
	if resumed == nil {
		t.Fatal("SECOND_HALF never emitted")
	}
	if resumed.Minute != SecondHalfMinute {
		t.Fatalf("second half should start at 46, got %d", resumed.Minute)
	}
	for _, a := range tm.Match.Agents() {
		// One tick of movement has been applied after the reset.
		if a.Pos().Dist(a.Baseline()) > DefaultConfig().MaxMove+1e-9 {
			t.Fatalf("agent %s is %.1f from baseline at kick-off", a.Label(), a.Pos().Dist(a.Baseline()))
		}
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
