package game

import (
	"math"
	"testing"
)

func placeAgent(team Team, idx int, role Role, p Vec2) *Agent {
	return newAgent(team, idx, formationSlot{role: role, pos: p})
}

// bareMatch returns a 0-0 match with the given agents replacing the
// generated squads.
func bareMatch(t *testing.T, cfg Config, agents ...*Agent) *Match {
	t.Helper()
	m := newMatch(t, 0, 0, WithSeed(1), WithConfig(cfg))
	m.agents = agents
	return m
}

func hasEvent(evs []Event, k EventKind, team Team) bool {
	for _, ev := range evs {
		if ev.Kind == k && ev.Team == team {
			return true
		}
	}
	return false
}

func TestBestPassCandidate_PrefersForwardOverLateral(t *testing.T) {
	h := placeAgent(TeamA, 0, RoleMidfielder, Vec2{X: 100, Y: 200})
	near := placeAgent(TeamA, 1, RoleMidfielder, Vec2{X: 150, Y: 200}) // score 50
	wide := placeAgent(TeamA, 2, RoleForward, Vec2{X: 250, Y: 260})    // score 150-30=120
	far := placeAgent(TeamA, 3, RoleForward, Vec2{X: 320, Y: 200})     // beyond max distance
	behind := placeAgent(TeamA, 4, RoleDefender, Vec2{X: 50, Y: 200})  // not forward
	opp := placeAgent(TeamB, 0, RoleDefender, Vec2{X: 200, Y: 200})    // wrong team
	m := bareMatch(t, DefaultConfig(), h, near, wide, far, behind, opp)

	if got := m.bestPassCandidate(h); got != wide {
		t.Fatalf("expected %s, got %v", wide.Label(), got)
	}
}

func TestBestPassCandidate_TeamBAttacksLeft(t *testing.T) {
	h := placeAgent(TeamB, 0, RoleMidfielder, Vec2{X: 500, Y: 200})
	ahead := placeAgent(TeamB, 1, RoleForward, Vec2{X: 420, Y: 200})
	behind := placeAgent(TeamB, 2, RoleDefender, Vec2{X: 580, Y: 200})
	m := bareMatch(t, DefaultConfig(), h, ahead, behind)

	if got := m.bestPassCandidate(h); got != ahead {
		t.Fatalf("expected %s, got %v", ahead.Label(), got)
	}
}

func TestBestPassCandidate_DistanceBandIsExclusive(t *testing.T) {
	h := placeAgent(TeamA, 0, RoleMidfielder, Vec2{X: 100, Y: 200})
	atMin := placeAgent(TeamA, 1, RoleForward, Vec2{X: 130, Y: 200})
	atMax := placeAgent(TeamA, 2, RoleForward, Vec2{X: 300, Y: 200})
	m := bareMatch(t, DefaultConfig(), h, atMin, atMax)

	if got := m.bestPassCandidate(h); got != nil {
		t.Fatalf("candidates exactly on the band edges should be excluded, got %s", got.Label())
	}
}

func TestMoveBall_LooseBallDriftsToNearest(t *testing.T) {
	a := placeAgent(TeamA, 0, RoleMidfielder, Vec2{X: 300, Y: 200})
	m := bareMatch(t, DefaultConfig(), a)
	m.ball.pos = Vec2{X: 100, Y: 200}

	m.moveBall()
	if m.ball.holder != nil {
		t.Fatal("no agent is in reach, ball should stay loose")
	}
	want := Vec2{X: 100 + DefaultConfig().DriftStep, Y: 200}
	if m.ball.pos.Dist(want) > 1e-9 {
		t.Fatalf("expected drift to %+v, got %+v", want, m.ball.pos)
	}
}

func TestMoveBall_HolderDribbles(t *testing.T) {
	cfg := DefaultConfig()
	a := placeAgent(TeamA, 0, RoleMidfielder, Vec2{X: 110, Y: 200})
	m := bareMatch(t, cfg, a)
	m.ball.pos = Vec2{X: 100, Y: 200}

	m.moveBall()
	if m.ball.holder != a {
		t.Fatal("agent within holder radius should take the ball")
	}
	if math.Abs(m.ball.pos.X-(100+cfg.DribbleStep)) > 1e-9 {
		t.Fatalf("expected dribble step to x=%.1f, got %.1f", 100+cfg.DribbleStep, m.ball.pos.X)
	}
	if m.stats.Teams[TeamA].PassesAttempted != 0 {
		t.Fatal("no pass should be attempted without a candidate")
	}
}

func TestMoveBall_CertainPassKicksOneStep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PassChance = 1
	h := placeAgent(TeamA, 0, RoleMidfielder, Vec2{X: 100, Y: 200})
	r := placeAgent(TeamA, 1, RoleForward, Vec2{X: 200, Y: 200})
	m := bareMatch(t, cfg, h, r)
	m.ball.pos = h.pos

	m.moveBall()
	if m.stats.Teams[TeamA].PassesAttempted != 1 {
		t.Fatalf("expected one pass attempt, got %d", m.stats.Teams[TeamA].PassesAttempted)
	}
	if !hasEvent(m.out, EventPass, TeamA) {
		t.Fatal("expected a PASS event")
	}
	want := Vec2{X: 100 + cfg.PassStep, Y: 200}
	if m.ball.pos.Dist(want) > 1e-9 {
		t.Fatalf("expected the ball at %+v, got %+v", want, m.ball.pos)
	}
	if m.ball.InFlight() || m.ball.holder != nil {
		t.Fatal("a kicked ball is loose until the next holder recompute")
	}
}

func TestMoveBall_KickedBallDriftsOnNextTick(t *testing.T) {
	passer := placeAgent(TeamA, 0, RoleMidfielder, Vec2{X: 100, Y: 200})
	recv := placeAgent(TeamA, 1, RoleForward, Vec2{X: 250, Y: 200})
	m := bareMatch(t, DefaultConfig(), passer, recv)
	m.ball.pos = Vec2{X: 150, Y: 200}
	m.ball.passer = passer
	m.ball.receiver = recv

	m.moveBall()
	want := Vec2{X: 150 - DefaultConfig().DriftStep, Y: 200}
	if m.ball.pos.Dist(want) > 1e-9 {
		t.Fatalf("loose ball should drift toward the nearest agent to %+v, got %+v", want, m.ball.pos)
	}
	if m.ball.InFlight() || m.ball.holder != nil {
		t.Fatal("nobody is within holder radius, ball should stay loose")
	}
}

func TestMoveBall_KickIntercepted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PassChance = 1
	h := placeAgent(TeamA, 0, RoleMidfielder, Vec2{X: 100, Y: 200})
	r := placeAgent(TeamA, 1, RoleForward, Vec2{X: 200, Y: 200})
	opp := placeAgent(TeamB, 5, RoleMidfielder, Vec2{X: 115, Y: 210})
	m := bareMatch(t, cfg, h, r, opp)
	m.ball.pos = h.pos

	m.moveBall()
	if m.ball.holder != opp || m.ball.pos != opp.pos {
		t.Fatalf("opponent near the landing point should take the ball, holder=%v pos=%+v", m.ball.holder, m.ball.pos)
	}
	if m.stats.Teams[TeamB].Interceptions != 1 {
		t.Fatalf("expected one interception for B, got %d", m.stats.Teams[TeamB].Interceptions)
	}

	sl := NewSimLog(false)
	sl.Record(m.out)
	got := sl.FilterAgent(opp.Label())
	if len(got) != 1 || got[0].Key != "interception" {
		t.Fatalf("expected one interception entry for %s:\n%s", opp.Label(), sl.Format())
	}
	if passes := sl.FilterAgent(h.Label()); len(passes) != 1 || passes[0].Key != "pass" {
		t.Fatalf("expected one pass entry for %s:\n%s", h.Label(), sl.Format())
	}
}

func TestUpdateHolder_TeammatePickupCompletesPass(t *testing.T) {
	passer := placeAgent(TeamA, 0, RoleMidfielder, Vec2{X: 100, Y: 200})
	recv := placeAgent(TeamA, 1, RoleForward, Vec2{X: 150, Y: 200})
	m := bareMatch(t, DefaultConfig(), passer, recv)
	m.ball.pos = Vec2{X: 145, Y: 200}
	m.ball.passer = passer

	m.updateHolder()
	if m.ball.holder != recv {
		t.Fatal("nearest teammate should pick up the ball")
	}
	if m.stats.Teams[TeamA].PassesCompleted != 1 {
		t.Fatalf("expected one completed pass, got %d", m.stats.Teams[TeamA].PassesCompleted)
	}
	if m.ball.passer != nil {
		t.Fatal("pickup should clear the kicker")
	}
}

func TestUpdateHolder_PasserRegainIsNotACompletion(t *testing.T) {
	passer := placeAgent(TeamA, 0, RoleMidfielder, Vec2{X: 100, Y: 200})
	recv := placeAgent(TeamA, 1, RoleForward, Vec2{X: 200, Y: 200})
	m := bareMatch(t, DefaultConfig(), passer, recv)
	m.ball.pos = Vec2{X: 112, Y: 200}
	m.ball.passer = passer

	m.updateHolder()
	if m.ball.holder != passer {
		t.Fatal("passer is nearest and should hold the ball")
	}
	if m.stats.Teams[TeamA].PassesCompleted != 0 {
		t.Fatalf("regaining your own kick is not a completion, got %d", m.stats.Teams[TeamA].PassesCompleted)
	}
}

func flightConfig() Config {
	cfg := DefaultConfig()
	cfg.PassFlight = true
	return cfg
}

func TestMoveBall_FlightModeStartsFlight(t *testing.T) {
	cfg := flightConfig()
	cfg.PassChance = 1
	h := placeAgent(TeamA, 0, RoleMidfielder, Vec2{X: 100, Y: 200})
	r := placeAgent(TeamA, 1, RoleForward, Vec2{X: 200, Y: 200})
	m := bareMatch(t, cfg, h, r)
	m.ball.pos = h.pos

	m.moveBall()
	if m.stats.Teams[TeamA].PassesAttempted != 1 {
		t.Fatalf("expected one pass attempt, got %d", m.stats.Teams[TeamA].PassesAttempted)
	}
	if !m.ball.InFlight() || m.ball.receiver != r {
		t.Fatal("ball should be in flight toward the receiver")
	}

	m.moveBall()
	want := Vec2{X: 100 + 2*cfg.PassStep, Y: 200}
	if m.ball.pos.Dist(want) > 1e-9 {
		t.Fatalf("flight should keep moving toward the receiver, want %+v got %+v", want, m.ball.pos)
	}
}

func TestAdvancePass_Interception(t *testing.T) {
	passer := placeAgent(TeamA, 0, RoleMidfielder, Vec2{X: 100, Y: 200})
	recv := placeAgent(TeamA, 1, RoleForward, Vec2{X: 250, Y: 200})
	opp := placeAgent(TeamB, 5, RoleMidfielder, Vec2{X: 120, Y: 205})
	m := bareMatch(t, flightConfig(), passer, recv, opp)
	m.ball.pos = passer.pos
	m.ball.passer = passer
	m.ball.receiver = recv

	m.advancePass()
	if m.ball.holder != opp {
		t.Fatal("nearby opponent should intercept")
	}
	if m.ball.InFlight() {
		t.Fatal("interception ends the flight")
	}
	if m.stats.Teams[TeamB].Interceptions != 1 {
		t.Fatalf("expected one interception for B, got %d", m.stats.Teams[TeamB].Interceptions)
	}
	if !hasEvent(m.out, EventInterception, TeamB) {
		t.Fatal("expected an INTERCEPTION event")
	}
}

func TestAdvancePass_Completion(t *testing.T) {
	passer := placeAgent(TeamA, 0, RoleMidfielder, Vec2{X: 100, Y: 200})
	recv := placeAgent(TeamA, 1, RoleForward, Vec2{X: 120, Y: 200})
	m := bareMatch(t, flightConfig(), passer, recv)
	m.ball.pos = passer.pos
	m.ball.passer = passer
	m.ball.receiver = recv

	m.advancePass()
	if m.ball.holder != recv {
		t.Fatal("receiver should control the ball")
	}
	if m.stats.Teams[TeamA].PassesCompleted != 1 {
		t.Fatalf("expected one completed pass, got %d", m.stats.Teams[TeamA].PassesCompleted)
	}
}

func TestAdvancePass_ExpiresLoose(t *testing.T) {
	cfg := flightConfig()
	cfg.PassFlightTicks = 1
	passer := placeAgent(TeamA, 0, RoleMidfielder, Vec2{X: 100, Y: 200})
	recv := placeAgent(TeamA, 1, RoleForward, Vec2{X: 300, Y: 200})
	m := bareMatch(t, cfg, passer, recv)
	m.ball.pos = passer.pos
	m.ball.passer = passer
	m.ball.receiver = recv

	m.advancePass()
	if m.ball.InFlight() || m.ball.holder != nil {
		t.Fatal("flight past its tick limit should leave a loose ball")
	}
}

func TestCheckGoalLine_RestartWithoutScoring(t *testing.T) {
	m := newMatch(t, 0, 0, WithSeed(3))
	m.ball.pos = Vec2{X: 0, Y: 200}

	m.checkGoalLine()
	if !m.ball.Dead() {
		t.Fatal("ball should be dead after crossing a goal line")
	}
	if s := m.Score(); s.A != 0 || s.B != 0 {
		t.Fatalf("line crossing should not change the score by default, got %d-%d", s.A, s.B)
	}
	if m.stats.Teams[TeamB].LineCrossings != 1 {
		t.Fatal("crossing the left line is credited to B")
	}
	if !hasEvent(m.out, EventGoalLine, TeamB) {
		t.Fatal("expected a GOAL_LINE event for B")
	}

	cfg := DefaultConfig()
	for i := 0; i < cfg.GoalRestartTicks; i++ {
		m.Step()
	}
	if m.ball.Dead() {
		t.Fatal("ball should be live again after the restart delay")
	}
	for _, a := range m.agents {
		if a.pos.Dist(a.baseline) > cfg.MaxMove+1e-9 {
			t.Fatalf("agent %s was not reset to formation on restart", a.label)
		}
	}
}

func TestCheckGoalLine_ParityModeScores(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LineGoalsScore = true
	m := newMatch(t, 0, 0, WithSeed(3), WithConfig(cfg))
	m.ball.pos = Vec2{X: FieldWidth, Y: 200}

	m.checkGoalLine()
	if s := m.Score(); s.A != 1 || s.B != 0 {
		t.Fatalf("expected 1-0 in parity mode, got %d-%d", s.A, s.B)
	}
	if !hasEvent(m.out, EventGoal, TeamA) {
		t.Fatal("expected a GOAL event for A")
	}
}

func TestPlaceInGoalArea(t *testing.T) {
	m := newMatch(t, 0, 0, WithSeed(1))
	m.placeInGoalArea(TeamA)
	want := Vec2{X: FieldWidth - goalAreaDepth, Y: Midfield.Y}
	if m.ball.pos != want || !m.ball.Dead() {
		t.Fatalf("expected dead ball at %+v, got %+v dead=%t", want, m.ball.pos, m.ball.Dead())
	}
	m.placeInGoalArea(TeamB)
	if m.ball.pos != (Vec2{X: goalAreaDepth, Y: Midfield.Y}) {
		t.Fatalf("team B goal should be at the left line, got %+v", m.ball.pos)
	}
}
