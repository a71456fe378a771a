package game

// goalAreaDepth is how far in front of the goal line a scored ball rests.
const goalAreaDepth = 20.0

// Ball is the shared ball state. holder, passer and receiver are weak
// references into Match.agents; the ball never owns an agent.
type Ball struct {
	pos    Vec2
	holder *Agent

	// passer is the last agent to kick the ball. receiver is only set
	// while a multi-tick pass is in flight.
	passer      *Agent
	receiver    *Agent
	flightTicks int

	// dead is set between a goal and the deferred restart.
	dead bool
}

func (b *Ball) Pos() Vec2      { return b.pos }
func (b *Ball) Holder() *Agent { return b.holder }
func (b *Ball) InFlight() bool { return b.receiver != nil }
func (b *Ball) Dead() bool     { return b.dead }

func (b *Ball) clearPossession() {
	b.holder = nil
	b.passer = nil
	b.receiver = nil
	b.flightTicks = 0
}

// moveBall runs the possession and passing model for one tick.
func (m *Match) moveBall() {
	b := &m.ball
	if b.dead {
		return
	}

	if b.receiver != nil && m.cfg.PassFlight {
		m.advancePass()
	} else {
		b.receiver = nil
		m.updateHolder()
		if b.holder != nil {
			m.playHolder()
		} else {
			m.driftBall()
		}
	}

	b.pos = FieldBounds.Clamp(b.pos)
	m.checkGoalLine()
}

// updateHolder keeps the current holder while it stays close to the ball,
// otherwise hands possession to the nearest agent in reach, if any.
func (m *Match) updateHolder() {
	b := &m.ball
	if b.holder != nil && b.holder.pos.Dist(b.pos) <= m.cfg.HolderRadius {
		return
	}
	b.holder = m.nearestAgent(b.pos, m.cfg.HolderRadius, func(*Agent) bool { return true })
	if b.holder == nil || b.passer == nil {
		return
	}
	// A kicked ball picked up by a teammate of the kicker completes the pass.
	if p := b.passer; b.holder != p && b.holder.team == p.team {
		m.stats.Teams[p.team].PassesCompleted++
	}
	b.passer = nil
}

// playHolder either passes or dribbles.
func (m *Match) playHolder() {
	b := &m.ball
	h := b.holder
	if cand := m.bestPassCandidate(h); cand != nil && m.rng.Float64() < m.cfg.PassChance {
		m.stats.Teams[h.team].PassesAttempted++
		m.emit(EventPass, h.team, h.label)
		b.holder = nil
		b.passer = h
		b.flightTicks = 0
		if m.cfg.PassFlight {
			b.receiver = cand
			m.advancePass()
			return
		}
		m.kickPass(cand)
		return
	}
	b.pos = StepToward(b.pos, h.pos, m.cfg.DribbleStep)
}

// kickPass moves the ball one PassStep toward r. Unless an opponent
// takes it at the landing point the ball is left loose, and the next
// tick's holder recompute decides who has it.
func (m *Match) kickPass(r *Agent) {
	b := &m.ball
	proj := StepToward(b.pos, r.pos, m.cfg.PassStep)
	if m.intercept(proj, r.team.Opponent()) {
		return
	}
	b.pos = proj
}

// intercept hands the ball to the defending agent nearest p, if one is
// within InterceptRadius.
func (m *Match) intercept(p Vec2, defending Team) bool {
	opp := m.nearestAgent(p, m.cfg.InterceptRadius, func(a *Agent) bool { return a.team == defending })
	if opp == nil {
		return false
	}
	m.stats.Teams[defending].Interceptions++
	m.emit(EventInterception, defending, opp.label)
	m.ball.clearPossession()
	m.ball.holder = opp
	m.ball.pos = opp.pos
	return true
}

// bestPassCandidate returns the teammate strictly ahead of h, inside the
// pass distance band, with the best forward-minus-lateral score.
func (m *Match) bestPassCandidate(h *Agent) *Agent {
	var best *Agent
	bestScore := 0.0
	for _, c := range m.agents {
		if c == h || c.team != h.team {
			continue
		}
		forward := (c.pos.X - h.pos.X) * h.team.Forward()
		if forward <= 0 {
			continue
		}
		d := h.pos.Dist(c.pos)
		if d <= m.cfg.PassMinDist || d >= m.cfg.PassMaxDist {
			continue
		}
		lateral := c.pos.Y - h.pos.Y
		if lateral < 0 {
			lateral = -lateral
		}
		score := forward - m.cfg.LateralPenalty*lateral
		if best == nil || score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

// advancePass moves a multi-tick pass one step toward its receiver. An
// opponent near the new point takes the ball; reaching the receiver ends
// the flight with the receiver in possession.
func (m *Match) advancePass() {
	b := &m.ball
	r := b.receiver
	proj := StepToward(b.pos, r.pos, m.cfg.PassStep)
	if m.intercept(proj, r.team.Opponent()) {
		return
	}

	b.pos = proj
	b.flightTicks++
	switch {
	case b.pos.Dist(r.pos) <= m.cfg.HolderRadius:
		m.stats.Teams[r.team].PassesCompleted++
		b.clearPossession()
		b.holder = r
	case b.flightTicks >= m.cfg.PassFlightTicks:
		b.clearPossession()
	}
}

// driftBall rolls a loose ball toward whoever is nearest.
func (m *Match) driftBall() {
	b := &m.ball
	if n := m.nearestAgent(b.pos, 0, func(*Agent) bool { return true }); n != nil {
		b.pos = StepToward(b.pos, n.pos, m.cfg.DriftStep)
	}
}

// nearestAgent returns the closest agent accepted by keep and no farther
// than radius from p. A radius of 0 means unlimited.
func (m *Match) nearestAgent(p Vec2, radius float64, keep func(*Agent) bool) *Agent {
	var best *Agent
	bestDist := 0.0
	for _, a := range m.agents {
		if !keep(a) {
			continue
		}
		d := a.pos.Dist(p)
		if radius > 0 && d > radius {
			continue
		}
		if best == nil || d < bestDist {
			best, bestDist = a, d
		}
	}
	return best
}

// checkGoalLine handles a ball that reached either goal line.
func (m *Match) checkGoalLine() {
	b := &m.ball
	var scorer Team
	switch {
	case b.pos.X <= 0:
		scorer = TeamB
	case b.pos.X >= FieldWidth:
		scorer = TeamA
	default:
		return
	}

	b.clearPossession()
	b.dead = true
	m.stats.Teams[scorer].LineCrossings++
	m.queue.schedule(m.tick, m.cfg.GoalRestartTicks, deferRestartReset)
	m.emit(EventGoalLine, scorer, "")
	m.log.Debug("ball crossed goal line", "credited", scorer, "minute", m.clock.Elapsed)

	if m.cfg.LineGoalsScore {
		m.creditGoal(scorer)
	}
}

// placeInGoalArea parks the ball just inside the goal team t attacks.
func (m *Match) placeInGoalArea(t Team) {
	b := &m.ball
	b.clearPossession()
	b.pos = t.TargetGoal().Sub(Vec2{X: goalAreaDepth * t.Forward()})
	b.dead = true
}

// recentreBall puts a live, unowned ball on the centre spot.
func (m *Match) recentreBall() {
	m.ball.clearPossession()
	m.ball.pos = Midfield
	m.ball.dead = false
}
