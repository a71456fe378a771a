package game

// steerAgents moves every agent one tick toward its target: formation
// baseline shifted by possession and ball height, or the ball itself when
// the agent decides to chase, plus separation from nearby agents.
func (m *Match) steerAgents() {
	for _, a := range m.agents {
		m.steerAgent(a)
	}
}

func (m *Match) steerAgent(a *Agent) {
	cfg := &m.cfg
	ball := m.ball.pos

	// 1-2. Forward/back shift from role and possession.
	var shift float64
	if a.team.HasBall(ball) {
		shift = cfg.AttackShift.For(a.role)
	} else {
		shift = -cfg.DefendShift.For(a.role)
	}
	shift *= a.team.Forward()

	// 3-4. Lateral shift is shared by everyone.
	lateral := (ball.Y - Midfield.Y) * cfg.LateralFactor
	target := a.baseline.Add(Vec2{X: shift, Y: lateral})

	// 5. Chase the ball when close, on its side of the pitch and willing.
	if chase, ok := m.chaseTarget(a, ball); ok {
		target = chase
	}

	// 6. Separation from every other agent inside the radius.
	sep := m.separation(a)

	// 7. Seek at role speed.
	var move Vec2
	if a.pos.Dist(target) > cfg.ArriveRadius {
		move = SetLength(a.pos, target, cfg.MaxSpeed.For(a.role))
	}

	// 8-9. Combine, cap, apply, keep inside the team's box.
	move = move.Add(sep).ClampLen(cfg.MaxMove)
	a.move = move
	a.pos = a.team.Bounds().Clamp(a.pos.Add(move))
}

// chaseTarget rolls a's chase chance when the ball is inside ChaseRadius
// and returns the ball position jittered by up to ChaseJitter per axis.
// The roll is only drawn for agents within the radius.
func (m *Match) chaseTarget(a *Agent, ball Vec2) (Vec2, bool) {
	cfg := &m.cfg
	if a.pos.Dist(ball) >= cfg.ChaseRadius || m.rng.Float64() >= cfg.ChaseChance.For(a.role) || !sameSide(a.pos, ball) {
		return Vec2{}, false
	}
	return ball.Add(Vec2{
		X: (m.rng.Float64()*2 - 1) * cfg.ChaseJitter,
		Y: (m.rng.Float64()*2 - 1) * cfg.ChaseJitter,
	}), true
}

// separation sums a push of SeparationStrength/d away from each agent
// closer than SeparationRadius. Coincident agents are skipped.
func (m *Match) separation(a *Agent) Vec2 {
	var sep Vec2
	for _, o := range m.agents {
		if o == a {
			continue
		}
		d := a.pos.Dist(o.pos)
		if d >= m.cfg.SeparationRadius || d < 1e-9 {
			continue
		}
		sep = sep.Add(a.pos.Sub(o.pos).Scale(m.cfg.SeparationStrength / d))
	}
	return sep
}

// sameSide reports whether p and ball lie in the same half.
func sameSide(p, ball Vec2) bool {
	return (p.X < Midfield.X) == (ball.X < Midfield.X)
}
