package game

import "fmt"

// PlayersPerTeam is the number of agents each side fields.
const PlayersPerTeam = 11

// Team identifies one of the two sides. Team A defends the left goal and
// attacks toward +x; team B mirrors it.
type Team int

const (
	TeamA Team = iota
	TeamB
)

func (t Team) String() string {
	if t == TeamA {
		return "A"
	}
	return "B"
}

// MarshalText renders the team as "A" or "B".
func (t Team) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText accepts "A" or "B".
func (t *Team) UnmarshalText(b []byte) error {
	switch string(b) {
	case "A", "a":
		*t = TeamA
	case "B", "b":
		*t = TeamB
	default:
		return fmt.Errorf("unknown team %q", b)
	}
	return nil
}

// Opponent returns the other side.
func (t Team) Opponent() Team { return 1 - t }

// Forward is the sign of the x axis this team attacks along.
func (t Team) Forward() float64 {
	if t == TeamA {
		return 1
	}
	return -1
}

// Bounds is the own-half-plus-overlap box the team's agents stay inside.
func (t Team) Bounds() Rect {
	if t == TeamA {
		return Rect{MinX: 20, MinY: 20, MaxX: 350, MaxY: 430}
	}
	return Rect{MinX: 350, MinY: 20, MaxX: 660, MaxY: 430}
}

// HasBall reports whether the team counts as in possession for steering
// purposes, which depends only on which half the ball is in.
func (t Team) HasBall(ball Vec2) bool {
	if t == TeamA {
		return ball.X < Midfield.X
	}
	return ball.X >= Midfield.X
}

// TargetGoal is the centre of the goal mouth this team attacks.
func (t Team) TargetGoal() Vec2 {
	if t == TeamA {
		return Vec2{X: FieldWidth, Y: Midfield.Y}
	}
	return Vec2{X: 0, Y: Midfield.Y}
}

// Role is an agent's tactical position.
type Role int

const (
	RoleGoalkeeper Role = iota
	RoleDefender
	RoleMidfielder
	RoleForward
)

func (r Role) String() string {
	switch r {
	case RoleGoalkeeper:
		return "goalkeeper"
	case RoleDefender:
		return "defender"
	case RoleMidfielder:
		return "midfielder"
	case RoleForward:
		return "forward"
	default:
		return "unknown"
	}
}

// MarshalText renders the role name.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText parses a role name.
func (r *Role) UnmarshalText(b []byte) error {
	for cand := RoleGoalkeeper; cand <= RoleForward; cand++ {
		if cand.String() == string(b) {
			*r = cand
			return nil
		}
	}
	return fmt.Errorf("unknown role %q", b)
}

// Agent is one simulated player.
type Agent struct {
	team     Team
	role     Role
	index    int // 0..10 within the team
	label    string
	pos      Vec2
	baseline Vec2 // formation position, fixed for the run
	move     Vec2 // movement applied on the last tick
}

func newAgent(team Team, index int, slot formationSlot) *Agent {
	return &Agent{
		team:     team,
		role:     slot.role,
		index:    index,
		label:    fmt.Sprintf("%s%d", team, index),
		pos:      slot.pos,
		baseline: slot.pos,
	}
}

func (a *Agent) Team() Team     { return a.team }
func (a *Agent) Role() Role     { return a.role }
func (a *Agent) Index() int     { return a.index }
func (a *Agent) Label() string  { return a.label }
func (a *Agent) Pos() Vec2      { return a.pos }
func (a *Agent) Baseline() Vec2 { return a.baseline }

// Velocity is the displacement applied on the most recent tick.
func (a *Agent) Velocity() Vec2 { return a.move }
