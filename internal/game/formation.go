package game

// FormationType names a team shape as outfield lines from back to front.
type FormationType string

const (
	Formation442 FormationType = "4-4-2"
	Formation433 FormationType = "4-3-3"
	Formation352 FormationType = "3-5-2"
)

// formationLines lists outfield line sizes, defence first. Each must sum to 10.
var formationLines = map[FormationType][]int{
	Formation442: {4, 4, 2},
	Formation433: {4, 3, 3},
	Formation352: {3, 5, 2},
}

// Depths for team A, measured from its own goal line. Team B mirrors them.
const (
	keeperDepth   = 40.0
	defenceDepth  = 110.0
	attackDepth   = 300.0
	lateralMargin = 40.0
)

// formationSlot is one agent's baseline in a formation.
type formationSlot struct {
	role Role
	pos  Vec2
}

// formationSlots returns the 11 baselines for team t, goalkeeper first.
func formationSlots(ft FormationType, t Team) []formationSlot {
	lines, ok := formationLines[ft]
	if !ok {
		lines = formationLines[Formation442]
	}
	slots := make([]formationSlot, 0, PlayersPerTeam)
	slots = append(slots, formationSlot{role: RoleGoalkeeper, pos: mirror(t, Vec2{X: keeperDepth, Y: Midfield.Y})})

	for li, n := range lines {
		role := RoleMidfielder
		switch li {
		case 0:
			role = RoleDefender
		case len(lines) - 1:
			role = RoleForward
		}
		// Lines are spaced evenly between the back line and the front line.
		depth := defenceDepth
		if len(lines) > 1 {
			depth = defenceDepth + float64(li)*(attackDepth-defenceDepth)/float64(len(lines)-1)
		}
		spacing := (FieldHeight - 2*lateralMargin) / float64(n)
		for i := 0; i < n; i++ {
			y := lateralMargin + (float64(i)+0.5)*spacing
			slots = append(slots, formationSlot{role: role, pos: mirror(t, Vec2{X: depth, Y: y})})
		}
	}
	return slots
}

// mirror maps a team-A position to team t's half.
func mirror(t Team, p Vec2) Vec2 {
	if t == TeamA {
		return p
	}
	return Vec2{X: FieldWidth - p.X, Y: p.Y}
}
