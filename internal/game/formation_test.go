package game

import "testing"

func TestFormationSlots_ElevenGoalkeeperFirst(t *testing.T) {
	for ft := range formationLines {
		for _, team := range []Team{TeamA, TeamB} {
			slots := formationSlots(ft, team)
			if len(slots) != PlayersPerTeam {
				t.Fatalf("%s team %s: expected %d slots, got %d", ft, team, PlayersPerTeam, len(slots))
			}
			if slots[0].role != RoleGoalkeeper {
				t.Fatalf("%s team %s: slot 0 should be the goalkeeper, got %s", ft, team, slots[0].role)
			}
			for i, s := range slots[1:] {
				if s.role == RoleGoalkeeper {
					t.Fatalf("%s team %s: extra goalkeeper at slot %d", ft, team, i+1)
				}
			}
		}
	}
}

func TestFormationSlots_RoleCounts(t *testing.T) {
	cases := map[FormationType][3]int{
		Formation442: {4, 4, 2},
		Formation433: {4, 3, 3},
		Formation352: {3, 5, 2},
	}
	for ft, want := range cases {
		counts := map[Role]int{}
		for _, s := range formationSlots(ft, TeamA) {
			counts[s.role]++
		}
		if counts[RoleDefender] != want[0] || counts[RoleMidfielder] != want[1] || counts[RoleForward] != want[2] {
			t.Fatalf("%s: got D=%d M=%d F=%d", ft, counts[RoleDefender], counts[RoleMidfielder], counts[RoleForward])
		}
	}
}

func TestFormationSlots_TeamBMirrorsTeamA(t *testing.T) {
	a := formationSlots(Formation442, TeamA)
	b := formationSlots(Formation442, TeamB)
	for i := range a {
		if a[i].pos.X+b[i].pos.X != FieldWidth || a[i].pos.Y != b[i].pos.Y {
			t.Fatalf("slot %d: A %+v and B %+v are not mirrored", i, a[i].pos, b[i].pos)
		}
	}
}

func TestFormationSlots_InsideTeamBounds(t *testing.T) {
	for ft := range formationLines {
		for _, team := range []Team{TeamA, TeamB} {
			for i, s := range formationSlots(ft, team) {
				if !team.Bounds().Contains(s.pos) {
					t.Fatalf("%s team %s slot %d at %+v is outside team bounds", ft, team, i, s.pos)
				}
			}
		}
	}
}

func TestFormationSlots_ForwardsAheadOfDefenders(t *testing.T) {
	slots := formationSlots(Formation433, TeamA)
	var maxDef, minFwd float64 = 0, FieldWidth
	for _, s := range slots {
		switch s.role {
		case RoleDefender:
			if s.pos.X > maxDef {
				maxDef = s.pos.X
			}
		case RoleForward:
			if s.pos.X < minFwd {
				minFwd = s.pos.X
			}
		}
	}
	if minFwd <= maxDef {
		t.Fatalf("forwards (x>=%.0f) should line up ahead of defenders (x<=%.0f)", minFwd, maxDef)
	}
}
