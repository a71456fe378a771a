package game

import "fmt"

type MatchOutcome int

const (
	OutcomeInProgress MatchOutcome = iota
	OutcomeTeamAWin
	OutcomeTeamBWin
	OutcomeDraw
)

func (o MatchOutcome) String() string {
	switch o {
	case OutcomeTeamAWin:
		return "team_a_win"
	case OutcomeTeamBWin:
		return "team_b_win"
	case OutcomeDraw:
		return "draw"
	case OutcomeInProgress:
		return "in_progress"
	default:
		return "unknown"
	}
}

// MarshalText renders the outcome name.
func (o MatchOutcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText parses an outcome name.
func (o *MatchOutcome) UnmarshalText(b []byte) error {
	for cand := OutcomeInProgress; cand <= OutcomeDraw; cand++ {
		if cand.String() == string(b) {
			*o = cand
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", b)
}

type MatchOutcomeReason struct {
	Outcome     MatchOutcome `json:"outcome"`
	Score       Score        `json:"score"`
	Margin      int          `json:"margin"`
	PossessionA float64      `json:"possession_a"`
	Description string       `json:"description"`
}

// routMargin is the winning margin at which a result is described as a rout.
const routMargin = 3

// DetermineMatchOutcome classifies a result. Until final is true the
// outcome is OutcomeInProgress, though the description still reports who
// is ahead.
func DetermineMatchOutcome(score Score, final bool, stats Stats) MatchOutcomeReason {
	r := MatchOutcomeReason{
		Outcome:     OutcomeInProgress,
		Score:       score,
		Margin:      score.A - score.B,
		PossessionA: stats.Possession(TeamA),
	}
	if r.Margin < 0 {
		r.Margin = -r.Margin
	}

	leader, trailer := TeamA, TeamB
	if score.B > score.A {
		leader, trailer = TeamB, TeamA
	}

	if !final {
		switch {
		case score.A == score.B:
			r.Description = "in_progress_level"
		default:
			r.Description = fmt.Sprintf("in_progress_%s_leads", teamSlug(leader))
		}
		return r
	}

	if score.A == score.B {
		r.Outcome = OutcomeDraw
		if score.A == 0 {
			r.Description = "goalless_draw"
		} else {
			r.Description = "score_draw"
		}
		return r
	}

	r.Outcome = OutcomeTeamAWin
	if leader == TeamB {
		r.Outcome = OutcomeTeamBWin
	}
	kind := "win"
	switch {
	case r.Margin >= routMargin:
		kind = "rout"
	case r.Margin == 1:
		kind = "narrow_win"
	}
	r.Description = fmt.Sprintf("%s_%s", teamSlug(leader), kind)

	// A side that won without the ball is worth calling out.
	if stats.Teams[TeamA].PossessionTicks+stats.Teams[TeamB].PossessionTicks > 0 &&
		stats.Possession(leader) < stats.Possession(trailer) {
		r.Description += "_against_possession"
	}
	return r
}

func teamSlug(t Team) string {
	if t == TeamA {
		return "team_a"
	}
	return "team_b"
}
