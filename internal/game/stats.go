package game

// TeamStats accumulates one side's match statistics.
type TeamStats struct {
	PossessionTicks int   `json:"possession_ticks"`
	PassesAttempted int   `json:"passes_attempted"`
	PassesCompleted int   `json:"passes_completed"`
	Interceptions   int   `json:"interceptions"`
	LineCrossings   int   `json:"line_crossings"`
	GoalMinutes     []int `json:"goal_minutes"`
}

// PassAccuracy returns completed/attempted in [0,1], or 0 before any pass.
func (ts TeamStats) PassAccuracy() float64 {
	if ts.PassesAttempted == 0 {
		return 0
	}
	return float64(ts.PassesCompleted) / float64(ts.PassesAttempted)
}

// Stats covers both teams for one run.
type Stats struct {
	Teams      [2]TeamStats `json:"teams"`
	LooseTicks int          `json:"loose_ticks"`
}

// Possession returns team t's share of controlled-ball ticks in [0,1].
// Loose-ball ticks count for neither side.
func (s Stats) Possession(t Team) float64 {
	total := s.Teams[TeamA].PossessionTicks + s.Teams[TeamB].PossessionTicks
	if total == 0 {
		return 0
	}
	return float64(s.Teams[t].PossessionTicks) / float64(total)
}

// clone deep-copies the goal minute slices.
func (s Stats) clone() Stats {
	out := s
	for i := range out.Teams {
		out.Teams[i].GoalMinutes = append([]int(nil), s.Teams[i].GoalMinutes...)
	}
	return out
}

// recordPossession credits the current tick to whoever controls the ball.
// A multi-tick pass in flight still belongs to the passing side.
func (s *Stats) recordPossession(b *Ball) {
	switch {
	case b.holder != nil:
		s.Teams[b.holder.team].PossessionTicks++
	case b.InFlight():
		s.Teams[b.passer.team].PossessionTicks++
	default:
		s.LooseTicks++
	}
}
