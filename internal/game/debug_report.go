package game

import (
	"fmt"
	"slices"
	"strings"
)

// possessionSpell is a run of consecutive ticks in which the same side (or
// nobody) had the ball.
type possessionSpell struct {
	startTick   int
	endTick     int
	startMinute int
	endMinute   int
	count       int
	team        Team
	loose       bool
	holders     []string // distinct holders in order of first touch
}

// ReportBuilder watches a match's event stream and assembles a text report
// of how it unfolded. It is shared by the viewer's clipboard export, the
// headless report tool and the match server.
type ReportBuilder struct {
	seed      int64
	formation FormationType
	targets   Score

	goals   []Event
	story   []Event
	spells  []possessionSpell
	last    *Snapshot
	final   bool
	ticks   int
	lastKey string
}

// NewReportBuilder starts a report for m.
func NewReportBuilder(m *Match) *ReportBuilder {
	return &ReportBuilder{
		seed:      m.Seed(),
		formation: m.Config().Formation,
		targets:   m.Targets(),
	}
}

// Observe folds one Step's events into the report.
func (rb *ReportBuilder) Observe(events []Event) {
	for _, ev := range events {
		switch ev.Kind {
		case EventPositions:
			if ev.Snapshot != nil {
				rb.observeSnapshot(ev.Snapshot)
			}
		case EventGoal:
			rb.goals = append(rb.goals, ev)
			rb.story = append(rb.story, ev)
		case EventFullTime:
			rb.final = true
			rb.story = append(rb.story, ev)
		case EventHalfTime, EventSecondHalf, EventGoalLine:
			rb.story = append(rb.story, ev)
		}
	}
}

func (rb *ReportBuilder) observeSnapshot(s *Snapshot) {
	snap := *s
	rb.last = &snap
	rb.ticks = s.Tick
	if s.State != ClockPlaying {
		rb.lastKey = ""
		return
	}

	team, loose := TeamA, true
	if s.Holder != "" {
		loose = false
		if strings.HasPrefix(s.Holder, "B") {
			team = TeamB
		}
	}
	key := "loose"
	if !loose {
		key = team.String()
	}

	if key != rb.lastKey || len(rb.spells) == 0 {
		rb.spells = append(rb.spells, possessionSpell{
			startTick:   s.Tick,
			startMinute: s.Minute,
			team:        team,
			loose:       loose,
		})
		rb.lastKey = key
	}
	sp := &rb.spells[len(rb.spells)-1]
	sp.endTick = s.Tick
	sp.endMinute = s.Minute
	sp.count++
	if s.Holder != "" && (len(sp.holders) == 0 || sp.holders[len(sp.holders)-1] != s.Holder) {
		sp.holders = append(sp.holders, s.Holder)
	}
}

// Final reports whether FULL_TIME has been observed.
func (rb *ReportBuilder) Final() bool { return rb.final }

// Format renders the report. stats may be the zero value when the caller
// has none.
func (rb *ReportBuilder) Format(stats Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Match report ---\n")
	fmt.Fprintf(&b, "seed=%d formation=%s target=%d-%d ticks=%d\n",
		rb.seed, rb.formation, rb.targets.A, rb.targets.B, rb.ticks)

	if rb.last != nil {
		status := "in progress"
		if rb.final {
			status = "final"
		}
		fmt.Fprintf(&b, "score=%d-%d minute=%d (%s)\n", rb.last.ScoreA, rb.last.ScoreB, rb.last.Minute, status)
		out := DetermineMatchOutcome(Score{A: rb.last.ScoreA, B: rb.last.ScoreB}, rb.final, stats)
		fmt.Fprintf(&b, "outcome=%s (%s)\n\n", out.Outcome, out.Description)
	} else {
		b.WriteString("(no ticks recorded yet)\n\n")
	}

	b.WriteString("== GOALS ==\n")
	if len(rb.goals) == 0 {
		b.WriteString("(none)\n")
	}
	for _, g := range rb.goals {
		fmt.Fprintf(&b, "  %2d' %s  %d-%d\n", g.Minute, g.Team, g.ScoreA, g.ScoreB)
	}
	b.WriteByte('\n')

	b.WriteString("== STATS ==\n")
	for _, t := range []Team{TeamA, TeamB} {
		ts := stats.Teams[t]
		fmt.Fprintf(&b, "  %s possession=%.0f%% passes=%d/%d (%.0f%%) interceptions=%d line_crossings=%d\n",
			t, stats.Possession(t)*100,
			ts.PassesCompleted, ts.PassesAttempted, ts.PassAccuracy()*100,
			ts.Interceptions, ts.LineCrossings)
	}
	fmt.Fprintf(&b, "  loose_ticks=%d\n\n", stats.LooseTicks)

	b.WriteString("== STORY ==\n")
	for _, line := range rb.storyLines() {
		b.WriteString("  - ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	b.WriteString("== LONGEST SPELLS ==\n")
	for i, sp := range rb.longestSpells(5) {
		who := sp.team.String()
		if sp.loose {
			who = "loose"
		}
		fmt.Fprintf(&b, "  %02d) T=%d..%d (%dt) %d'-%d' %s holders:%s\n",
			i+1, sp.startTick, sp.endTick, sp.count, sp.startMinute, sp.endMinute,
			who, strings.Join(sp.holders, ">"))
	}
	return b.String()
}

// storyLines lists the notable events, capped so a long match stays readable.
func (rb *ReportBuilder) storyLines() []string {
	out := make([]string, 0, len(rb.story))
	for _, ev := range rb.story {
		out = append(out, ev.String())
	}
	if len(out) > 24 {
		out = append(out[:24], fmt.Sprintf("... (%d more events)", len(out)-24))
	}
	return out
}

// longestSpells returns up to n controlled spells, longest first, ties by
// earliest start.
func (rb *ReportBuilder) longestSpells(n int) []possessionSpell {
	var out []possessionSpell
	for _, sp := range rb.spells {
		if !sp.loose {
			out = append(out, sp)
		}
	}
	// Stable so equal spells stay in start order.
	slices.SortStableFunc(out, func(a, b possessionSpell) int { return b.count - a.count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
