package game

import (
	"strings"
	"testing"
)

func TestReportBuilder_FullMatch(t *testing.T) {
	m := newMatch(t, 2, 1, WithSeed(7))
	rb := NewReportBuilder(m)
	for !m.Done() {
		rb.Observe(m.Step())
	}
	if !rb.Final() {
		t.Fatal("report should be final after FULL_TIME")
	}
	out := rb.Format(m.Stats())
	for _, want := range []string{
		"seed=7",
		"formation=4-4-2",
		"target=2-1",
		"score=2-1 minute=90 (final)",
		"outcome=team_a_win (team_a_narrow_win",
		"== GOALS ==",
		"== STATS ==",
		"FULL TIME 2-1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
	goalsSection := out[strings.Index(out, "== GOALS =="):strings.Index(out, "== STATS ==")]
	if n := strings.Count(goalsSection, "' "); n != 3 {
		t.Fatalf("expected 3 goal lines, got %d:\n%s", n, goalsSection)
	}
}

func TestReportBuilder_Empty(t *testing.T) {
	m := newMatch(t, 0, 0, WithSeed(1))
	out := NewReportBuilder(m).Format(Stats{})
	if !strings.Contains(out, "(no ticks recorded yet)") || !strings.Contains(out, "(none)") {
		t.Fatalf("unexpected empty report:\n%s", out)
	}
}

func TestReportBuilder_SpellsSplitOnHolderTeam(t *testing.T) {
	rb := &ReportBuilder{}
	snaps := []Snapshot{
		{Tick: 1, Minute: 0, Holder: "A3"},
		{Tick: 2, Minute: 0, Holder: "A7"},
		{Tick: 3, Minute: 0},
		{Tick: 4, Minute: 0, Holder: "B2"},
		{Tick: 5, Minute: 0, Holder: "B2"},
		{Tick: 6, Minute: 0, Holder: "B9"},
	}
	for i := range snaps {
		rb.observeSnapshot(&snaps[i])
	}
	if len(rb.spells) != 3 {
		t.Fatalf("expected 3 spells (A, loose, B), got %d", len(rb.spells))
	}
	a, b := rb.spells[0], rb.spells[2]
	if a.team != TeamA || a.count != 2 || strings.Join(a.holders, ">") != "A3>A7" {
		t.Fatalf("unexpected A spell: %+v", a)
	}
	if b.team != TeamB || b.count != 3 || strings.Join(b.holders, ">") != "B2>B9" {
		t.Fatalf("unexpected B spell: %+v", b)
	}
	if top := rb.longestSpells(1); len(top) != 1 || top[0].team != TeamB {
		t.Fatalf("longest spell should be B's, got %+v", top)
	}
}

func TestReportBuilder_LongestSpellsKeepStartOrderOnTies(t *testing.T) {
	rb := &ReportBuilder{spells: []possessionSpell{
		{startTick: 1, count: 2, team: TeamA},
		{startTick: 3, count: 5, loose: true},
		{startTick: 8, count: 4, team: TeamB},
		{startTick: 12, count: 2, team: TeamB},
		{startTick: 14, count: 4, team: TeamA},
	}}

	top := rb.longestSpells(3)
	var starts []int
	for _, sp := range top {
		starts = append(starts, sp.startTick)
	}
	if !equalInts(starts, []int{8, 14, 1}) {
		t.Fatalf("expected spells starting at [8 14 1], got %v", starts)
	}
}
