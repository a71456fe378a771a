package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded event during a headless run.
type SimLogEntry struct {
	Tick     int
	Minute   int
	Agent    string  // label e.g. "A0", "B7", or "--" for match-wide events
	Team     string  // "A", "B", or "--"
	Category string  // goal, clock, ball, move, stats
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=0412 41'] A9   ball    pass            A9 → forward
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%04d %02d'] %-4s %-7s %-15s %s",
		e.Tick, e.Minute, e.Agent, e.Category, e.Key, e.Value)
}

// SimLog collects structured events during a headless run.
// Unlike EventTicker in the viewer it is unbounded and machine-readable.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick ball and holder
// entries are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SimLog) Add(tick, minute int, agent, team, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Minute:   minute,
		Agent:    agent,
		Team:     team,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick, minute int, agent, team, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, minute, agent, team, category, key, value, numVal)
}

// Record translates match events into log entries. POSITIONS events only
// produce verbose entries.
func (sl *SimLog) Record(events []Event) {
	for _, ev := range events {
		switch ev.Kind {
		case EventGoal:
			sl.Add(ev.Tick, ev.Minute, "--", ev.Team.String(), "goal", "scored",
				fmt.Sprintf("%d-%d", ev.ScoreA, ev.ScoreB), float64(ev.Minute))
		case EventGoalLine:
			sl.Add(ev.Tick, ev.Minute, "--", ev.Team.String(), "goal", "line_crossed",
				fmt.Sprintf("credited %s", ev.Team), 0)
		case EventBannerCleared:
			sl.Add(ev.Tick, ev.Minute, "--", "--", "goal", "banner_cleared", "", 0)
		case EventHalfTime:
			sl.Add(ev.Tick, ev.Minute, "--", "--", "clock", "half_time",
				fmt.Sprintf("%d-%d", ev.ScoreA, ev.ScoreB), 0)
		case EventSecondHalf:
			sl.Add(ev.Tick, ev.Minute, "--", "--", "clock", "second_half", "", 0)
		case EventFullTime:
			sl.Add(ev.Tick, ev.Minute, "--", "--", "clock", "full_time",
				fmt.Sprintf("%d-%d", ev.ScoreA, ev.ScoreB), 0)
		case EventPass:
			sl.Add(ev.Tick, ev.Minute, ev.Agent, ev.Team.String(), "ball", "pass", ev.Agent, 0)
		case EventInterception:
			sl.Add(ev.Tick, ev.Minute, ev.Agent, ev.Team.String(), "ball", "interception", ev.Agent, 0)
		case EventPositions:
			if ev.Snapshot == nil {
				continue
			}
			s := ev.Snapshot
			holder := s.Holder
			if holder == "" {
				holder = "--"
			}
			sl.AddVerbose(ev.Tick, ev.Minute, holder, "--", "move", "ball",
				fmt.Sprintf("(%.1f,%.1f)", s.Ball.X, s.Ball.Y), s.Ball.X)
		}
	}
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterAgent returns entries for a specific agent label.
func (sl *SimLog) FilterAgent(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Agent == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range sl.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the match state.
func (sl *SimLog) Summary(m *Match) string {
	var sb strings.Builder
	snap := m.Snapshot()
	fmt.Fprintf(&sb, "--- Summary at T=%04d (%d', %s) ---\n", snap.Tick, snap.Minute, snap.State)
	fmt.Fprintf(&sb, "Score: A %d - %d B  (target %d-%d)\n",
		snap.ScoreA, snap.ScoreB, m.Targets().A, m.Targets().B)

	st := m.Stats()
	for _, t := range []Team{TeamA, TeamB} {
		ts := st.Teams[t]
		fmt.Fprintf(&sb, "%s: possession %.0f%%  passes %d/%d  interceptions %d  line crossings %d\n",
			t, st.Possession(t)*100, ts.PassesCompleted, ts.PassesAttempted, ts.Interceptions, ts.LineCrossings)
	}

	holder := snap.Holder
	if holder == "" {
		holder = "none"
	}
	fmt.Fprintf(&sb, "Ball: (%.0f,%.0f) holder=%s\n", snap.Ball.X, snap.Ball.Y, holder)

	pendingA, pendingB := m.Schedule(TeamA), m.Schedule(TeamB)
	if len(pendingA)+len(pendingB) == 0 {
		sb.WriteString("Pending goals: none\n")
	} else {
		fmt.Fprintf(&sb, "Pending goals: A%v B%v\n", pendingA, pendingB)
	}
	return sb.String()
}
