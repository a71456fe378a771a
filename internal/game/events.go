package game

import "fmt"

// EventKind classifies an emitted event.
type EventKind int

const (
	EventPositions EventKind = iota
	EventGoal
	EventHalfTime
	EventSecondHalf
	EventFullTime
	EventGoalLine
	EventBannerCleared
	EventPass
	EventInterception
)

var eventKindNames = [...]string{
	EventPositions:     "POSITIONS",
	EventGoal:          "GOAL",
	EventHalfTime:      "HALF_TIME",
	EventSecondHalf:    "SECOND_HALF",
	EventFullTime:      "FULL_TIME",
	EventGoalLine:      "GOAL_LINE",
	EventBannerCleared: "GOAL_BANNER_CLEARED",
	EventPass:          "PASS",
	EventInterception:  "INTERCEPTION",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// MarshalText renders the upper-case wire name.
func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText parses the upper-case wire name.
func (k *EventKind) UnmarshalText(b []byte) error {
	for i, name := range eventKindNames {
		if name == string(b) {
			*k = EventKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", b)
}

// Event is one notification for the presentation layer.
type Event struct {
	Kind   EventKind `json:"kind"`
	Tick   int       `json:"tick"`
	Minute int       `json:"minute"`
	Team   Team      `json:"team"`
	ScoreA int       `json:"score_a"`
	ScoreB int       `json:"score_b"`
	// Agent is the label of the agent involved (passer, interceptor), if any.
	Agent    string    `json:"agent,omitempty"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

func (e Event) String() string {
	switch e.Kind {
	case EventGoal:
		return fmt.Sprintf("%d' GOAL team %s (%d-%d)", e.Minute, e.Team, e.ScoreA, e.ScoreB)
	case EventFullTime:
		return fmt.Sprintf("%d' FULL TIME %d-%d", e.Minute, e.ScoreA, e.ScoreB)
	case EventHalfTime:
		return fmt.Sprintf("%d' HALF TIME %d-%d", e.Minute, e.ScoreA, e.ScoreB)
	case EventPass, EventInterception:
		return fmt.Sprintf("%d' %s %s", e.Minute, e.Kind, e.Agent)
	default:
		return fmt.Sprintf("%d' %s", e.Minute, e.Kind)
	}
}

// AgentSnapshot is a copy of one agent's visible state.
type AgentSnapshot struct {
	Label string `json:"label"`
	Team  Team   `json:"team"`
	Role  Role   `json:"role"`
	Pos   Vec2   `json:"pos"`
}

// Snapshot is the per-tick picture handed to renderers.
type Snapshot struct {
	Tick   int             `json:"tick"`
	Minute int             `json:"minute"`
	State  ClockState      `json:"state"`
	ScoreA int             `json:"score_a"`
	ScoreB int             `json:"score_b"`
	Ball   Vec2            `json:"ball"`
	Holder string          `json:"holder,omitempty"`
	Agents []AgentSnapshot `json:"agents"`
	Banner *Team           `json:"banner,omitempty"` // team whose goal text is showing
}

// deferredKind is the action a queued entry performs when it comes due.
type deferredKind int

const (
	deferRestart      deferredKind = iota // recentre ball, clear possession
	deferRestartReset                     // as deferRestart plus formation reset
	deferBannerClear
)

type deferredEvent struct {
	due        int
	kind       deferredKind
	generation int
}

// deferredQueue holds one-shot actions keyed by the tick they fall due.
// Entries carry the generation they were scheduled in; bumping the
// generation invalidates everything still pending.
type deferredQueue struct {
	entries    []deferredEvent
	generation int
}

func (q *deferredQueue) schedule(now, delay int, kind deferredKind) {
	q.entries = append(q.entries, deferredEvent{due: now + delay, kind: kind, generation: q.generation})
}

// due removes and returns the entries whose deadline is at or before now,
// in scheduling order.
func (q *deferredQueue) due(now int) []deferredEvent {
	var ready []deferredEvent
	kept := q.entries[:0]
	for _, e := range q.entries {
		switch {
		case e.generation != q.generation:
			// stale
		case e.due <= now:
			ready = append(ready, e)
		default:
			kept = append(kept, e)
		}
	}
	q.entries = kept
	return ready
}

// invalidate drops every pending entry.
func (q *deferredQueue) invalidate() {
	q.generation++
	q.entries = q.entries[:0]
}

func (q *deferredQueue) pending() int { return len(q.entries) }
