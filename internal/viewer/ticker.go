package viewer

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Match-Sim/internal/game"
)

const (
	tickerPanelWidth = 320
	tickerMaxEntries = 60
	tickerLineHeight = 11
)

// TickerEntry is a single line in the event ticker.
type TickerEntry struct {
	Tick    int
	Minute  int
	Team    game.Team
	Kind    game.EventKind
	Message string
}

// EventTicker is a ring buffer of match events rendered on-screen.
type EventTicker struct {
	entries []TickerEntry
	head    int
	count   int
}

// NewEventTicker creates a ticker with a fixed capacity.
func NewEventTicker() *EventTicker {
	return &EventTicker{
		entries: make([]TickerEntry, tickerMaxEntries),
	}
}

// Add appends an event to the ticker. POSITIONS events are ignored.
func (et *EventTicker) Add(ev game.Event) {
	if ev.Kind == game.EventPositions {
		return
	}
	et.entries[et.head] = TickerEntry{
		Tick:    ev.Tick,
		Minute:  ev.Minute,
		Team:    ev.Team,
		Kind:    ev.Kind,
		Message: ev.String(),
	}
	et.head = (et.head + 1) % tickerMaxEntries
	if et.count < tickerMaxEntries {
		et.count++
	}
}

// Clear drops every entry.
func (et *EventTicker) Clear() {
	et.head = 0
	et.count = 0
}

// Recent returns entries in chronological order (oldest first).
func (et *EventTicker) Recent() []TickerEntry {
	result := make([]TickerEntry, et.count)
	for i := 0; i < et.count; i++ {
		idx := (et.head - et.count + i + tickerMaxEntries) % tickerMaxEntries
		result[i] = et.entries[idx]
	}
	return result
}

// hasTeam reports whether the entry's team is meaningful for colouring.
func (e TickerEntry) hasTeam() bool {
	switch e.Kind {
	case game.EventGoal, game.EventGoalLine, game.EventPass, game.EventInterception:
		return true
	}
	return false
}

// Draw renders the ticker panel on the right side of the screen.
func (et *EventTicker) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(tickerPanelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(tickerPanelWidth), 16, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "MATCH EVENTS", panelX+8, 2)
	vector.StrokeLine(screen, float32(panelX), 16, float32(panelX+tickerPanelWidth), 16, 1.0, color.RGBA{R: 50, G: 80, B: 50, A: 200}, false)

	entries := et.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 24) / tickerLineHeight
	startIdx := 0
	if len(entries) > maxVisible {
		startIdx = len(entries) - maxVisible
	}

	visible := entries[startIdx:]
	recent := 3

	y := 20
	for i, e := range visible {
		if i >= len(visible)-recent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(tickerPanelWidth-4), float32(tickerLineHeight), color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		if e.hasTeam() {
			vector.FillRect(screen, float32(panelX+5), float32(y+3), 3, 5, teamColor(e.Team), false)
		}
		if e.Kind == game.EventGoal {
			vector.StrokeRect(screen, float32(panelX+2), float32(y), float32(tickerPanelWidth-4), float32(tickerLineHeight), 1, goalFlash, false)
		}
		line := fmt.Sprintf("%4d %s", e.Tick, e.Message)
		ebitenutil.DebugPrintAt(screen, line, panelX+12, y)
		y += tickerLineHeight
	}
}
