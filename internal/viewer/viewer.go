// Package viewer renders a running match with ebiten. It owns no match
// logic: each frame it steps the core, folds the emitted events into the
// ticker and report, and draws the latest snapshot.
package viewer

import (
	"fmt"
	"image/color"
	"log/slog"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Match-Sim/internal/game"
)

// borderWidth is the pixel gap between the window edge and the pitch.
const borderWidth = 24

// hudScale is the integer upscale factor applied to HUD text.
const hudScale = 2

// bannerScale enlarges the goal banner.
const bannerScale = 4

// statusTicks is how many frames a status message stays visible.
const statusTicks = 120

const (
	agentRadius = 5.0
	ballRadius  = 3.0
)

// Viewer is the ebiten.Game that shows one match.
type Viewer struct {
	match  *game.Match
	report *game.ReportBuilder
	ticker *EventTicker
	log    *slog.Logger
	snap   game.Snapshot

	width      int
	height     int
	pitchW     int
	pitchH     int
	offX, offY int

	pitchBuf  *ebiten.Image
	hudBuf    *ebiten.Image
	bannerBuf *ebiten.Image

	showHUD  bool
	prevKeys map[ebiten.Key]bool

	// Simulation speed in match ticks per frame; 0 = paused.
	simSpeed  float64
	lastSpeed float64
	tickAccum float64

	status      string
	statusTimer int
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithLogger sets the logger for viewer actions.
func WithLogger(l *slog.Logger) Option {
	return func(v *Viewer) {
		if l != nil {
			v.log = l
		}
	}
}

// WithSpeed sets the initial ticks-per-frame rate.
func WithSpeed(ticksPerFrame float64) Option {
	return func(v *Viewer) { v.simSpeed = ticksPerFrame }
}

// New builds a viewer for m. m must not be stepped by anyone else.
func New(m *game.Match, opts ...Option) *Viewer {
	pw, ph := int(game.FieldWidth*pitchScale), int(game.FieldHeight*pitchScale)
	v := &Viewer{
		match:    m,
		report:   game.NewReportBuilder(m),
		ticker:   NewEventTicker(),
		log:      slog.New(slog.DiscardHandler),
		snap:     m.Snapshot(),
		pitchW:   pw,
		pitchH:   ph,
		offX:     borderWidth,
		offY:     borderWidth + 40, // scoreboard strip
		width:    borderWidth + pw + borderWidth + tickerPanelWidth,
		height:   borderWidth + 40 + ph + borderWidth,
		showHUD:  true,
		prevKeys: make(map[ebiten.Key]bool),
		simSpeed: 1.0 / 6,
	}
	for _, o := range opts {
		o(v)
	}
	v.lastSpeed = v.simSpeed
	if v.lastSpeed <= 0 {
		v.lastSpeed = 1.0 / 6
	}
	v.pitchBuf = renderPitch(m.Seed())
	v.hudBuf = ebiten.NewImage(v.width/hudScale, v.height/hudScale)
	v.bannerBuf = ebiten.NewImage(v.pitchW/bannerScale, 24)
	return v
}

// Size returns the window size the viewer lays out for.
func (v *Viewer) Size() (int, int) { return v.width, v.height }

func (v *Viewer) Update() error {
	v.handleInput()
	if v.statusTimer > 0 {
		v.statusTimer--
	}
	if v.simSpeed <= 0 || v.match.Done() {
		return nil
	}
	v.tickAccum += v.simSpeed
	for v.tickAccum >= 1.0 {
		v.tickAccum -= 1.0
		v.consume(v.match.Step())
	}
	return nil
}

// consume routes one Step's events to the ticker, report and snapshot.
func (v *Viewer) consume(events []game.Event) {
	v.report.Observe(events)
	for _, ev := range events {
		if ev.Kind == game.EventPositions && ev.Snapshot != nil {
			v.snap = *ev.Snapshot
			continue
		}
		v.ticker.Add(ev)
		if ev.Kind == game.EventFullTime {
			v.log.Info("full time", "score", fmt.Sprintf("%d-%d", ev.ScoreA, ev.ScoreB))
		}
	}
}

// keyPressed is edge-triggered: true only on the frame k goes down.
func (v *Viewer) keyPressed(current map[ebiten.Key]bool, k ebiten.Key) bool {
	current[k] = ebiten.IsKeyPressed(k)
	return current[k] && !v.prevKeys[k]
}

func (v *Viewer) handleInput() {
	currentKeys := map[ebiten.Key]bool{}

	// P: pause/resume.
	if v.keyPressed(currentKeys, ebiten.KeyP) {
		if v.simSpeed > 0 {
			v.lastSpeed = v.simSpeed
			v.simSpeed = 0
		} else {
			v.simSpeed = v.lastSpeed
		}
	}

	// R: restart with the same targets.
	if v.keyPressed(currentKeys, ebiten.KeyR) {
		v.reset()
	}

	// C: copy the match report.
	if v.keyPressed(currentKeys, ebiten.KeyC) {
		v.copyReport()
	}

	// H: toggle HUD key legend.
	if v.keyPressed(currentKeys, ebiten.KeyH) {
		v.showHUD = !v.showHUD
	}

	// , and . step through the speed presets.
	speeds := []float64{1.0 / 12, 1.0 / 6, 1.0 / 3, 1, 4}
	if v.keyPressed(currentKeys, ebiten.KeyComma) {
		v.simSpeed = stepSpeed(speeds, v.simSpeed, -1)
	}
	if v.keyPressed(currentKeys, ebiten.KeyPeriod) {
		v.simSpeed = stepSpeed(speeds, v.simSpeed, +1)
	}

	v.prevKeys = currentKeys
}

// stepSpeed moves cur one preset up or down. A paused viewer resumes at
// the slowest preset when sped up and stays paused when slowed.
func stepSpeed(presets []float64, cur float64, dir int) float64 {
	if cur <= 0 {
		if dir > 0 {
			return presets[0]
		}
		return 0
	}
	if dir < 0 {
		for i := len(presets) - 1; i >= 0; i-- {
			if presets[i] < cur {
				return presets[i]
			}
		}
		return presets[0]
	}
	for _, s := range presets {
		if s > cur {
			return s
		}
	}
	return presets[len(presets)-1]
}

func (v *Viewer) reset() {
	v.match.Reset()
	v.report = game.NewReportBuilder(v.match)
	v.ticker.Clear()
	v.snap = v.match.Snapshot()
	v.tickAccum = 0
	v.flash("match reset")
	v.log.Info("match reset", "targets", fmt.Sprintf("%d-%d", v.match.Targets().A, v.match.Targets().B))
}

func (v *Viewer) copyReport() {
	text := v.report.Format(v.match.Stats())
	if err := clipboard.WriteAll(text); err != nil {
		v.log.Warn("copy report failed", "err", err)
		v.flash("clipboard unavailable")
		return
	}
	v.flash("report copied")
}

func (v *Viewer) flash(msg string) {
	v.status = msg
	v.statusTimer = statusTicks
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})

	var op ebiten.DrawImageOptions
	op.GeoM.Translate(float64(v.offX), float64(v.offY))
	screen.DrawImage(v.pitchBuf, &op)

	ox, oy := float32(v.offX), float32(v.offY)
	vector.StrokeRect(screen, ox-3, oy-3, float32(v.pitchW)+6, float32(v.pitchH)+6, 1.0, color.RGBA{R: 40, G: 65, B: 40, A: 100}, false)

	v.drawAgents(screen)
	v.drawBall(screen)
	v.drawScoreboard(screen)
	if v.snap.Banner != nil {
		v.drawBanner(screen, *v.snap.Banner)
	}

	v.ticker.Draw(screen, v.offX+v.pitchW+borderWidth, v.height)

	if v.showHUD {
		v.drawHUD(screen)
	}
}

// toScreen maps simulation coordinates to window pixels.
func (v *Viewer) toScreen(p game.Vec2) (float32, float32) {
	return float32(v.offX) + float32(p.X*pitchScale), float32(v.offY) + float32(p.Y*pitchScale)
}

func (v *Viewer) drawAgents(screen *ebiten.Image) {
	for _, a := range v.snap.Agents {
		x, y := v.toScreen(a.Pos)
		c := teamColor(a.Team)
		if a.Role == game.RoleGoalkeeper {
			c = keeperColor(a.Team)
		}
		vector.FillCircle(screen, x, y, agentRadius*pitchScale/2+2, c, true)
		if a.Label == v.snap.Holder {
			vector.StrokeCircle(screen, x, y, agentRadius*pitchScale/2+5, 1.5, ballColor, true)
		}
	}
}

func (v *Viewer) drawBall(screen *ebiten.Image) {
	x, y := v.toScreen(v.snap.Ball)
	vector.FillCircle(screen, x+1, y+1, ballRadius*pitchScale/2+1, color.RGBA{A: 90}, true)
	vector.FillCircle(screen, x, y, ballRadius*pitchScale/2+1, ballColor, true)
}

func (v *Viewer) drawScoreboard(screen *ebiten.Image) {
	s := v.snap
	phase := ""
	switch s.State {
	case game.ClockHalfTime:
		phase = "  HALF TIME"
	case game.ClockFullTime:
		phase = "  FULL TIME"
	}
	line := fmt.Sprintf("A %d - %d B    %02d'%s", s.ScoreA, s.ScoreB, s.Minute, phase)
	vector.FillRect(screen, float32(v.offX), borderWidth, float32(v.pitchW), 32, color.RGBA{R: 6, G: 10, B: 6, A: 220}, false)
	vector.FillRect(screen, float32(v.offX)+8, borderWidth+8, 12, 16, teamColor(game.TeamA), false)
	vector.FillRect(screen, float32(v.offX+v.pitchW)-20, borderWidth+8, 12, 16, teamColor(game.TeamB), false)
	ebitenutil.DebugPrintAt(screen, line, v.offX+v.pitchW/2-len(line)*3, borderWidth+8)
	if v.statusTimer > 0 {
		ebitenutil.DebugPrintAt(screen, v.status, v.offX+28, borderWidth+8)
	}
}

// drawBanner shows the goal text centred over the pitch, upscaled from a
// small buffer like the HUD.
func (v *Viewer) drawBanner(screen *ebiten.Image, t game.Team) {
	text := fmt.Sprintf("GOAL! TEAM %s", t)
	v.bannerBuf.Clear()
	bw := len(text)*6 + 10
	bx := (v.pitchW/bannerScale - bw) / 2
	vector.FillRect(v.bannerBuf, float32(bx), 2, float32(bw), 18, color.RGBA{R: 0, G: 0, B: 0, A: 170}, false)
	vector.StrokeRect(v.bannerBuf, float32(bx), 2, float32(bw), 18, 1, teamColor(t), false)
	ebitenutil.DebugPrintAt(v.bannerBuf, text, bx+5, 3)

	var op ebiten.DrawImageOptions
	op.GeoM.Scale(bannerScale, bannerScale)
	op.GeoM.Translate(float64(v.offX), float64(v.offY+v.pitchH/2-12*bannerScale))
	screen.DrawImage(v.bannerBuf, &op)
}

func (v *Viewer) drawHUD(screen *ebiten.Image) {
	speedStr := "PAUSED"
	if v.simSpeed > 0 {
		speedStr = fmt.Sprintf("%.2f ticks/frame", v.simSpeed)
	}
	lines := []string{
		fmt.Sprintf("SIM: %s", speedStr),
		"[P] pause  [,/.] speed",
		"[R] reset  [C] copy report",
		"[H] toggle HUD",
		fmt.Sprintf("seed %d  tick %d", v.match.Seed(), v.snap.Tick),
	}

	const lineH = 12
	const charW = 6
	const padX = 5
	const padY = 4

	maxLen := 0
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	boxW := float32(maxLen*charW + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)
	bufH := float32(v.height / hudScale)
	bx := float32(4)
	by := bufH - boxH - 4

	v.hudBuf.Clear()
	vector.FillRect(v.hudBuf, bx, by, boxW, boxH, color.RGBA{R: 6, G: 10, B: 6, A: 210}, false)
	vector.StrokeRect(v.hudBuf, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)
	for i, line := range lines {
		ebitenutil.DebugPrintAt(v.hudBuf, line, int(bx)+padX, int(by)+padY+i*lineH)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(hudScale), float64(hudScale))
	screen.DrawImage(v.hudBuf, opts)
}

func (v *Viewer) Layout(_, _ int) (int, int) {
	return v.width, v.height
}
