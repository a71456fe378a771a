package viewer

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/ojrac/opensimplex-go"
	"golang.org/x/image/colornames"

	"github.com/Garsondee/Match-Sim/internal/game"
)

// pitchScale is the pixel size of one simulation unit.
const pitchScale = 2

// Pitch markings in simulation units.
const (
	stripeWidth     = 45.0
	centreRadius    = 55.0
	penaltyDepth    = 100.0
	penaltyHeight   = 240.0
	goalMouthHeight = 60.0
	grassCell       = 4 // noise sample size in pixels
)

var (
	grassDark  = color.RGBA{R: 34, G: 104, B: 42, A: 255}
	grassLight = color.RGBA{R: 44, G: 124, B: 52, A: 255}
	lineColor  = color.RGBA{R: 230, G: 238, B: 230, A: 220}
	goalFlash  = colornames.Gold
	ballColor  = colornames.White
)

// teamColor returns the kit colour for t.
func teamColor(t game.Team) color.RGBA {
	if t == game.TeamA {
		return colornames.Crimson
	}
	return colornames.Royalblue
}

// keeperColor distinguishes goalkeepers from outfield players.
func keeperColor(t game.Team) color.RGBA {
	if t == game.TeamA {
		return colornames.Orange
	}
	return colornames.Lightseagreen
}

// shade nudges c's brightness by delta, clamped per channel.
func shade(c color.RGBA, delta int) color.RGBA {
	clamp := func(v int) uint8 {
		switch {
		case v < 0:
			return 0
		case v > 255:
			return 255
		}
		return uint8(v)
	}
	return color.RGBA{R: clamp(int(c.R) + delta), G: clamp(int(c.G) + delta), B: clamp(int(c.B) + delta), A: c.A}
}

// renderPitch draws the grass and markings once. Mowing stripes alternate
// along x; a low-frequency noise field breaks up the flat colour.
func renderPitch(seed int64) *ebiten.Image {
	w, h := int(game.FieldWidth*pitchScale), int(game.FieldHeight*pitchScale)
	img := ebiten.NewImage(w, h)
	noise := opensimplex.NewNormalized(seed)

	for px := 0; px < w; px += grassCell {
		stripe := int(float64(px)/pitchScale/stripeWidth) % 2
		base := grassDark
		if stripe == 1 {
			base = grassLight
		}
		for py := 0; py < h; py += grassCell {
			n := noise.Eval2(float64(px)/90, float64(py)/90)
			c := shade(base, int((n-0.5)*14))
			vector.FillRect(img, float32(px), float32(py), grassCell, grassCell, c, false)
		}
	}

	drawMarkings(img)
	return img
}

func drawMarkings(img *ebiten.Image) {
	const s = pitchScale
	w, h := float32(game.FieldWidth*s), float32(game.FieldHeight*s)
	midX, midY := float32(game.Midfield.X*s), float32(game.Midfield.Y*s)

	vector.StrokeRect(img, 1, 1, w-2, h-2, 2, lineColor, false)
	vector.StrokeLine(img, midX, 0, midX, h, 2, lineColor, false)
	vector.StrokeCircle(img, midX, midY, centreRadius*s, 2, lineColor, true)
	vector.FillCircle(img, midX, midY, 3, lineColor, true)

	pd, ph := float32(penaltyDepth*s), float32(penaltyHeight*s)
	vector.StrokeRect(img, 0, midY-ph/2, pd, ph, 2, lineColor, false)
	vector.StrokeRect(img, w-pd, midY-ph/2, pd, ph, 2, lineColor, false)

	gh := float32(goalMouthHeight * s)
	vector.FillRect(img, 0, midY-gh/2, 4, gh, colornames.White, false)
	vector.FillRect(img, w-4, midY-gh/2, 4, gh, colornames.White, false)
}
