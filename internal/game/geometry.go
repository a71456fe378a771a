package game

import "math"

// Pitch dimensions in simulation units.
const (
	FieldWidth  = 685.0
	FieldHeight = 435.0
)

// Midfield is the centre spot.
var Midfield = Vec2{X: FieldWidth / 2, Y: FieldHeight / 2}

// Vec2 is a 2D point or displacement.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

// Len returns the magnitude of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the distance between two points.
func (v Vec2) Dist(o Vec2) float64 { return math.Hypot(o.X-v.X, o.Y-v.Y) }

// Direction returns the unit vector pointing from a to b, or the zero
// vector when the points coincide.
func Direction(a, b Vec2) Vec2 {
	d := b.Sub(a)
	l := d.Len()
	if l < 1e-9 {
		return Vec2{}
	}
	return d.Scale(1 / l)
}

// SetLength returns the segment from a toward b rescaled to length n,
// expressed as a displacement from a.
func SetLength(a, b Vec2, n float64) Vec2 {
	return Direction(a, b).Scale(n)
}

// StepToward moves a toward b by at most n units without overshooting.
func StepToward(a, b Vec2, n float64) Vec2 {
	if a.Dist(b) <= n {
		return b
	}
	return a.Add(SetLength(a, b, n))
}

// ClampLen caps the magnitude of v at max.
func (v Vec2) ClampLen(max float64) Vec2 {
	l := v.Len()
	if l <= max || l < 1e-9 {
		return v
	}
	return v.Scale(max / l)
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Clamp pulls p inside r.
func (r Rect) Clamp(p Vec2) Vec2 {
	return Vec2{
		X: math.Max(r.MinX, math.Min(r.MaxX, p.X)),
		Y: math.Max(r.MinY, math.Min(r.MaxY, p.Y)),
	}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// FieldBounds is the region the ball may occupy.
var FieldBounds = Rect{MinX: 0, MinY: 0, MaxX: FieldWidth, MaxY: FieldHeight}
