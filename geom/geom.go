package geom

import "math"

// Orientation is the axis a gesture travels along
type Orientation int

const (
	None Orientation = iota
	Horizontal
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "none"
	}
}

// Point is a pointer location in surface coordinates
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned box, Left/Top inclusive
type Rect struct {
	Left, Top, Right, Bottom float64
}

// RectXYWH builds a rect from origin and size
func RectXYWH(x, y, w, h float64) Rect {
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Contains reports whether p lies inside or on the edge of r
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Inflate grows r by d on every side
func (r Rect) Inflate(d float64) Rect {
	return Rect{Left: r.Left - d, Top: r.Top - d, Right: r.Right + d, Bottom: r.Bottom + d}
}

// Union returns the bounding box of r and o
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Left:   math.Min(r.Left, o.Left),
		Top:    math.Min(r.Top, o.Top),
		Right:  math.Max(r.Right, o.Right),
		Bottom: math.Max(r.Bottom, o.Bottom),
	}
}

// Center returns the geometric center of r
func Center(r Rect) Point {
	return Point{X: r.Left + r.Width()/2, Y: r.Top + r.Height()/2}
}

func Clamp(value, min, max float64) float64 {
	return math.Max(min, math.Min(max, value))
}

// ToMidiValue maps a ratio in [0,1] to 1..127. Zero is never returned.
func ToMidiValue(ratio float64) uint8 {
	return uint8(math.Max(1, math.Round(ratio*127)))
}

// Overflow describes how far a point has left a key rect
type Overflow struct {
	Direction Orientation
	Ratio     float64 // 0..1, 1 at the key edge, 0 once inset pixels away
	Outside   bool
}

// PitchBendRatio checks one axis at a time in the order left, right, top,
// bottom and reports the overflow past the first edge that is crossed.
func PitchBendRatio(p Point, key Rect, inset float64) Overflow {
	var o Overflow
	switch {
	case p.X < key.Left:
		o = Overflow{Direction: Horizontal, Ratio: 1 + (p.X-key.Left)/inset, Outside: true}
	case p.X > key.Right:
		o = Overflow{Direction: Horizontal, Ratio: 1 + (key.Right-p.X)/inset, Outside: true}
	case p.Y < key.Top:
		o = Overflow{Direction: Vertical, Ratio: 1 + (p.Y-key.Top)/inset, Outside: true}
	case p.Y > key.Bottom:
		o = Overflow{Direction: Vertical, Ratio: 1 + (key.Bottom-p.Y)/inset, Outside: true}
	}
	o.Ratio = Clamp(o.Ratio, 0, 1)
	return o
}

// HitOrientation classifies two rects by the axis with the larger
// center-to-center distance. Ties are vertical.
func HitOrientation(a, b Rect) Orientation {
	c1, c2 := Center(a), Center(b)
	dx := math.Abs(c1.X - c2.X)
	dy := math.Abs(c1.Y - c2.Y)
	if dx > dy {
		return Horizontal
	}
	return Vertical
}

// VelocityFromY maps the vertical position inside key to 1..127, top is loudest
func VelocityFromY(p Point, key Rect) uint8 {
	if key.Height() <= 0 {
		return 127
	}
	y := p.Y - key.Top
	return ToMidiValue(1 - Clamp(y/key.Height(), 0, 1))
}

// InitialChordExpression maps the horizontal position across the union of
// two keys to 0..127
func InitialChordExpression(p Point, a, b Rect) uint8 {
	u := a.Union(b)
	if u.Width() <= 0 {
		return 64
	}
	ratio := Clamp((p.X-u.Left)/u.Width(), 0, 1)
	return uint8(math.Round(ratio * 127))
}
