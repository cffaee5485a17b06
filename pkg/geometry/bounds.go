package geometry

import "math"

// Bounds is an axis-aligned rectangle in millimeters. During a parse it is
// only ever widened; the ±Inf sentinels mark a box that has seen no
// conductor yet.
type Bounds struct {
	MinX float64
	MaxX float64
	MinY float64
	MaxY float64
}

// Default span used when a parse yields no finite bounds.
const DefaultBoundsSize = 20.0 // mm

// NewBounds returns an empty bounds with infinity sentinels.
func NewBounds() Bounds {
	return Bounds{
		MinX: math.Inf(1),
		MaxX: math.Inf(-1),
		MinY: math.Inf(1),
		MaxY: math.Inf(-1),
	}
}

// DefaultBounds returns the fixed 20x20 mm fallback square.
func DefaultBounds() Bounds {
	return Bounds{MinX: 0, MaxX: DefaultBoundsSize, MinY: 0, MaxY: DefaultBoundsSize}
}

// IsEmpty reports whether the bounds never enclosed a point.
func (b Bounds) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Expand widens the bounds to include a position.
func (b *Bounds) Expand(pos Position) {
	if pos.X < b.MinX {
		b.MinX = pos.X
	}
	if pos.X > b.MaxX {
		b.MaxX = pos.X
	}
	if pos.Y < b.MinY {
		b.MinY = pos.Y
	}
	if pos.Y > b.MaxY {
		b.MaxY = pos.Y
	}
}

// ExpandMargin widens the bounds to include a position plus a margin on
// every side (half the conductor width or diameter).
func (b *Bounds) ExpandMargin(pos Position, margin float64) {
	if margin < 0 {
		margin = 0
	}
	b.Expand(Position{X: pos.X - margin, Y: pos.Y - margin})
	b.Expand(Position{X: pos.X + margin, Y: pos.Y + margin})
}

// ExpandBounds widens to include another bounds.
func (b *Bounds) ExpandBounds(other Bounds) {
	if other.IsEmpty() {
		return
	}
	b.Expand(Position{X: other.MinX, Y: other.MinY})
	b.Expand(Position{X: other.MaxX, Y: other.MaxY})
}

// Contains reports whether the bounds fully enclose another bounds.
func (b Bounds) Contains(other Bounds) bool {
	if other.IsEmpty() {
		return true
	}
	return other.MinX >= b.MinX && other.MaxX <= b.MaxX &&
		other.MinY >= b.MinY && other.MaxY <= b.MaxY
}

// Width returns the X span.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the Y span.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() Position {
	return Position{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}
