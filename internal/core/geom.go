// Package core provides fundamental types and utilities for the castle game.
// It contains no external dependencies (especially no Bubble Tea) to keep game
// logic pure and testable.
package core

import "math"

// Vec2 is a 2D vector in world units. Y grows downward, matching the screen.
type Vec2 struct {
	X, Y float64
}

// V returns a Vec2.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v multiplied by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Manhattan returns |x| + |y|, the cheap speed measure used for stability.
func (v Vec2) Manhattan() float64 {
	return math.Abs(v.X) + math.Abs(v.Y)
}

// Rect represents an integer cell rectangle used for drawing.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Box is an axis-aligned box described by its center and half extents.
type Box struct {
	Center Vec2
	HalfW  float64
	HalfH  float64
}

// Left returns the x-coordinate of the left edge.
func (b Box) Left() float64 { return b.Center.X - b.HalfW }

// Right returns the x-coordinate of the right edge.
func (b Box) Right() float64 { return b.Center.X + b.HalfW }

// Top returns the y-coordinate of the top edge.
func (b Box) Top() float64 { return b.Center.Y - b.HalfH }

// Bottom returns the y-coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Center.Y + b.HalfH }

// OverlapX returns the horizontal overlap length with another box (0 if none).
func (b Box) OverlapX(o Box) float64 {
	lo := math.Max(b.Left(), o.Left())
	hi := math.Min(b.Right(), o.Right())
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// Cells converts the box to the screen cells it covers.
// Edges are rounded to the nearest cell so a box never renders empty.
func (b Box) Cells() Rect {
	x0 := int(math.Round(b.Left()))
	x1 := int(math.Round(b.Right()))
	y0 := int(math.Round(b.Top()))
	y1 := int(math.Round(b.Bottom()))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
