// Package geom provides the small 2D helpers shared by the game engines.
package geom

import "math"

// Point is a 2D position in pixel or normalized space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for constructing a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceToSegment returns the minimum distance from p to the closed segment a-b.
// The projection parameter is clamped to [0, 1], so points beyond either end
// measure to that endpoint. A degenerate segment (a == b) reduces to Distance(p, a).
func DistanceToSegment(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	if dx == 0 && dy == 0 {
		return Distance(p, a)
	}

	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / (dx*dx + dy*dy)
	t = Clamp(t, 0, 1)

	projection := Point{X: a.X + t*dx, Y: a.Y + t*dy}
	return Distance(p, projection)
}

// Lerp moves from toward to by fraction t. t=0 returns from, t=1 returns to.
func Lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
