// Package geometry holds the pixel-space distance functions used for
// hit-testing chart drawings.
package geometry

import "math"

// HitThreshold is the maximum on-screen distance, in pixels, at which a
// pointer counts as touching a drawing.
const HitThreshold = 8.0

// Point is a position in pixel space. Y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Dist returns the euclidean distance between p and q.
func Dist(p, q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// IsHit reports whether d is within HitThreshold.
func IsHit(d float64) bool {
	return d <= HitThreshold
}

// projection returns the parameter t of the projection of p onto the line
// through a and b, with ok=false when a and b coincide.
func projection(p, a, b Point) (t float64, ok bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return 0, false
	}
	return ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq, true
}

func lerp(a, b Point, t float64) Point {
	return Point{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
}

// PointToSegmentDist returns the distance from p to the closest point of the
// segment [a,b]. The endpoints are put in a fixed order first so that
// swapping a and b yields the identical result.
func PointToSegmentDist(p, a, b Point) float64 {
	if b.X < a.X || (b.X == a.X && b.Y < a.Y) {
		a, b = b, a
	}
	t, ok := projection(p, a, b)
	if !ok {
		return Dist(p, a)
	}
	t = math.Max(0, math.Min(1, t))
	return Dist(p, lerp(a, b, t))
}

// PointToLineDist returns the distance from p to the infinite line through a
// and b.
func PointToLineDist(p, a, b Point) float64 {
	t, ok := projection(p, a, b)
	if !ok {
		return Dist(p, a)
	}
	return Dist(p, lerp(a, b, t))
}

// PointToRayDist returns the distance from p to the ray that starts at a and
// passes through b. Points behind the origin measure to a itself.
func PointToRayDist(p, a, b Point) float64 {
	t, ok := projection(p, a, b)
	if !ok || t < 0 {
		return Dist(p, a)
	}
	return Dist(p, lerp(a, b, t))
}

// ExtendRay returns the point where the ray from a through b leaves the
// rectangle [0,w]x[0,h]. When a lies outside the rectangle and the ray never
// reaches its far side, or a and b coincide, b is returned unchanged.
func ExtendRay(a, b Point, w, h float64) Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return b
	}
	t := math.Inf(1)
	if dx > 0 {
		t = math.Min(t, (w-a.X)/dx)
	} else if dx < 0 {
		t = math.Min(t, -a.X/dx)
	}
	if dy > 0 {
		t = math.Min(t, (h-a.Y)/dy)
	} else if dy < 0 {
		t = math.Min(t, -a.Y/dy)
	}
	if math.IsInf(t, 1) || t < 0 {
		return b
	}
	end := Point{X: a.X + t*dx, Y: a.Y + t*dy}
	// Clamp float drift so the endpoint sits exactly on the boundary.
	end.X = math.Max(0, math.Min(w, end.X))
	end.Y = math.Max(0, math.Min(h, end.Y))
	return end
}
