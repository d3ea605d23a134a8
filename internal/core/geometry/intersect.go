package geometry

import "math"

// Overlaps reports whether two simple polygons share any area or touch.
// It does not assume convexity: edges are tested pairwise and, failing a
// crossing, one polygon may still sit entirely inside the other.
func Overlaps(a, b Polygon) bool {
	if a.Len() < 3 || b.Len() < 3 {
		return false
	}
	aMin, aMax := a.Bounds()
	bMin, bMax := b.Bounds()
	if aMax.X < bMin.X || bMax.X < aMin.X || aMax.Y < bMin.Y || bMax.Y < aMin.Y {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		p1, p2 := a.Edge(i)
		for j := 0; j < b.Len(); j++ {
			q1, q2 := b.Edge(j)
			if SegmentsIntersect(p1, p2, q1, q2) {
				return true
			}
		}
	}
	return b.Contains(a.vertices[0]) || a.Contains(b.vertices[0])
}

// OverlapsAny reports whether any polygon of as overlaps any polygon of bs.
func OverlapsAny(as, bs []Polygon) bool {
	for _, a := range as {
		for _, b := range bs {
			if Overlaps(a, b) {
				return true
			}
		}
	}
	return false
}

// SegmentsIntersect reports whether segments p1p2 and q1q2 intersect,
// touching endpoints included.
func SegmentsIntersect(p1, p2, q1, q2 Point) bool {
	d1 := turn(q1, q2, p1)
	d2 := turn(q1, q2, p2)
	d3 := turn(p1, p2, q1)
	d4 := turn(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(q1, q2, p1)) ||
		(d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) ||
		(d4 == 0 && onSegment(p1, p2, q2))
}

func onSegment(a, b, p Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// hitSlack widens segment ends so rays aimed exactly at a vertex are not
// lost to rounding.
const hitSlack = 1e-9

// Ray is a half-line starting at Origin along the unit vector Dir.
type Ray struct {
	Origin Point
	Dir    Point
}

// RayAt builds a ray from origin pointing at angle radians.
func RayAt(origin Point, angle float64) Ray {
	return Ray{Origin: origin, Dir: Polar(1, angle)}
}

// Point returns the point at distance t along the ray.
func (r Ray) Point(t float64) Point { return r.Origin.Add(r.Dir.Scale(t)) }

// SegmentHit returns the distance along the ray to segment ab. Segments
// parallel to the ray never report a hit.
func (r Ray) SegmentHit(a, b Point) (float64, bool) {
	e := b.Sub(a)
	denom := r.Dir.Cross(e)
	if math.Abs(denom) < Epsilon {
		return 0, false
	}
	w := a.Sub(r.Origin)
	t := w.Cross(e) / denom
	u := w.Cross(r.Dir) / denom
	if t < 0 || u < -hitSlack || u > 1+hitSlack {
		return 0, false
	}
	return t, true
}

// Exit returns the farthest boundary crossing of p along the ray. For a
// polygon that is star-shaped about the ray origin this is where the ray
// leaves it.
func (r Ray) Exit(p Polygon) (float64, bool) {
	best, found := 0.0, false
	for i := 0; i < p.Len(); i++ {
		a, b := p.Edge(i)
		if t, ok := r.SegmentHit(a, b); ok && t > best {
			best, found = t, true
		}
	}
	return best, found
}

// NearestHit returns the distance to the first obstacle edge the ray meets
// within limit. An origin inside an obstacle is blocked immediately.
func (r Ray) NearestHit(obstacles []Polygon, limit float64) float64 {
	best := limit
	for _, o := range obstacles {
		if o.Contains(r.Origin) {
			return 0
		}
		for i := 0; i < o.Len(); i++ {
			a, b := o.Edge(i)
			if t, ok := r.SegmentHit(a, b); ok && t < best {
				best = t
			}
		}
	}
	return best
}
