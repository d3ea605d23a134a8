package geometry

import (
	"fmt"
	"sort"
)

// ConvexHull returns the smallest convex polygon enclosing every vertex of
// the given polygons, using Andrew's monotone chain. Duplicate and collinear
// points are dropped. The result is counter-clockwise and starts at the
// vertex with the lowest x (then lowest y), so equal inputs always produce
// equal outputs.
func ConvexHull(polygons ...Polygon) (Polygon, error) {
	var pts []Point
	for _, p := range polygons {
		pts = append(pts, p.vertices...)
	}
	for i, v := range pts {
		if !v.IsFinite() {
			return Polygon{}, fmt.Errorf("%w: hull input %d is (%v, %v)", ErrNonFiniteVertex, i, v.X, v.Y)
		}
	}

	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	uniq := pts[:0]
	for i, v := range pts {
		if i == 0 || v != uniq[len(uniq)-1] {
			uniq = append(uniq, v)
		}
	}
	if len(uniq) < 3 {
		return Polygon{}, fmt.Errorf("%w: hull of %d distinct points", ErrDegeneratePolygon, len(uniq))
	}

	hull := make([]Point, 0, 2*len(uniq))
	// lower chain
	for _, v := range uniq {
		for len(hull) >= 2 && turn(hull[len(hull)-2], hull[len(hull)-1], v) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, v)
	}
	// upper chain
	lower := len(hull) + 1
	for i := len(uniq) - 2; i >= 0; i-- {
		v := uniq[i]
		for len(hull) >= lower && turn(hull[len(hull)-2], hull[len(hull)-1], v) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, v)
	}
	hull = hull[:len(hull)-1]

	if len(hull) < 3 || AreaOf(hull) <= Epsilon {
		return Polygon{}, fmt.Errorf("%w: all hull points are collinear", ErrDegeneratePolygon)
	}
	return fromPoints(hull), nil
}

// turn is positive for a counter-clockwise turn o->a->b.
func turn(o, a, b Point) float64 {
	return a.Sub(o).Cross(b.Sub(o))
}
