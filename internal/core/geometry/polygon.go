package geometry

import (
	"encoding/json"
	"fmt"
	"math"
)

// Polygon is an immutable closed polygon. Vertices are kept in the order
// they were given; the closing edge from the last vertex back to the first
// is implicit.
type Polygon struct {
	vertices []Point
}

// NewPolygon validates the vertices and builds a polygon. At least three
// finite vertices enclosing a non-zero area are required.
func NewPolygon(vertices ...Point) (Polygon, error) {
	if len(vertices) < 3 {
		return Polygon{}, fmt.Errorf("%w: %d vertices, need at least 3", ErrDegeneratePolygon, len(vertices))
	}
	for i, v := range vertices {
		if !v.IsFinite() {
			return Polygon{}, fmt.Errorf("%w: vertex %d is (%v, %v)", ErrNonFiniteVertex, i, v.X, v.Y)
		}
	}
	if math.Abs(signedArea(vertices)) <= Epsilon {
		return Polygon{}, fmt.Errorf("%w: zero area", ErrDegeneratePolygon)
	}
	return fromPoints(vertices), nil
}

// MustPolygon is NewPolygon for literals known to be valid; it panics otherwise.
func MustPolygon(vertices ...Point) Polygon {
	p, err := NewPolygon(vertices...)
	if err != nil {
		panic(err)
	}
	return p
}

// Rect returns the axis-aligned rectangle spanning min to max.
func Rect(min, max Point) Polygon {
	return fromPoints([]Point{min, {max.X, min.Y}, max, {min.X, max.Y}})
}

// RegularPolygon approximates a circle of the given radius with n vertices.
func RegularPolygon(center Point, radius float64, n int) Polygon {
	if n < 3 {
		n = 3
	}
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = center.Add(Polar(radius, 2*math.Pi*float64(i)/float64(n)))
	}
	return fromPoints(pts)
}

func fromPoints(pts []Point) Polygon {
	cp := make([]Point, len(pts))
	copy(cp, pts)
	return Polygon{vertices: cp}
}

// Vertices returns a copy of the vertex list.
func (p Polygon) Vertices() []Point {
	out := make([]Point, len(p.vertices))
	copy(out, p.vertices)
	return out
}

// Vertex returns the i-th vertex.
func (p Polygon) Vertex(i int) Point { return p.vertices[i] }

func (p Polygon) Len() int { return len(p.vertices) }

// IsEmpty reports whether the polygon is the zero value.
func (p Polygon) IsEmpty() bool { return len(p.vertices) == 0 }

// Edge returns the i-th edge, wrapping around.
func (p Polygon) Edge(i int) (Point, Point) {
	n := len(p.vertices)
	return p.vertices[i%n], p.vertices[(i+1)%n]
}

// Translate shifts every vertex by v.
func (p Polygon) Translate(v Point) Polygon {
	out := make([]Point, len(p.vertices))
	for i, q := range p.vertices {
		out[i] = q.Add(v)
	}
	return Polygon{vertices: out}
}

// RotateAroundPoint rotates every vertex counter-clockwise by angle radians about pivot.
func (p Polygon) RotateAroundPoint(angle float64, pivot Point) Polygon {
	out := make([]Point, len(p.vertices))
	for i, q := range p.vertices {
		out[i] = q.RotateAround(angle, pivot)
	}
	return Polygon{vertices: out}
}

// Area returns the unsigned area using the shoelace formula.
func (p Polygon) Area() float64 {
	return math.Abs(signedArea(p.vertices))
}

// Bounds returns the axis-aligned bounding box as (min, max).
func (p Polygon) Bounds() (Point, Point) {
	if len(p.vertices) == 0 {
		return Point{}, Point{}
	}
	lo, hi := p.vertices[0], p.vertices[0]
	for _, v := range p.vertices[1:] {
		lo.X = math.Min(lo.X, v.X)
		lo.Y = math.Min(lo.Y, v.Y)
		hi.X = math.Max(hi.X, v.X)
		hi.Y = math.Max(hi.Y, v.Y)
	}
	return lo, hi
}

// Contains reports whether pt lies inside the polygon (even-odd rule).
// Points exactly on the boundary may go either way.
func (p Polygon) Contains(pt Point) bool {
	n := len(p.vertices)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi, vj := p.vertices[i], p.vertices[j]
		if (vi.Y > pt.Y) != (vj.Y > pt.Y) &&
			pt.X < (vj.X-vi.X)*(pt.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// AreaOf returns the unsigned shoelace area of an arbitrary vertex list,
// including degenerate ones; fewer than three points have zero area.
func AreaOf(pts []Point) float64 {
	return math.Abs(signedArea(pts))
}

func signedArea(pts []Point) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// MarshalJSON encodes the polygon as its vertex list.
func (p Polygon) MarshalJSON() ([]byte, error) {
	if p.vertices == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.vertices)
}
