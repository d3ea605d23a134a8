package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func requirePolygonsEqual(t *testing.T, want, got Polygon) {
	t.Helper()
	require.Equal(t, want.Len(), got.Len())
	for i := 0; i < want.Len(); i++ {
		require.InDelta(t, want.Vertex(i).X, got.Vertex(i).X, tolerance, "vertex %d x", i)
		require.InDelta(t, want.Vertex(i).Y, got.Vertex(i).Y, tolerance, "vertex %d y", i)
	}
}

func TestNewPolygonRejectsDegenerateInput(t *testing.T) {
	t.Run("too few vertices", func(t *testing.T) {
		_, err := NewPolygon(Pt(0, 0), Pt(1, 0))
		require.ErrorIs(t, err, ErrDegeneratePolygon)
	})
	t.Run("collinear", func(t *testing.T) {
		_, err := NewPolygon(Pt(0, 0), Pt(1, 1), Pt(2, 2))
		require.ErrorIs(t, err, ErrDegeneratePolygon)
	})
	t.Run("duplicate vertices", func(t *testing.T) {
		_, err := NewPolygon(Pt(1, 1), Pt(1, 1), Pt(1, 1), Pt(1, 1))
		require.ErrorIs(t, err, ErrDegeneratePolygon)
	})
	t.Run("nan", func(t *testing.T) {
		_, err := NewPolygon(Pt(0, 0), Pt(math.NaN(), 0), Pt(0, 1))
		require.ErrorIs(t, err, ErrNonFiniteVertex)
	})
}

func TestPolygonIsImmutable(t *testing.T) {
	p := MustPolygon(Pt(0, 0), Pt(1, 0), Pt(0, 1))
	vs := p.Vertices()
	vs[0] = Pt(5, 5)
	require.Equal(t, Pt(0, 0), p.Vertex(0))

	_ = p.Translate(Pt(3, 3))
	require.Equal(t, Pt(0, 0), p.Vertex(0))
}

func TestPolygonArea(t *testing.T) {
	square := MustPolygon(Pt(0, 0), Pt(2, 0), Pt(2, 2), Pt(0, 2))
	require.InDelta(t, 4.0, square.Area(), tolerance)

	clockwise := MustPolygon(Pt(0, 0), Pt(0, 2), Pt(2, 2), Pt(2, 0))
	require.InDelta(t, 4.0, clockwise.Area(), tolerance)

	require.Zero(t, AreaOf([]Point{Pt(0, 0), Pt(1, 1)}))
}

func TestRotateRoundTrip(t *testing.T) {
	p := MustPolygon(Pt(0.1, 0.2), Pt(0.5, -0.3), Pt(0.9, 0.7), Pt(0.2, 0.8))
	pivot := Pt(0.33, -1.2)
	for _, theta := range []float64{0, 0.1, math.Pi / 3, math.Pi, -2.5, 7.0} {
		back := p.RotateAroundPoint(theta, pivot).RotateAroundPoint(-theta, pivot)
		requirePolygonsEqual(t, p, back)
	}
}

func TestRotatePreservesArea(t *testing.T) {
	p := MustPolygon(Pt(0, 0), Pt(3, 0), Pt(3, 1), Pt(0, 1))
	require.InDelta(t, p.Area(), p.RotateAroundPoint(1.234, Pt(7, -2)).Area(), tolerance)
}

func TestRotateQuarterTurn(t *testing.T) {
	p := MustPolygon(Pt(1, 0), Pt(2, 0), Pt(1, 1))
	got := p.RotateAroundPoint(math.Pi/2, Pt(0, 0))
	requirePolygonsEqual(t, MustPolygon(Pt(0, 1), Pt(0, 2), Pt(-1, 1)), got)
}

func TestTranslateComposition(t *testing.T) {
	p := MustPolygon(Pt(0, 0), Pt(1, 0), Pt(1, 1), Pt(0, 1))
	v1, v2 := Pt(0.25, -3), Pt(-1.5, 0.75)
	requirePolygonsEqual(t, p.Translate(v1.Add(v2)), p.Translate(v1).Translate(v2))
}

func TestConvexHullContainsAllInputs(t *testing.T) {
	a := MustPolygon(Pt(0, 0), Pt(1, 0), Pt(0.5, 0.2))
	b := MustPolygon(Pt(0.2, 0.5), Pt(0.8, 0.5), Pt(0.5, 2))
	c := MustPolygon(Pt(-1, 0.3), Pt(-0.5, 0.1), Pt(-0.7, 0.9))

	hull, err := ConvexHull(a, b, c)
	require.NoError(t, err)

	for _, p := range []Polygon{a, b, c} {
		for _, v := range p.Vertices() {
			require.True(t, hull.Contains(v) || onBoundary(hull, v), "vertex %+v outside hull", v)
		}
	}
	// counter-clockwise, convex
	for i := 0; i < hull.Len(); i++ {
		o, a := hull.Edge(i)
		_, b := hull.Edge(i + 1)
		require.Greater(t, turn(o, a, b), 0.0)
	}
}

func TestConvexHullDeterministicOrder(t *testing.T) {
	sq1 := MustPolygon(Pt(1, 1), Pt(0, 1), Pt(0, 0), Pt(1, 0))
	sq2 := MustPolygon(Pt(0, 0), Pt(1, 0), Pt(1, 1), Pt(0, 1))
	h1, err := ConvexHull(sq1)
	require.NoError(t, err)
	h2, err := ConvexHull(sq2)
	require.NoError(t, err)
	require.Equal(t, h1.Vertices(), h2.Vertices())
	require.Equal(t, Pt(0, 0), h1.Vertex(0))
}

func TestConvexHullDropsCollinearAndDuplicates(t *testing.T) {
	p := fromPoints([]Point{Pt(0, 0), Pt(1, 0), Pt(2, 0), Pt(2, 0), Pt(2, 2), Pt(0, 2), Pt(0, 1)})
	hull, err := ConvexHull(p)
	require.NoError(t, err)
	require.Equal(t, 4, hull.Len())
	require.InDelta(t, 4.0, hull.Area(), tolerance)
}

func TestConvexHullDegenerate(t *testing.T) {
	line := fromPoints([]Point{Pt(0, 0), Pt(1, 1), Pt(2, 2)})
	_, err := ConvexHull(line)
	require.ErrorIs(t, err, ErrDegeneratePolygon)

	_, err = ConvexHull()
	require.ErrorIs(t, err, ErrDegeneratePolygon)
}

func TestOverlaps(t *testing.T) {
	a := Rect(Pt(0, 0), Pt(1, 1))
	t.Run("crossing", func(t *testing.T) {
		require.True(t, Overlaps(a, Rect(Pt(0.5, 0.5), Pt(2, 2))))
	})
	t.Run("contained", func(t *testing.T) {
		inner := Rect(Pt(0.25, 0.25), Pt(0.75, 0.75))
		require.True(t, Overlaps(a, inner))
		require.True(t, Overlaps(inner, a))
	})
	t.Run("disjoint", func(t *testing.T) {
		require.False(t, Overlaps(a, Rect(Pt(1.5, 0), Pt(2, 1))))
	})
	t.Run("non convex notch", func(t *testing.T) {
		u := MustPolygon(Pt(0, 0), Pt(3, 0), Pt(3, 3), Pt(2, 3), Pt(2, 1), Pt(1, 1), Pt(1, 3), Pt(0, 3))
		require.False(t, Overlaps(u, Rect(Pt(1.2, 1.5), Pt(1.8, 2.5))))
		require.True(t, Overlaps(u, Rect(Pt(1.2, 0.5), Pt(1.8, 2.5))))
	})
}

func TestRayHits(t *testing.T) {
	wall := Rect(Pt(2, -1), Pt(3, 1))
	r := RayAt(Pt(0, 0), 0)

	require.InDelta(t, 2.0, r.NearestHit([]Polygon{wall}, 10), tolerance)
	require.InDelta(t, 1.5, r.NearestHit([]Polygon{wall}, 1.5), tolerance)

	exit, ok := r.Exit(wall)
	require.True(t, ok)
	require.InDelta(t, 3.0, exit, tolerance)

	up := RayAt(Pt(0, 0), math.Pi/2)
	require.InDelta(t, 10.0, up.NearestHit([]Polygon{wall}, 10), tolerance)

	inside := RayAt(Pt(2.5, 0), 0)
	require.Zero(t, inside.NearestHit([]Polygon{wall}, 10))
}

func TestNormalizeAngle(t *testing.T) {
	require.InDelta(t, 0.0, NormalizeAngle(2*math.Pi), tolerance)
	require.InDelta(t, math.Pi, NormalizeAngle(-math.Pi), tolerance)
	require.InDelta(t, -math.Pi/2, NormalizeAngle(3*math.Pi/2), tolerance)
}

func onBoundary(p Polygon, v Point) bool {
	for i := 0; i < p.Len(); i++ {
		a, b := p.Edge(i)
		if math.Abs(turn(a, b, v)) < tolerance && onSegment(a, b, v) {
			return true
		}
	}
	return false
}
