package mouse

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/zeusync/mazesim/internal/core/geometry"
)

const (
	sensorBodySegments = 8
	viewArcSegments    = 16
)

// Sensor is a range sensor with a fixed view cone. Readings report how much
// of the cone's area is hidden behind obstacles.
type Sensor struct {
	name      string
	position  geometry.Point
	direction float64
	axis      float64
	readTime  time.Duration
	body      geometry.Polygon
	view      geometry.Polygon
}

func newSensor(d SensorDescription) (*Sensor, error) {
	if d.ReadTime < 0 {
		return nil, fmt.Errorf("negative read time %s", d.ReadTime)
	}
	if !(d.Radius > 0) {
		return nil, fmt.Errorf("radius %v must be positive", d.Radius)
	}
	pos := geometry.Pt(d.X, d.Y)
	if !pos.IsFinite() {
		return nil, fmt.Errorf("%w: mount (%v, %v)", geometry.ErrNonFiniteVertex, d.X, d.Y)
	}
	dir := d.Direction * math.Pi / 180

	var (
		view geometry.Polygon
		axis float64
		err  error
	)
	if len(d.View) > 0 {
		view, axis, err = explicitView(pos, d.View)
	} else {
		view, err = arcView(pos, dir, d.Range, d.HalfWidth*math.Pi/180)
		axis = dir
	}
	if err != nil {
		return nil, err
	}

	return &Sensor{
		name:      d.Name,
		position:  pos,
		direction: dir,
		axis:      axis,
		readTime:  d.ReadTime,
		body:      geometry.RegularPolygon(pos, d.Radius, sensorBodySegments),
		view:      view,
	}, nil
}

func arcView(apex geometry.Point, dir, length, halfWidth float64) (geometry.Polygon, error) {
	if !(length > 0) {
		return geometry.Polygon{}, fmt.Errorf("range %v must be positive", length)
	}
	if !(halfWidth > 0) || halfWidth >= math.Pi {
		return geometry.Polygon{}, fmt.Errorf("half width %v rad must be in (0, pi)", halfWidth)
	}
	pts := []geometry.Point{apex}
	for i := 0; i <= viewArcSegments; i++ {
		a := dir - halfWidth + 2*halfWidth*float64(i)/viewArcSegments
		pts = append(pts, apex.Add(geometry.Polar(length, a)))
	}
	view, err := geometry.NewPolygon(pts...)
	if err != nil {
		return geometry.Polygon{}, fmt.Errorf("view cone: %w", err)
	}
	return view, nil
}

// explicitView validates an outline that starts at the mount point and
// returns it with its axis, the mean bearing from the apex to the other
// vertices. Every vertex must lie less than half a turn from the axis.
func explicitView(apex geometry.Point, outline []geometry.Point) (geometry.Polygon, float64, error) {
	view, err := geometry.NewPolygon(outline...)
	if err != nil {
		return geometry.Polygon{}, 0, fmt.Errorf("view cone: %w", err)
	}
	if view.Vertex(0).Distance(apex) > 1e-9 {
		return geometry.Polygon{}, 0, fmt.Errorf("view cone must start at the mount point, starts at (%v, %v)",
			view.Vertex(0).X, view.Vertex(0).Y)
	}
	var sum geometry.Point
	for i := 1; i < view.Len(); i++ {
		v := view.Vertex(i).Sub(apex)
		if v.Length() <= geometry.Epsilon {
			return geometry.Polygon{}, 0, fmt.Errorf("view cone vertex %d coincides with the mount point", i)
		}
		sum = sum.Add(v.Scale(1 / v.Length()))
	}
	if sum.Length() <= 1e-9 {
		return geometry.Polygon{}, 0, fmt.Errorf("view cone surrounds the mount point")
	}
	axis := sum.Angle()
	for i := 1; i < view.Len(); i++ {
		if rel := geometry.NormalizeAngle(view.Vertex(i).Sub(apex).Angle() - axis); math.Abs(rel) >= math.Pi-1e-9 {
			return geometry.Polygon{}, 0, fmt.Errorf("view cone vertex %d lies behind the cone axis", i)
		}
	}
	return view, axis, nil
}

func (s *Sensor) Name() string               { return s.name }
func (s *Sensor) ReadTime() time.Duration    { return s.readTime }
func (s *Sensor) Position() geometry.Point   { return s.position }
func (s *Sensor) Direction() float64         { return s.direction }
func (s *Sensor) Axis() float64              { return s.axis }
func (s *Sensor) ViewArea() float64          { return s.view.Area() }
func (s *Sensor) Body() geometry.Polygon     { return s.body }
func (s *Sensor) FullView() geometry.Polygon { return s.view }

// currentView casts rays from the apex of full (a world-frame copy of the
// view cone) and cuts each at the nearest obstacle. heading is the world
// bearing of the cone axis. Rays go through every
// bearing of the cone outline plus rays evenly spaced bearings, so an
// unobstructed fan reproduces the outline exactly.
func (s *Sensor) currentView(full geometry.Polygon, heading float64, env Environment, rays int) []geometry.Point {
	apex := full.Vertex(0)

	bearings := make([]float64, 0, full.Len()+rays+1)
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 1; i < full.Len(); i++ {
		b := geometry.NormalizeAngle(full.Vertex(i).Sub(apex).Angle() - heading)
		lo, hi = math.Min(lo, b), math.Max(hi, b)
		bearings = append(bearings, b)
	}
	for k := 0; k <= rays; k++ {
		bearings = append(bearings, lo+(hi-lo)*float64(k)/float64(rays))
	}
	sort.Float64s(bearings)

	boxLo, boxHi := full.Bounds()
	obstacles := env.ObstaclesNear(boxLo, boxHi)

	fan := make([]geometry.Point, 0, len(bearings)+1)
	fan = append(fan, apex)
	last := math.Inf(-1)
	for _, b := range bearings {
		if b-last < 1e-12 {
			continue
		}
		last = b
		ray := geometry.RayAt(apex, heading+b)
		far, ok := ray.Exit(full)
		if !ok {
			continue
		}
		fan = append(fan, ray.Point(ray.NearestHit(obstacles, far)))
	}
	return fan
}
