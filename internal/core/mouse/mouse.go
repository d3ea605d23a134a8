package mouse

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/zeusync/mazesim/internal/core/geometry"
)

// axleOffset is the bearing of "forward" in the mouse frame: the axle runs
// along x, so the mouse drives along +y when its rotation is zero.
const axleOffset = math.Pi / 2

// Environment supplies the obstacles sensors can see. *maze.Maze satisfies it.
type Environment interface {
	ObstaclesNear(lo, hi geometry.Point) []geometry.Polygon
}

type openSpace struct{}

func (openSpace) ObstaclesNear(_, _ geometry.Point) []geometry.Polygon { return nil }

// Pose is the rigid transform of a mouse relative to its starting placement.
type Pose struct {
	Translation geometry.Point `json:"translation"`
	Rotation    float64        `json:"rotation"`
}

// Mouse is a differential-drive robot. Its shape is fixed at construction;
// Update moves it and SetWheelSpeeds steers it, typically from different
// goroutines.
type Mouse struct {
	env Environment

	initialTranslation geometry.Point
	body               geometry.Polygon
	left, right        Wheel
	base               float64
	sensors            map[string]*Sensor
	sensorNames        []string

	silhouette geometry.Polygon
	parts      []geometry.Polygon
	shape      CollisionShape
	rays       int
	maxSpeed   float64

	drive Drive
	pose  atomic.Pointer[Pose]
}

// New builds a mouse from its description. env may be nil for a mouse in
// open space.
func New(env Environment, d Description, opts ...Option) (*Mouse, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if env == nil {
		env = openSpace{}
	}

	body, err := geometry.NewPolygon(d.Body...)
	if err != nil {
		return nil, fmt.Errorf("%w: body: %w", ErrInvalidDescription, err)
	}
	left, err := newWheel(d.Wheels.Left)
	if err != nil {
		return nil, fmt.Errorf("%w: left wheel: %w", ErrInvalidDescription, err)
	}
	right, err := newWheel(d.Wheels.Right)
	if err != nil {
		return nil, fmt.Errorf("%w: right wheel: %w", ErrInvalidDescription, err)
	}
	if left.position.Y != right.position.Y {
		return nil, fmt.Errorf("%w: %w: left wheel at y=%v, right wheel at y=%v",
			ErrInvalidDescription, ErrAsymmetricAxle, left.position.Y, right.position.Y)
	}
	base := right.position.X - left.position.X
	if !(base > 0) {
		return nil, fmt.Errorf("%w: %w: right wheel (x=%v) must lie right of the left wheel (x=%v)",
			ErrInvalidDescription, ErrAsymmetricAxle, right.position.X, left.position.X)
	}
	if d.MaxAngularVelocity < 0 {
		return nil, fmt.Errorf("%w: negative max angular velocity %v", ErrInvalidDescription, d.MaxAngularVelocity)
	}

	sensors := make(map[string]*Sensor, len(d.Sensors))
	names := make([]string, 0, len(d.Sensors))
	for i, sd := range d.Sensors {
		if sd.Name == "" {
			return nil, fmt.Errorf("%w: sensor %d has no name", ErrInvalidDescription, i)
		}
		if _, dup := sensors[sd.Name]; dup {
			return nil, fmt.Errorf("%w: %w: %q", ErrInvalidDescription, ErrDuplicateSensor, sd.Name)
		}
		s, err := newSensor(sd)
		if err != nil {
			return nil, fmt.Errorf("%w: sensor %q: %w", ErrInvalidDescription, sd.Name, err)
		}
		sensors[sd.Name] = s
		names = append(names, sd.Name)
	}
	sort.Strings(names)

	parts := []geometry.Polygon{body, left.polygon, right.polygon}
	for _, name := range names {
		parts = append(parts, sensors[name].body)
	}
	silhouette, err := geometry.ConvexHull(parts...)
	if err != nil {
		return nil, fmt.Errorf("%w: silhouette: %w", ErrInvalidDescription, err)
	}

	m := &Mouse{
		env:                env,
		initialTranslation: left.position.Add(right.position).Scale(0.5),
		body:               body,
		left:               left,
		right:              right,
		base:               base,
		sensors:            sensors,
		sensorNames:        names,
		silhouette:         silhouette,
		parts:              parts,
		shape:              o.shape,
		rays:               o.rays,
		maxSpeed:           d.MaxAngularVelocity,
	}
	m.pose.Store(&Pose{Translation: m.initialTranslation})
	return m, nil
}

// Pose returns the most recently integrated pose.
func (m *Mouse) Pose() Pose { return *m.pose.Load() }

// InitialTranslation is the axle midpoint at the start of the run.
func (m *Mouse) InitialTranslation() geometry.Point { return m.initialTranslation }

// Base is the distance between the two wheel mounts.
func (m *Mouse) Base() float64 { return m.base }

// Wheels returns the fixed geometry of the left and right wheel.
func (m *Mouse) Wheels() (left, right Wheel) { return m.left, m.right }

// SensorNames lists the sensors in sorted order, the order every
// per-sensor accessor uses.
func (m *Mouse) SensorNames() []string {
	out := make([]string, len(m.sensorNames))
	copy(out, m.sensorNames)
	return out
}

// WheelSpeeds returns the last commanded wheel pair.
func (m *Mouse) WheelSpeeds() WheelSpeeds { return m.drive.Get() }

func (m *Mouse) transform(p geometry.Polygon, pose Pose) geometry.Polygon {
	return p.Translate(pose.Translation.Sub(m.initialTranslation)).
		RotateAroundPoint(pose.Rotation, pose.Translation)
}

func (m *Mouse) BodyPolygon() geometry.Polygon {
	return m.transform(m.body, m.Pose())
}

// WheelPolygons returns the left and right wheel, in that order.
func (m *Mouse) WheelPolygons() []geometry.Polygon {
	pose := m.Pose()
	return []geometry.Polygon{m.transform(m.left.polygon, pose), m.transform(m.right.polygon, pose)}
}

func (m *Mouse) SensorPolygons() []geometry.Polygon {
	pose := m.Pose()
	out := make([]geometry.Polygon, 0, len(m.sensorNames))
	for _, name := range m.sensorNames {
		out = append(out, m.transform(m.sensors[name].body, pose))
	}
	return out
}

// FullViewPolygons returns each sensor's unobstructed view cone.
func (m *Mouse) FullViewPolygons() []geometry.Polygon {
	pose := m.Pose()
	out := make([]geometry.Polygon, 0, len(m.sensorNames))
	for _, name := range m.sensorNames {
		out = append(out, m.transform(m.sensors[name].view, pose))
	}
	return out
}

// ViewPolygons returns what each sensor currently sees: its cone cut short
// by the nearest obstacles. A fully blocked view collapses to its apex and
// is returned as a raw vertex list.
func (m *Mouse) ViewPolygons() [][]geometry.Point {
	pose := m.Pose()
	out := make([][]geometry.Point, 0, len(m.sensorNames))
	for _, name := range m.sensorNames {
		s := m.sensors[name]
		out = append(out, s.currentView(m.transform(s.view, pose), pose.Rotation+s.axis, m.env, m.rays))
	}
	return out
}

// CollisionPolygon is the precomputed silhouette moved to the current pose.
// It over-approximates the true union of the mouse's parts.
func (m *Mouse) CollisionPolygon() geometry.Polygon {
	return m.transform(m.silhouette, m.Pose())
}

// CollisionPolygons returns the shapes tested against walls under the
// configured CollisionShape.
func (m *Mouse) CollisionPolygons() []geometry.Polygon {
	pose := m.Pose()
	if m.shape == CollisionParts {
		out := make([]geometry.Polygon, len(m.parts))
		for i, p := range m.parts {
			out[i] = m.transform(p, pose)
		}
		return out
	}
	return []geometry.Polygon{m.transform(m.silhouette, pose)}
}

// Update integrates one step of differential-drive motion, assuming both
// wheel speeds stay constant for elapsed. Rotation is applied first and the
// mouse then travels in a straight line along the new heading, so the error
// grows with elapsed times the rotational rate.
func (m *Mouse) Update(elapsed time.Duration) {
	speeds := m.drive.Get()
	vl := m.left.SurfaceSpeed(speeds.Left)
	vr := m.right.SurfaceSpeed(speeds.Right)
	dt := elapsed.Seconds()

	pose := *m.pose.Load()
	pose.Rotation += (vr - vl) / m.base * dt
	distance := (vr + vl) / 2 * dt
	pose.Translation = pose.Translation.Add(geometry.Polar(distance, pose.Rotation+axleOffset))
	m.pose.Store(&pose)
}

// SetWheelSpeeds commands both wheels at once, in rad/s.
func (m *Mouse) SetWheelSpeeds(left, right float64) error {
	for _, v := range [2]float64{left, right} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v", ErrInvalidWheelSpeed, v)
		}
		if m.maxSpeed > 0 && math.Abs(v) > m.maxSpeed {
			return fmt.Errorf("%w: |%v| > %v rad/s", ErrWheelSpeedLimit, v, m.maxSpeed)
		}
	}
	m.drive.Set(WheelSpeeds{Left: left, Right: right})
	return nil
}

// Sensor returns the named sensor.
func (m *Mouse) Sensor(name string) (*Sensor, error) {
	s, ok := m.sensors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchSensor, name)
	}
	return s, nil
}

// Read returns the fraction of the named sensor's view that is blocked,
// from 0 (clear) to 1 (fully blocked). The pose used is the last one
// published by Update; a concurrent Update may already be computing the
// next one.
func (m *Mouse) Read(name string) (float64, error) {
	s, err := m.Sensor(name)
	if err != nil {
		return 0, err
	}
	pose := m.Pose()
	full := m.transform(s.view, pose)
	fullArea := full.Area()
	if fullArea <= geometry.Epsilon {
		return 0, fmt.Errorf("%w: %q", ErrDegenerateView, name)
	}
	current := geometry.AreaOf(s.currentView(full, pose.Rotation+s.axis, m.env, m.rays))
	return clamp01(1 - current/fullArea), nil
}

// ReadTime returns how long a reading of the named sensor takes. The caller
// is responsible for charging it; Read itself returns immediately.
func (m *Mouse) ReadTime(name string) (time.Duration, error) {
	s, err := m.Sensor(name)
	if err != nil {
		return 0, err
	}
	return s.readTime, nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
