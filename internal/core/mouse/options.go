package mouse

import "fmt"

// CollisionShape selects which polygons stand in for the mouse during
// collision checks.
type CollisionShape uint8

const (
	// CollisionHull uses the single convex silhouette of all parts.
	CollisionHull CollisionShape = iota
	// CollisionParts uses the body, wheels and sensor bodies individually.
	CollisionParts
)

func (c CollisionShape) String() string {
	switch c {
	case CollisionHull:
		return "hull"
	case CollisionParts:
		return "parts"
	default:
		return "unknown"
	}
}

// ParseCollisionShape maps a config name onto a CollisionShape.
func ParseCollisionShape(s string) (CollisionShape, error) {
	switch s {
	case "", "hull":
		return CollisionHull, nil
	case "parts":
		return CollisionParts, nil
	default:
		return 0, fmt.Errorf("unknown collision shape %q", s)
	}
}

// DefaultSensorRays is the number of evenly spaced rays cast per reading,
// on top of one ray per view-cone vertex.
const DefaultSensorRays = 32

type options struct {
	shape CollisionShape
	rays  int
}

func defaultOptions() options {
	return options{shape: CollisionHull, rays: DefaultSensorRays}
}

type Option func(*options)

func WithCollisionShape(shape CollisionShape) Option {
	return func(o *options) { o.shape = shape }
}

// WithSensorRays sets the number of evenly spaced rays; values below 1 are raised to 1.
func WithSensorRays(n int) Option {
	return func(o *options) { o.rays = max(n, 1) }
}
