package mouse

import (
	"fmt"

	"github.com/zeusync/mazesim/internal/core/geometry"
)

// Wheel is the fixed geometry of one drive wheel. Its angular velocity lives
// in the mouse's Drive so that both wheels change together.
type Wheel struct {
	position geometry.Point
	radius   float64
	width    float64
	polygon  geometry.Polygon
}

func newWheel(d WheelDescription) (Wheel, error) {
	if !(d.Radius > 0) || !(d.Width > 0) {
		return Wheel{}, fmt.Errorf("radius %v and width %v must be positive", d.Radius, d.Width)
	}
	pos := geometry.Pt(d.X, d.Y)
	if !pos.IsFinite() {
		return Wheel{}, fmt.Errorf("%w: mount (%v, %v)", geometry.ErrNonFiniteVertex, d.X, d.Y)
	}
	// the tread rolls along the local +y axis
	half := geometry.Pt(d.Width/2, d.Radius)
	return Wheel{
		position: pos,
		radius:   d.Radius,
		width:    d.Width,
		polygon:  geometry.Rect(pos.Sub(half), pos.Add(half)),
	}, nil
}

func (w Wheel) Position() geometry.Point { return w.position }
func (w Wheel) Radius() float64          { return w.radius }

// SurfaceSpeed converts an angular velocity (rad/s) into the speed of the
// tread in m/s. Positive values drive the mouse forward.
func (w Wheel) SurfaceSpeed(angularVelocity float64) float64 {
	return angularVelocity * w.radius
}
