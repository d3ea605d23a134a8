package runner

import (
	"context"
	"time"

	"github.com/zeusync/mazesim/internal/core/mouse"
	"github.com/zeusync/mazesim/internal/core/observability/metrics"
	"github.com/zeusync/mazesim/internal/core/world"
)

// MazeInfo is what an algorithm is told about the maze up front.
type MazeInfo struct {
	Width      int
	Height     int
	TileLength float64
	WallWidth  float64
}

// Controller is the sense/act surface handed to a navigation algorithm.
// Sensor reads cost the sensor's latency in wall-clock time, scaled by the
// simulation speed.
type Controller struct {
	id       string
	mouse    *mouse.Mouse
	world    *world.World
	simSpeed float64
	metrics  *metrics.Simulation
}

func newController(id string, w *world.World, m *mouse.Mouse, met *metrics.Simulation) *Controller {
	return &Controller{
		id:       id,
		mouse:    m,
		world:    w,
		simSpeed: w.Config().SimSpeed,
		metrics:  met,
	}
}

func (c *Controller) MouseID() string       { return c.id }
func (c *Controller) SensorNames() []string { return c.mouse.SensorNames() }

func (c *Controller) SetWheelSpeeds(left, right float64) error {
	return c.mouse.SetWheelSpeeds(left, right)
}

func (c *Controller) ReadTime(sensor string) (time.Duration, error) {
	return c.mouse.ReadTime(sensor)
}

// Read waits out the sensor's latency, then returns its occlusion reading.
func (c *Controller) Read(ctx context.Context, sensor string) (float64, error) {
	latency, err := c.mouse.ReadTime(sensor)
	if err != nil {
		return 0, err
	}
	if err := c.Wait(ctx, latency); err != nil {
		return 0, err
	}
	c.metrics.SensorReads.WithLabelValues(c.id, sensor).Inc()
	return c.mouse.Read(sensor)
}

// Wait blocks for d of simulation time, or until ctx ends.
func (c *Controller) Wait(ctx context.Context, d time.Duration) error {
	wall := time.Duration(float64(d) / c.simSpeed)
	if wall <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wall)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Controller) Stats() (world.Stats, error) { return c.world.MouseStats(c.id) }

func (c *Controller) State() (world.State, error) { return c.world.MouseState(c.id) }
