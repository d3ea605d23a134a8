package runner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/zeusync/mazesim/internal/core/world"
)

var ErrUnknownAlgorithm = errors.New("runner: unknown algorithm")

// Algorithm drives one mouse. Solve runs until the algorithm is done or ctx
// ends; returning ctx's error on cancellation is not a failure.
type Algorithm interface {
	Name() string
	Solve(ctx context.Context, info MazeInfo, c *Controller) error
}

// Registry maps algorithm names to constructors.
type Registry map[string]func() Algorithm

// DefaultRegistry knows the built-in algorithms.
func DefaultRegistry() Registry {
	return Registry{
		"idle":   func() Algorithm { return Idle{} },
		"cruise": func() Algorithm { return NewCruise() },
	}
}

// New returns a fresh algorithm; an empty name means idle.
func (r Registry) New(name string) (Algorithm, error) {
	if name == "" {
		name = "idle"
	}
	ctor, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownAlgorithm, name, r.Names())
	}
	return ctor(), nil
}

func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Idle leaves the mouse parked.
type Idle struct{}

func (Idle) Name() string { return "idle" }

func (Idle) Solve(ctx context.Context, _ MazeInfo, _ *Controller) error {
	<-ctx.Done()
	return ctx.Err()
}

// Cruise drives forward until the front sensor sees a wall, then spins in
// place until the way is clear. It stops once the mouse crashes.
type Cruise struct {
	// Sensor is the sensor watched; empty picks the first one.
	Sensor string
	// Speed is the forward wheel speed in rad/s.
	Speed float64
	// Threshold is the reading above which the mouse turns.
	Threshold float64
	// Period is the simulation time between decisions.
	Period time.Duration
}

func NewCruise() *Cruise {
	return &Cruise{Speed: 10, Threshold: 0.3, Period: 10 * time.Millisecond}
}

func (a *Cruise) Name() string { return "cruise" }

func (a *Cruise) Solve(ctx context.Context, _ MazeInfo, c *Controller) error {
	sensor := a.Sensor
	if sensor == "" {
		names := c.SensorNames()
		if len(names) == 0 {
			return errors.New("cruise: mouse has no sensors")
		}
		sensor = names[0]
	}
	defer func() { _ = c.SetWheelSpeeds(0, 0) }()

	for {
		if state, err := c.State(); err != nil || state == world.StateCrashed {
			return err
		}
		reading, err := c.Read(ctx, sensor)
		if err != nil {
			return err
		}
		left, right := a.Speed, a.Speed
		if reading > a.Threshold {
			left, right = -a.Speed/2, a.Speed/2
		}
		if err := c.SetWheelSpeeds(left, right); err != nil {
			return err
		}
		if err := c.Wait(ctx, a.Period); err != nil {
			return err
		}
	}
}
