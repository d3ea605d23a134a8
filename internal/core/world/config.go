package world

import (
	"fmt"
	"time"

	"github.com/zeusync/mazesim/internal/core/events/bus"
	"github.com/zeusync/mazesim/internal/core/observability/log"
	"github.com/zeusync/mazesim/internal/core/observability/metrics"
)

// Config controls the simulation clock.
type Config struct {
	// TickInterval is the wall-clock period between ticks in Run.
	TickInterval time.Duration
	// SimSpeed scales simulated time against wall-clock time. Each tick
	// advances the simulation by TickInterval*SimSpeed.
	SimSpeed float64
}

func DefaultConfig() Config {
	return Config{
		TickInterval: 5 * time.Millisecond,
		SimSpeed:     1,
	}
}

func (c Config) validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval %v must be positive", ErrInvalidConfig, c.TickInterval)
	}
	if !(c.SimSpeed > 0) {
		return fmt.Errorf("%w: sim speed %v must be positive", ErrInvalidConfig, c.SimSpeed)
	}
	if c.StepDuration() <= 0 {
		return fmt.Errorf("%w: tick interval %v at sim speed %v advances the clock by nothing",
			ErrInvalidConfig, c.TickInterval, c.SimSpeed)
	}
	return nil
}

// StepDuration is the simulated time one Run tick advances.
func (c Config) StepDuration() time.Duration {
	return time.Duration(float64(c.TickInterval) * c.SimSpeed)
}

type Option func(*World)

// WithBus publishes notifications on b instead of a private bus.
func WithBus(b bus.EventBus) Option {
	return func(w *World) { w.bus = b }
}

func WithLogger(l log.Log) Option {
	return func(w *World) { w.logger = l }
}

func WithMetrics(m *metrics.Simulation) Option {
	return func(w *World) { w.metrics = m }
}
