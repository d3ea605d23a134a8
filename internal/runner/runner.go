package runner

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/mazesim/internal/config"
	"github.com/zeusync/mazesim/internal/core/events/bus"
	"github.com/zeusync/mazesim/internal/core/maze"
	"github.com/zeusync/mazesim/internal/core/mouse"
	"github.com/zeusync/mazesim/internal/core/observability/log"
	"github.com/zeusync/mazesim/internal/core/observability/metrics"
	"github.com/zeusync/mazesim/internal/core/world"
)

// Service is a long-running collaborator supervised next to the world loop,
// such as the feed server.
type Service interface {
	Run(ctx context.Context) error
}

// Runner owns one run: the world loop, one algorithm per mouse and any
// attached services, all supervised by one errgroup.
type Runner struct {
	id         string
	world      *world.World
	algorithms map[string]Algorithm
	services   []Service
	metrics    *metrics.Simulation
	logger     log.Log
}

// NewWorld loads the maze and mice named by cfg and places the mice in a new
// World.
func NewWorld(cfg config.Config, b bus.EventBus, m *metrics.Simulation, logger log.Log) (*world.World, error) {
	mz, err := maze.LoadFile(cfg.Maze)
	if err != nil {
		return nil, fmt.Errorf("load maze: %w", err)
	}
	w, err := world.New(mz,
		world.Config{TickInterval: cfg.TickInterval, SimSpeed: cfg.SimSpeed},
		world.WithBus(b), world.WithMetrics(m), world.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	for _, mc := range cfg.Mice {
		d, err := mouse.LoadFile(mc.Description)
		if err != nil {
			return nil, fmt.Errorf("mouse %q: %w", mc.ID, err)
		}
		mm, err := mouse.New(mz, d, mouse.WithCollisionShape(cfg.Shape()), mouse.WithSensorRays(cfg.SensorRays))
		if err != nil {
			return nil, fmt.Errorf("mouse %q: %w", mc.ID, err)
		}
		if err := w.AddMouse(mc.ID, mm); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// New assigns an algorithm from reg to every mouse in w as named by cfg.
func New(cfg config.Config, w *world.World, reg Registry, m *metrics.Simulation, logger log.Log, services ...Service) (*Runner, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}
	algorithms := make(map[string]Algorithm, len(cfg.Mice))
	for _, mc := range cfg.Mice {
		a, err := reg.New(mc.Algorithm)
		if err != nil {
			return nil, fmt.Errorf("mouse %q: %w", mc.ID, err)
		}
		algorithms[mc.ID] = a
	}
	if logger == nil {
		logger = log.NewNop()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	return &Runner{
		id:         uuid.NewString(),
		world:      w,
		algorithms: algorithms,
		services:   services,
		metrics:    m,
		logger:     logger.Named("runner"),
	}, nil
}

func (r *Runner) ID() string          { return r.id }
func (r *Runner) World() *world.World { return r.world }

// Run blocks until ctx ends or a supervised goroutine fails, then closes the
// world. Cancellation is a clean stop.
func (r *Runner) Run(ctx context.Context) error {
	mz := r.world.Maze()
	info := MazeInfo{
		Width:      mz.Width(),
		Height:     mz.Height(),
		TileLength: mz.TileLength(),
		WallWidth:  mz.WallWidth(),
	}
	logger := r.logger.With(log.String("run_id", r.id))
	logger.Info("Run started",
		log.String("maze_fingerprint", strconv.FormatUint(mz.Fingerprint(), 16)),
		log.Int("maze_width", info.Width),
		log.Int("maze_height", info.Height),
		log.Int("mice", len(r.algorithms)))

	type assignment struct {
		id  string
		alg Algorithm
		c   *Controller
	}
	assignments := make([]assignment, 0, len(r.algorithms))
	for id, alg := range r.algorithms {
		m, err := r.world.Mouse(id)
		if err != nil {
			err = errors.Join(fmt.Errorf("algorithm %s: %w", alg.Name(), err), r.world.Close())
			logger.Error("Run failed", log.Error(err))
			return err
		}
		assignments = append(assignments, assignment{id: id, alg: alg, c: newController(id, r.world, m, r.metrics)})
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.world.Run(ctx) })
	for _, svc := range r.services {
		g.Go(func() error { return svc.Run(ctx) })
	}
	for _, a := range assignments {
		g.Go(func() error {
			err := a.alg.Solve(ctx, info, a.c)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("algorithm %s for %q: %w", a.alg.Name(), a.id, err)
			}
			logger.Info("Algorithm finished", log.MouseID(a.id), log.String("algorithm", a.alg.Name()))
			return nil
		})
	}

	err := g.Wait()
	if closeErr := r.world.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	if err != nil {
		logger.Error("Run failed", log.Error(err))
		return err
	}
	logger.Info("Run finished", log.Duration("sim_time", r.world.SimTime()))
	return nil
}
