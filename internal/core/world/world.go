package world

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zeusync/mazesim/internal/core/events/bus"
	"github.com/zeusync/mazesim/internal/core/geometry"
	"github.com/zeusync/mazesim/internal/core/maze"
	"github.com/zeusync/mazesim/internal/core/mouse"
	"github.com/zeusync/mazesim/internal/core/observability/log"
	"github.com/zeusync/mazesim/internal/core/observability/metrics"
)

// World owns one simulation run: the maze, the mice racing in it, their
// states and stats, and the simulation clock.
type World struct {
	maze   *maze.Maze
	config Config

	bus     bus.EventBus
	logger  log.Log
	metrics *metrics.Simulation

	mu      sync.RWMutex
	order   []string
	mice    map[string]*entry
	simTime time.Duration
	paused  bool
	closed  bool
}

type entry struct {
	id    string
	mouse *mouse.Mouse
	state State
	tile  maze.Coord
	stats *tracker
}

// New creates a World over m. Options default to a private bus, a no-op
// logger and unregistered metrics.
func New(m *maze.Maze, config Config, opts ...Option) (*World, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil maze", ErrInvalidConfig)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	w := &World{
		maze:   m,
		config: config,
		mice:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.bus == nil {
		w.bus = bus.New()
	}
	if w.logger == nil {
		w.logger = log.NewNop()
	}
	if w.metrics == nil {
		w.metrics = metrics.New(nil)
	}
	w.logger = w.logger.Named("world")
	return w, nil
}

func (w *World) Maze() *maze.Maze  { return w.maze }
func (w *World) Config() Config    { return w.config }
func (w *World) Bus() bus.EventBus { return w.bus }
func (w *World) Logger() log.Log   { return w.logger }

// AddMouse registers m under id. Its current tile becomes its start tile.
func (w *World) AddMouse(id string, m *mouse.Mouse) error {
	if m == nil {
		return fmt.Errorf("%w: nil mouse %q", ErrInvalidConfig, id)
	}
	start, ok := w.maze.TileAt(m.Pose().Translation)
	if !ok {
		return fmt.Errorf("%w: %q at %v", ErrOffGrid, id, m.Pose().Translation)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if _, dup := w.mice[id]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateMouse, id)
	}
	w.mice[id] = &entry{
		id:    id,
		mouse: m,
		state: StateRunning,
		tile:  start,
		stats: newTracker(w.maze, start),
	}
	w.order = append(w.order, id)

	w.logger.Info("Mouse added",
		log.MouseID(id),
		log.Int("start_x", start.X),
		log.Int("start_y", start.Y),
		log.Int("sensors", len(m.SensorNames())))
	return nil
}

// MouseIDs lists registered mice in registration order.
func (w *World) MouseIDs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.order...)
}

func (w *World) Mouse(id string) (*mouse.Mouse, error) {
	e, err := w.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.mouse, nil
}

// MouseStats returns a copy of the mouse's stats.
func (w *World) MouseStats(id string) (Stats, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.mice[id]
	if !ok {
		return Stats{}, fmt.Errorf("%w: %q", ErrUnknownMouse, id)
	}
	return e.stats.snapshot(w.simTime), nil
}

func (w *World) MouseState(id string) (State, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.mice[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMouse, id)
	}
	return e.state, nil
}

func (w *World) lookup(id string) (*entry, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.mice[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMouse, id)
	}
	return e, nil
}

// SimTime is the simulated time elapsed since the World was created.
func (w *World) SimTime() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.simTime
}

// Pause suspends every tick until Resume. The simulation clock stops too.
func (w *World) Pause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.paused {
		w.paused = true
		w.logger.Info("Simulation paused", log.Duration("sim_time", w.simTime))
	}
}

func (w *World) Resume() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.paused {
		w.paused = false
		w.logger.Info("Simulation resumed", log.Duration("sim_time", w.simTime))
	}
}

func (w *World) IsPaused() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.paused
}

// PauseMouse stops integrating one mouse. Crashed mice cannot be paused.
func (w *World) PauseMouse(id string) error {
	return w.setMouseState(id, StateRunning, StatePaused)
}

func (w *World) ResumeMouse(id string) error {
	return w.setMouseState(id, StatePaused, StateRunning)
}

func (w *World) setMouseState(id string, from, to State) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.mice[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMouse, id)
	}
	if e.state == StateCrashed {
		return fmt.Errorf("%w: %q", ErrMouseCrashed, id)
	}
	if e.state == from {
		e.state = to
		w.logger.Info("Mouse state changed", log.MouseID(id), log.String("state", to.String()))
	}
	return nil
}

// Step advances the simulation by elapsed. For every running mouse it
// integrates the pose, checks for collisions and updates stats. Events are
// published after the World's lock is released, so handlers may query it.
func (w *World) Step(elapsed time.Duration) {
	if elapsed <= 0 {
		return
	}
	started := time.Now()

	w.mu.Lock()
	if w.paused || w.closed {
		w.mu.Unlock()
		return
	}
	w.simTime += elapsed
	now := w.simTime
	var (
		events []bus.Event
		active int
	)
	for _, id := range w.order {
		e := w.mice[id]
		if e.state != StateRunning {
			continue
		}
		e.mouse.Update(elapsed)
		if ev := w.advance(e, now); ev != nil {
			events = append(events, ev)
		}
		if e.state == StateRunning {
			active++
		}
	}
	w.mu.Unlock()

	if len(events) > 0 {
		if err := w.bus.PublishBatch(events...); err != nil {
			w.logger.Warn("Event handlers failed", log.Error(err))
		}
	}
	w.metrics.ObserveTick(time.Since(started), now, active)
}

// advance checks e after its pose moved. Called with w.mu held.
func (w *World) advance(e *entry, now time.Duration) bus.Event {
	pose := e.mouse.Pose()
	tile, inside := w.maze.TileAt(pose.Translation)
	if !inside {
		return w.crash(e, e.tile, now, "left the maze")
	}
	if geometry.OverlapsAny(e.mouse.CollisionPolygons(), w.maze.ObstaclesAround(tile)) {
		return w.crash(e, tile, now, "hit a wall")
	}
	if tile == e.tile {
		return nil
	}

	e.stats.leave(e.tile, now)
	e.stats.enter(w.maze, tile, now)
	e.tile = tile
	w.metrics.TilesEntered.WithLabelValues(e.id).Inc()
	w.logger.Debug("Tile entered",
		log.MouseID(e.id),
		log.Int("x", tile.X),
		log.Int("y", tile.Y),
		log.Duration("at", now))
	return bus.NewEvent(EventTileEntered, eventSource, TileEntered{MouseID: e.id, X: tile.X, Y: tile.Y, At: now})
}

func (w *World) crash(e *entry, tile maze.Coord, now time.Duration, reason string) bus.Event {
	e.state = StateCrashed
	e.stats.crash(now)
	w.metrics.Collisions.WithLabelValues(e.id).Inc()
	w.logger.Warn("Mouse crashed",
		log.MouseID(e.id),
		log.String("reason", reason),
		log.Int("x", tile.X),
		log.Int("y", tile.Y),
		log.Duration("at", now))
	return bus.NewEvent(EventCrashed, eventSource, Crashed{MouseID: e.id, Tile: tile, At: now, Reason: reason})
}

// Run ticks every TickInterval until ctx is done, advancing the simulation
// clock by TickInterval*SimSpeed per tick.
func (w *World) Run(ctx context.Context) error {
	step := w.config.StepDuration()
	ticker := time.NewTicker(w.config.TickInterval)
	defer ticker.Stop()

	w.logger.Info("Simulation loop started",
		log.Duration("tick_interval", w.config.TickInterval),
		log.Float64("sim_speed", w.config.SimSpeed))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Simulation loop stopped", log.Duration("sim_time", w.SimTime()))
			return nil
		case <-ticker.C:
			w.Step(step)
		}
	}
}

// Close ends the run. Later Steps do nothing and AddMouse fails.
func (w *World) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	for _, id := range w.order {
		e := w.mice[id]
		s := e.stats.snapshot(w.simTime)
		w.logger.Info("Final stats",
			log.MouseID(id),
			log.String("state", e.state.String()),
			log.Int("tiles_traversed", s.TilesTraversed),
			log.Int("closest_distance", s.ClosestDistance),
			log.Bool("reached_center", s.ReachedCenter),
			log.Duration("best_time_to_center", s.BestTimeToCenter))
	}
	return nil
}
