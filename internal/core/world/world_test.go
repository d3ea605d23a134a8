package world

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/mazesim/internal/core/events/bus"
	"github.com/zeusync/mazesim/internal/core/geometry"
	"github.com/zeusync/mazesim/internal/core/maze"
	"github.com/zeusync/mazesim/internal/core/mouse"
	"github.com/zeusync/mazesim/internal/core/observability/metrics"
)

// A single column of five tiles; the center tile is (0, 2).
const column = `
+---+
|   |
+   +
|   |
+   +
|   |
+   +
|   |
+   +
|   |
+---+
`

const tick = 10 * time.Millisecond

func testMaze(t *testing.T) *maze.Maze {
	t.Helper()
	m, err := maze.ParseLayout(column, 0.18, 0.012)
	require.NoError(t, err)
	return m
}

// testMouse sits in the middle of tile (0, 0) facing north, axle at (0.09, 0.07).
func testMouse(t *testing.T, env mouse.Environment, dx float64) *mouse.Mouse {
	t.Helper()
	d := mouse.Description{
		Body: []geometry.Point{
			{X: 0.06 + dx, Y: 0.04}, {X: 0.12 + dx, Y: 0.04}, {X: 0.12 + dx, Y: 0.10}, {X: 0.06 + dx, Y: 0.10},
		},
		Wheels: mouse.WheelsDescription{
			Left:  mouse.WheelDescription{X: 0.06 + dx, Y: 0.07, Radius: 0.015, Width: 0.008},
			Right: mouse.WheelDescription{X: 0.12 + dx, Y: 0.07, Radius: 0.015, Width: 0.008},
		},
		Sensors: []mouse.SensorDescription{{
			Name: "front", X: 0.09 + dx, Y: 0.10, Direction: 90,
			Radius: 0.004, Range: 0.1, HalfWidth: 15, ReadTime: time.Millisecond,
		}},
	}
	m, err := mouse.New(env, d)
	require.NoError(t, err)
	return m
}

type recorder struct {
	mu      sync.Mutex
	tiles   []TileEntered
	crashes []Crashed
}

func record(t *testing.T, b bus.EventBus) *recorder {
	t.Helper()
	r := &recorder{}
	_, err := b.Subscribe(EventTileEntered, func(e bus.Event) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.tiles = append(r.tiles, e.Data().(TileEntered))
		return nil
	})
	require.NoError(t, err)
	_, err = b.Subscribe(EventCrashed, func(e bus.Event) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.crashes = append(r.crashes, e.Data().(Crashed))
		return nil
	})
	require.NoError(t, err)
	return r
}

func stepUntilCrashed(t *testing.T, w *World, id string, limit int) {
	t.Helper()
	for range limit {
		w.Step(tick)
		state, err := w.MouseState(id)
		require.NoError(t, err)
		if state == StateCrashed {
			return
		}
	}
	t.Fatalf("mouse %q did not crash within %d ticks", id, limit)
}

func TestNewValidatesConfig(t *testing.T) {
	m := testMaze(t)
	_, err := New(m, Config{TickInterval: 0, SimSpeed: 1})
	require.ErrorIs(t, err, ErrInvalidConfig)
	_, err = New(m, Config{TickInterval: time.Millisecond, SimSpeed: 0})
	require.ErrorIs(t, err, ErrInvalidConfig)
	_, err = New(m, Config{TickInterval: time.Nanosecond, SimSpeed: 0.5})
	require.ErrorIs(t, err, ErrInvalidConfig, "a step that rounds to zero never advances the clock")
	_, err = New(nil, DefaultConfig())
	require.ErrorIs(t, err, ErrInvalidConfig)

	require.Equal(t, 10*time.Millisecond, Config{TickInterval: 5 * time.Millisecond, SimSpeed: 2}.StepDuration())
}

func TestAddMouse(t *testing.T) {
	m := testMaze(t)
	w, err := New(m, DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, w.AddMouse("alpha", testMouse(t, m, 0)))
	require.ErrorIs(t, w.AddMouse("alpha", testMouse(t, m, 0)), ErrDuplicateMouse)
	require.ErrorIs(t, w.AddMouse("far", testMouse(t, m, 1)), ErrOffGrid)
	require.Equal(t, []string{"alpha"}, w.MouseIDs())

	_, err = w.Mouse("beta")
	require.ErrorIs(t, err, ErrUnknownMouse)
	_, err = w.MouseStats("beta")
	require.ErrorIs(t, err, ErrUnknownMouse)
	_, err = w.MouseState("beta")
	require.ErrorIs(t, err, ErrUnknownMouse)

	stats, err := w.MouseStats("alpha")
	require.NoError(t, err)
	require.Equal(t, 1, stats.TilesTraversed)
	require.Equal(t, 2, stats.ClosestDistance)
	require.False(t, stats.Departed)
}

func TestRunUpTheColumn(t *testing.T) {
	m := testMaze(t)
	reg := prometheus.NewRegistry()
	met := metrics.New(reg)
	w, err := New(m, DefaultConfig(), WithMetrics(met))
	require.NoError(t, err)
	rec := record(t, w.Bus())

	mm := testMouse(t, m, 0)
	require.NoError(t, w.AddMouse("alpha", mm))
	// 10 rad/s on a 15 mm wheel is 0.15 m/s straight ahead.
	require.NoError(t, mm.SetWheelSpeeds(10, 10))

	stepUntilCrashed(t, w, "alpha", 1000)

	require.Equal(t, []maze.Coord{{X: 0, Y: 1}, {X: 0, Y: 2}, {X: 0, Y: 3}, {X: 0, Y: 4}}, func() []maze.Coord {
		var out []maze.Coord
		for _, te := range rec.tiles {
			require.Equal(t, "alpha", te.MouseID)
			out = append(out, maze.Coord{X: te.X, Y: te.Y})
		}
		return out
	}())
	require.Len(t, rec.crashes, 1)
	require.Equal(t, "hit a wall", rec.crashes[0].Reason)
	require.Equal(t, maze.Coord{X: 0, Y: 4}, rec.crashes[0].Tile)

	stats, err := w.MouseStats("alpha")
	require.NoError(t, err)
	require.Equal(t, 5, stats.TilesTraversed)
	require.Equal(t, 0, stats.ClosestDistance)
	require.True(t, stats.Departed)
	require.True(t, stats.ReachedCenter)
	// one tile length at 0.15 m/s, give or take a tick at each end
	require.InDelta(t, 1.2, stats.BestTimeToCenter.Seconds(), 2*tick.Seconds())
	require.True(t, stats.Crashed)
	require.Equal(t, w.SimTime(), stats.CrashedAt)
	require.Equal(t, stats.CrashedAt-rec.tiles[0].At, stats.TimeSinceDeparture)

	require.Equal(t, 1.0, testutil.ToFloat64(met.Collisions.WithLabelValues("alpha")))
	require.Equal(t, 4.0, testutil.ToFloat64(met.TilesEntered.WithLabelValues("alpha")))
	require.Equal(t, 0.0, testutil.ToFloat64(met.ActiveMice))

	t.Run("crash freezes pose and stats", func(t *testing.T) {
		pose := mm.Pose()
		for range 50 {
			w.Step(tick)
		}
		require.Equal(t, pose, mm.Pose())
		after, err := w.MouseStats("alpha")
		require.NoError(t, err)
		require.Equal(t, stats, after)
		require.Len(t, rec.tiles, 4)
		require.Len(t, rec.crashes, 1)
		require.ErrorIs(t, w.PauseMouse("alpha"), ErrMouseCrashed)
		require.ErrorIs(t, w.ResumeMouse("alpha"), ErrMouseCrashed)
	})
}

func TestTileEnteredOncePerChange(t *testing.T) {
	m := testMaze(t)
	w, err := New(m, DefaultConfig())
	require.NoError(t, err)
	rec := record(t, w.Bus())

	mm := testMouse(t, m, 0)
	require.NoError(t, w.AddMouse("alpha", mm))
	require.NoError(t, mm.SetWheelSpeeds(10, 10))

	// 0.11 m to the first boundary is a little over 73 ticks
	for range 60 {
		w.Step(tick)
	}
	require.Empty(t, rec.tiles)
	for range 40 {
		w.Step(tick)
	}
	require.Len(t, rec.tiles, 1)
	require.Equal(t, 1, rec.tiles[0].Y)

	require.NoError(t, mm.SetWheelSpeeds(0, 0))
	for range 20 {
		w.Step(tick)
	}
	require.Len(t, rec.tiles, 1)
}

func TestLeavingTheMazeIsACrash(t *testing.T) {
	m := testMaze(t)
	w, err := New(m, DefaultConfig())
	require.NoError(t, err)
	rec := record(t, w.Bus())

	mm := testMouse(t, m, 0)
	require.NoError(t, w.AddMouse("alpha", mm))
	require.NoError(t, mm.SetWheelSpeeds(1000, 1000))

	w.Step(time.Second)
	state, err := w.MouseState("alpha")
	require.NoError(t, err)
	require.Equal(t, StateCrashed, state)
	require.Len(t, rec.crashes, 1)
	require.Equal(t, "left the maze", rec.crashes[0].Reason)
	require.Equal(t, maze.Coord{}, rec.crashes[0].Tile)
	require.Empty(t, rec.tiles)
}

func TestPause(t *testing.T) {
	m := testMaze(t)
	w, err := New(m, DefaultConfig())
	require.NoError(t, err)

	a, b := testMouse(t, m, 0), testMouse(t, m, 0)
	require.NoError(t, w.AddMouse("a", a))
	require.NoError(t, w.AddMouse("b", b))
	require.NoError(t, a.SetWheelSpeeds(5, 5))
	require.NoError(t, b.SetWheelSpeeds(5, 5))

	t.Run("world", func(t *testing.T) {
		w.Pause()
		require.True(t, w.IsPaused())
		before := a.Pose()
		w.Step(tick)
		require.Equal(t, before, a.Pose())
		require.Zero(t, w.SimTime())
		w.Resume()
		require.False(t, w.IsPaused())
		w.Step(tick)
		require.Equal(t, tick, w.SimTime())
		require.Greater(t, a.Pose().Translation.Y, before.Translation.Y)
	})

	t.Run("single mouse", func(t *testing.T) {
		require.NoError(t, w.PauseMouse("a"))
		state, err := w.MouseState("a")
		require.NoError(t, err)
		require.Equal(t, StatePaused, state)

		frozen, moving := a.Pose(), b.Pose()
		w.Step(tick)
		require.Equal(t, frozen, a.Pose())
		require.Greater(t, b.Pose().Translation.Y, moving.Translation.Y)

		require.NoError(t, w.ResumeMouse("a"))
		w.Step(tick)
		require.Greater(t, a.Pose().Translation.Y, frozen.Translation.Y)
		require.ErrorIs(t, w.PauseMouse("nobody"), ErrUnknownMouse)
	})
}

func TestStatsAreCopies(t *testing.T) {
	m := testMaze(t)
	w, err := New(m, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, w.AddMouse("alpha", testMouse(t, m, 0)))

	s, err := w.MouseStats("alpha")
	require.NoError(t, err)
	s.TilesTraversed = 99
	s.Crashed = true

	again, err := w.MouseStats("alpha")
	require.NoError(t, err)
	require.Equal(t, 1, again.TilesTraversed)
	require.False(t, again.Crashed)
}

func TestSnapshot(t *testing.T) {
	m := testMaze(t)
	w, err := New(m, DefaultConfig())
	require.NoError(t, err)
	mm := testMouse(t, m, 0)
	require.NoError(t, w.AddMouse("alpha", mm))
	w.Step(tick)

	snap := w.Snapshot()
	require.Equal(t, tick, snap.SimTime)
	require.Len(t, snap.Mice, 1)
	ms := snap.Mice[0]
	require.Equal(t, "alpha", ms.ID)
	require.Equal(t, StateRunning, ms.State)
	require.Equal(t, maze.Coord{}, ms.Tile)
	require.Equal(t, 4, ms.Body.Len())
	require.Len(t, ms.Wheels, 2)
	require.Len(t, ms.Sensors, 1)
	require.Len(t, ms.Views, 1)
	require.Contains(t, ms.Readings, "front")
	require.Equal(t, mm.CollisionPolygon().Vertices(), ms.Collision.Vertices())

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded struct {
		Mice []struct {
			ID    string     `json:"id"`
			State string     `json:"state"`
			Pose  mouse.Pose `json:"pose"`
		} `json:"mice"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, "alpha", decoded.Mice[0].ID)
	require.Equal(t, "running", decoded.Mice[0].State)
	require.Equal(t, mm.Pose(), decoded.Mice[0].Pose)
}

func TestRun(t *testing.T) {
	m := testMaze(t)
	w, err := New(m, Config{TickInterval: time.Millisecond, SimSpeed: 2})
	require.NoError(t, err)
	require.NoError(t, w.AddMouse("alpha", testMouse(t, m, 0)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return w.SimTime() >= 10*time.Millisecond }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	require.Zero(t, w.SimTime()%(2*time.Millisecond))
}

func TestClose(t *testing.T) {
	m := testMaze(t)
	w, err := New(m, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, w.AddMouse("alpha", testMouse(t, m, 0)))

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	require.ErrorIs(t, w.AddMouse("beta", testMouse(t, m, 0)), ErrClosed)
	w.Step(tick)
	require.Zero(t, w.SimTime())
}

func TestConcurrentControllerAndLoop(t *testing.T) {
	m := testMaze(t)
	w, err := New(m, DefaultConfig())
	require.NoError(t, err)
	mm := testMouse(t, m, 0)
	require.NoError(t, w.AddMouse("alpha", mm))

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for range 200 {
			w.Step(time.Millisecond)
		}
	}()
	go func() {
		defer wg.Done()
		for i := range 200 {
			_ = mm.SetWheelSpeeds(float64(i%5), float64(i%5))
			_, _ = mm.Read("front")
		}
	}()
	go func() {
		defer wg.Done()
		for range 50 {
			_ = w.Snapshot()
			_, _ = w.MouseStats("alpha")
		}
	}()
	wg.Wait()
	require.Equal(t, 200*time.Millisecond, w.SimTime())
}
