package world

import (
	"time"

	"github.com/zeusync/mazesim/internal/core/maze"
)

type State uint8

const (
	StateRunning State = iota
	StatePaused
	StateCrashed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateCrashed:
		return "crashed"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Stats is a value snapshot of a mouse's run. Durations are simulation time.
type Stats struct {
	// TilesTraversed counts distinct tiles visited, the start tile included.
	TilesTraversed int `json:"tiles_traversed"`
	// ClosestDistance is the smallest BFS distance to a center tile seen so
	// far, -1 while no visited tile can reach the center.
	ClosestDistance int `json:"closest_distance"`
	// TimeSinceDeparture is measured from the last time the mouse left its
	// start tile. Zero until it first leaves.
	TimeSinceDeparture time.Duration `json:"time_since_departure"`
	Departed           bool          `json:"departed"`
	// BestTimeToCenter is the fastest start-to-center trip. Valid only when
	// ReachedCenter is set.
	BestTimeToCenter time.Duration `json:"best_time_to_center"`
	ReachedCenter    bool          `json:"reached_center"`
	Crashed          bool          `json:"crashed"`
	CrashedAt        time.Duration `json:"crashed_at"`
}

// tracker accumulates stats for one mouse. It is owned by the World and
// only touched under its lock.
type tracker struct {
	start      maze.Coord
	visited    map[maze.Coord]struct{}
	closest    int
	departed   bool
	departedAt time.Duration
	best       time.Duration
	reached    bool
	crashed    bool
	crashedAt  time.Duration
}

func newTracker(m *maze.Maze, start maze.Coord) *tracker {
	t := &tracker{start: start, visited: make(map[maze.Coord]struct{}), closest: -1}
	t.enter(m, start, 0)
	return t
}

// enter records the mouse arriving on tile c at simulation time now.
func (t *tracker) enter(m *maze.Maze, c maze.Coord, now time.Duration) {
	t.visited[c] = struct{}{}
	if d := m.CenterDistance(c.X, c.Y); d >= 0 && (t.closest < 0 || d < t.closest) {
		t.closest = d
	}
	if c == t.start || !t.departed {
		return
	}
	if m.IsCenter(c.X, c.Y) {
		took := now - t.departedAt
		if !t.reached || took < t.best {
			t.best = took
		}
		t.reached = true
	}
}

// leave re-arms the departure clock when the mouse steps off its start tile.
func (t *tracker) leave(from maze.Coord, now time.Duration) {
	if from == t.start {
		t.departed = true
		t.departedAt = now
	}
}

func (t *tracker) crash(now time.Duration) {
	t.crashed = true
	t.crashedAt = now
}

func (t *tracker) snapshot(now time.Duration) Stats {
	s := Stats{
		TilesTraversed:   len(t.visited),
		ClosestDistance:  t.closest,
		Departed:         t.departed,
		BestTimeToCenter: t.best,
		ReachedCenter:    t.reached,
		Crashed:          t.crashed,
		CrashedAt:        t.crashedAt,
	}
	if t.crashed {
		now = t.crashedAt
	}
	if t.departed {
		s.TimeSinceDeparture = now - t.departedAt
	}
	return s
}
