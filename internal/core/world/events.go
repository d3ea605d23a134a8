package world

import (
	"time"

	"github.com/zeusync/mazesim/internal/core/maze"
)

// Event types published on the bus.
const (
	EventTileEntered = "mouse.tile_entered"
	EventCrashed     = "mouse.crashed"

	eventSource = "world"
)

// TileEntered is published once each time a mouse's tile changes.
type TileEntered struct {
	MouseID string        `json:"mouse_id"`
	X       int           `json:"x"`
	Y       int           `json:"y"`
	At      time.Duration `json:"at"`
}

// Crashed is published when a mouse hits an obstacle or leaves the maze.
type Crashed struct {
	MouseID string        `json:"mouse_id"`
	Tile    maze.Coord    `json:"tile"`
	At      time.Duration `json:"at"`
	Reason  string        `json:"reason"`
}
