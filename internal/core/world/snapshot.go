package world

import (
	"time"

	"github.com/zeusync/mazesim/internal/core/geometry"
	"github.com/zeusync/mazesim/internal/core/maze"
	"github.com/zeusync/mazesim/internal/core/mouse"
)

// MouseSnapshot is everything a presentation layer needs to draw one mouse.
// Polygons are in maze coordinates.
type MouseSnapshot struct {
	ID        string             `json:"id"`
	State     State              `json:"state"`
	Pose      mouse.Pose         `json:"pose"`
	Tile      maze.Coord         `json:"tile"`
	Stats     Stats              `json:"stats"`
	Body      geometry.Polygon   `json:"body"`
	Wheels    []geometry.Polygon `json:"wheels"`
	Sensors   []geometry.Polygon `json:"sensors"`
	Views     [][]geometry.Point `json:"views"`
	Collision geometry.Polygon   `json:"collision"`
	Readings  map[string]float64 `json:"readings"`
}

type Snapshot struct {
	SimTime time.Duration   `json:"sim_time"`
	Paused  bool            `json:"paused"`
	Mice    []MouseSnapshot `json:"mice"`
}

// Snapshot copies the presentation state of every mouse. State and stats are
// taken under one lock; geometry is computed afterwards from each mouse's
// published pose.
func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	snap := Snapshot{SimTime: w.simTime, Paused: w.paused, Mice: make([]MouseSnapshot, 0, len(w.order))}
	mice := make([]*mouse.Mouse, 0, len(w.order))
	for _, id := range w.order {
		e := w.mice[id]
		snap.Mice = append(snap.Mice, MouseSnapshot{
			ID:    id,
			State: e.state,
			Tile:  e.tile,
			Stats: e.stats.snapshot(w.simTime),
		})
		mice = append(mice, e.mouse)
	}
	w.mu.RUnlock()

	for i, m := range mice {
		ms := &snap.Mice[i]
		ms.Pose = m.Pose()
		ms.Body = m.BodyPolygon()
		ms.Wheels = m.WheelPolygons()
		ms.Sensors = m.SensorPolygons()
		ms.Views = m.ViewPolygons()
		ms.Collision = m.CollisionPolygon()
		ms.Readings = make(map[string]float64, len(m.SensorNames()))
		for _, name := range m.SensorNames() {
			if v, err := m.Read(name); err == nil {
				ms.Readings[name] = v
			}
		}
	}
	return snap
}
