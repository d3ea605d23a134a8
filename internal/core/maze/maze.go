package maze

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/mazesim/internal/core/geometry"
)

// Default physical dimensions of a classic micromouse maze, in meters.
const (
	DefaultTileLength = 0.18
	DefaultWallWidth  = 0.012
)

// Maze is an immutable grid of tiles together with the wall and post
// polygons derived from it. Build one with a Builder or a loader.
type Maze struct {
	width, height int
	tileLength    float64
	wallWidth     float64

	tiles     []Tile
	distances []int

	obstacles     []geometry.Polygon
	tileObstacles [][]int
	fingerprint   uint64
}

func (m *Maze) Width() int             { return m.width }
func (m *Maze) Height() int            { return m.height }
func (m *Maze) TileLength() float64    { return m.tileLength }
func (m *Maze) WallWidth() float64     { return m.wallWidth }
func (m *Maze) Fingerprint() uint64    { return m.fingerprint }
func (m *Maze) InBounds(x, y int) bool { return x >= 0 && y >= 0 && x < m.width && y < m.height }
func (m *Maze) index(x, y int) int     { return y*m.width + x }
func (m *Maze) Size() geometry.Point   { return geometry.Pt(float64(m.width)*m.tileLength, float64(m.height)*m.tileLength) }
func (m *Maze) ObstacleCount() int     { return len(m.obstacles) }

func (m *Maze) HasWall(x, y int, d Direction) bool {
	if !m.InBounds(x, y) {
		return true
	}
	return m.tiles[m.index(x, y)].Walls[d]
}

// Tile returns the tile at (x, y).
func (m *Maze) Tile(x, y int) (Tile, error) {
	if !m.InBounds(x, y) {
		return Tile{}, fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
	}
	return m.tiles[m.index(x, y)], nil
}

// TileAt discretizes a continuous position onto the grid. ok is false when
// the position lies outside the maze.
func (m *Maze) TileAt(p geometry.Point) (Coord, bool) {
	c := Coord{X: int(math.Floor(p.X / m.tileLength)), Y: int(math.Floor(p.Y / m.tileLength))}
	return c, m.InBounds(c.X, c.Y)
}

// TileCenter returns the continuous center of tile (x, y).
func (m *Maze) TileCenter(x, y int) geometry.Point {
	return geometry.Pt((float64(x)+0.5)*m.tileLength, (float64(y)+0.5)*m.tileLength)
}

// IsCenter reports whether (x, y) is one of the goal tiles in the middle of the maze.
func (m *Maze) IsCenter(x, y int) bool {
	return isMiddle(x, m.width) && isMiddle(y, m.height)
}

func isMiddle(v, n int) bool {
	if n%2 == 0 {
		return v == n/2-1 || v == n/2
	}
	return v == n/2
}

// CenterDistance returns the number of moves from (x, y) to the nearest
// center tile, or -1 when no center tile is reachable.
func (m *Maze) CenterDistance(x, y int) int {
	if !m.InBounds(x, y) {
		return -1
	}
	return m.distances[m.index(x, y)]
}

// Obstacles returns the wall and post polygons bordering tile (x, y).
func (m *Maze) Obstacles(x, y int) []geometry.Polygon {
	if !m.InBounds(x, y) {
		return nil
	}
	idx := m.tileObstacles[m.index(x, y)]
	out := make([]geometry.Polygon, len(idx))
	for i, j := range idx {
		out[i] = m.obstacles[j]
	}
	return out
}

// ObstaclesAround returns the obstacles of tile c and its eight neighbours,
// without duplicates.
func (m *Maze) ObstaclesAround(c Coord) []geometry.Polygon {
	return m.collect(c.X-1, c.Y-1, c.X+1, c.Y+1)
}

// ObstaclesNear returns every obstacle bordering a tile that intersects the
// axis-aligned box [lo, hi].
func (m *Maze) ObstaclesNear(lo, hi geometry.Point) []geometry.Polygon {
	x0 := int(math.Floor(lo.X / m.tileLength))
	y0 := int(math.Floor(lo.Y / m.tileLength))
	x1 := int(math.Floor(hi.X / m.tileLength))
	y1 := int(math.Floor(hi.Y / m.tileLength))
	return m.collect(x0, y0, x1, y1)
}

func (m *Maze) collect(x0, y0, x1, y1 int) []geometry.Polygon {
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, m.width-1), min(y1, m.height-1)
	if x0 > x1 || y0 > y1 {
		return nil
	}
	seen := make(map[int]struct{})
	var out []geometry.Polygon
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			for _, j := range m.tileObstacles[m.index(x, y)] {
				if _, dup := seen[j]; dup {
					continue
				}
				seen[j] = struct{}{}
				out = append(out, m.obstacles[j])
			}
		}
	}
	return out
}

// buildGeometry derives wall and post polygons. Walls run between posts;
// posts stand at every grid corner.
func (m *Maze) buildGeometry() {
	L, half := m.tileLength, m.wallWidth/2
	m.tileObstacles = make([][]int, len(m.tiles))

	postIndex := func(cx, cy int) int { return cy*(m.width+1) + cx }
	for cy := 0; cy <= m.height; cy++ {
		for cx := 0; cx <= m.width; cx++ {
			c := geometry.Pt(float64(cx)*L, float64(cy)*L)
			m.obstacles = append(m.obstacles, geometry.Rect(
				geometry.Pt(c.X-half, c.Y-half), geometry.Pt(c.X+half, c.Y+half)))
		}
	}

	// horizontal walls keyed by the corner at their west end, vertical by the south end
	horizontal := make(map[Coord]int)
	vertical := make(map[Coord]int)
	wallAt := func(lines map[Coord]int, key Coord, poly geometry.Polygon) int {
		if j, ok := lines[key]; ok {
			return j
		}
		m.obstacles = append(m.obstacles, poly)
		lines[key] = len(m.obstacles) - 1
		return lines[key]
	}

	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			t := m.tiles[m.index(x, y)]
			idx := []int{
				postIndex(x, y), postIndex(x+1, y), postIndex(x+1, y+1), postIndex(x, y+1),
			}
			x0, y0 := float64(x)*L, float64(y)*L
			x1, y1 := x0+L, y0+L
			if t.Walls[North] {
				idx = append(idx, wallAt(horizontal, Coord{x, y + 1},
					geometry.Rect(geometry.Pt(x0+half, y1-half), geometry.Pt(x1-half, y1+half))))
			}
			if t.Walls[South] {
				idx = append(idx, wallAt(horizontal, Coord{x, y},
					geometry.Rect(geometry.Pt(x0+half, y0-half), geometry.Pt(x1-half, y0+half))))
			}
			if t.Walls[East] {
				idx = append(idx, wallAt(vertical, Coord{x + 1, y},
					geometry.Rect(geometry.Pt(x1-half, y0+half), geometry.Pt(x1+half, y1-half))))
			}
			if t.Walls[West] {
				idx = append(idx, wallAt(vertical, Coord{x, y},
					geometry.Rect(geometry.Pt(x0-half, y0+half), geometry.Pt(x0+half, y1-half))))
			}
			m.tileObstacles[m.index(x, y)] = idx
		}
	}
}

// computeDistances runs a breadth-first search outward from the center tiles.
func (m *Maze) computeDistances() {
	m.distances = make([]int, len(m.tiles))
	queue := make([]Coord, 0, len(m.tiles))
	for i := range m.distances {
		m.distances[i] = -1
	}
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.IsCenter(x, y) {
				m.distances[m.index(x, y)] = 0
				queue = append(queue, Coord{x, y})
			}
		}
	}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		d := m.distances[m.index(c.X, c.Y)]
		for _, dir := range Directions {
			if m.tiles[m.index(c.X, c.Y)].Walls[dir] {
				continue
			}
			dx, dy := dir.Offset()
			nx, ny := c.X+dx, c.Y+dy
			if !m.InBounds(nx, ny) || m.distances[m.index(nx, ny)] >= 0 {
				continue
			}
			m.distances[m.index(nx, ny)] = d + 1
			queue = append(queue, Coord{nx, ny})
		}
	}
}

func (m *Maze) computeFingerprint() {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(m.width)<<32|uint64(m.height))
	_, _ = d.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(m.tileLength))
	_, _ = d.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(m.wallWidth))
	_, _ = d.Write(buf[:])
	walls := make([]byte, len(m.tiles))
	for i, t := range m.tiles {
		for dir, w := range t.Walls {
			if w {
				walls[i] |= 1 << dir
			}
		}
	}
	_, _ = d.Write(walls)
	m.fingerprint = d.Sum64()
}
