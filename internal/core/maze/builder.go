package maze

import "fmt"

// Builder accumulates walls before freezing them into an immutable Maze.
type Builder struct {
	width, height int
	tileLength    float64
	wallWidth     float64
	tiles         []Tile
	err           error
}

// NewBuilder starts an empty maze of the given size with default dimensions.
func NewBuilder(width, height int) *Builder {
	b := &Builder{
		width:      width,
		height:     height,
		tileLength: DefaultTileLength,
		wallWidth:  DefaultWallWidth,
	}
	if width <= 0 || height <= 0 {
		b.err = fmt.Errorf("%w: size %dx%d", ErrInvalidMaze, width, height)
		return b
	}
	b.tiles = make([]Tile, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			b.tiles[y*width+x].Coord = Coord{x, y}
		}
	}
	return b
}

// Dimensions sets the tile length and wall width in meters.
func (b *Builder) Dimensions(tileLength, wallWidth float64) *Builder {
	b.tileLength, b.wallWidth = tileLength, wallWidth
	return b
}

// SetWall sets one side of tile (x, y) without touching its neighbour.
// Loaders use it to reproduce files verbatim; Build rejects mismatches.
func (b *Builder) SetWall(x, y int, d Direction, present bool) *Builder {
	if b.err != nil {
		return b
	}
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		b.err = fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
		return b
	}
	b.tiles[y*b.width+x].Walls[d] = present
	return b
}

// AddWall walls side d of tile (x, y) and the matching side of its neighbour.
func (b *Builder) AddWall(x, y int, d Direction) *Builder {
	b.SetWall(x, y, d, true)
	dx, dy := d.Offset()
	if nx, ny := x+dx, y+dy; nx >= 0 && ny >= 0 && nx < b.width && ny < b.height {
		b.SetWall(nx, ny, d.Opposite(), true)
	}
	return b
}

// Enclose walls the outer boundary.
func (b *Builder) Enclose() *Builder {
	for x := 0; x < b.width; x++ {
		b.AddWall(x, 0, South)
		b.AddWall(x, b.height-1, North)
	}
	for y := 0; y < b.height; y++ {
		b.AddWall(0, y, West)
		b.AddWall(b.width-1, y, East)
	}
	return b
}

// Build validates the layout and derives the maze geometry.
func (b *Builder) Build() (*Maze, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !(b.tileLength > 0) || !(b.wallWidth > 0) || b.wallWidth >= b.tileLength {
		return nil, fmt.Errorf("%w: tile length %v and wall width %v must satisfy 0 < wall < tile",
			ErrInvalidMaze, b.tileLength, b.wallWidth)
	}
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			t := b.tiles[y*b.width+x]
			for _, d := range Directions {
				dx, dy := d.Offset()
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= b.width || ny >= b.height {
					if !t.Walls[d] {
						return nil, fmt.Errorf("%w: boundary wall missing on %s side of (%d, %d)", ErrInvalidMaze, d, x, y)
					}
					continue
				}
				if t.Walls[d] != b.tiles[ny*b.width+nx].Walls[d.Opposite()] {
					return nil, fmt.Errorf("%w: %s wall of (%d, %d) disagrees with neighbour (%d, %d)",
						ErrInvalidMaze, d, x, y, nx, ny)
				}
			}
		}
	}

	m := &Maze{
		width:      b.width,
		height:     b.height,
		tileLength: b.tileLength,
		wallWidth:  b.wallWidth,
		tiles:      make([]Tile, len(b.tiles)),
	}
	copy(m.tiles, b.tiles)
	m.buildGeometry()
	m.computeDistances()
	m.computeFingerprint()
	return m, nil
}
