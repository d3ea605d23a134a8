package maze

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Description is the YAML form of a maze. Layout is an ASCII drawing where
// "+" marks posts, "---" a horizontal wall and "|" a vertical wall; the
// first line is the northern edge.
//
//	+---+---+
//	|       |
//	+   +---+
//	|   |   |
//	+---+---+
type Description struct {
	TileLength float64 `json:"tile_length" yaml:"tile_length"`
	WallWidth  float64 `json:"wall_width" yaml:"wall_width"`
	Layout     string  `json:"layout" yaml:"layout"`
}

// LoadYAML decodes a maze description and builds it.
func LoadYAML(r io.Reader) (*Maze, error) {
	var d Description
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %w", ErrInvalidMaze, err)
	}
	return d.Build()
}

// Build parses the layout drawing.
func (d Description) Build() (*Maze, error) {
	tileLength, wallWidth := d.TileLength, d.WallWidth
	if tileLength == 0 {
		tileLength = DefaultTileLength
	}
	if wallWidth == 0 {
		wallWidth = DefaultWallWidth
	}
	return ParseLayout(d.Layout, tileLength, wallWidth)
}

// ParseLayout builds a maze from an ASCII drawing (see Description).
func ParseLayout(layout string, tileLength, wallWidth float64) (*Maze, error) {
	var lines []string
	for _, l := range strings.Split(layout, "\n") {
		if l = strings.TrimRight(l, " \t\r"); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 3 || len(lines)%2 == 0 {
		return nil, fmt.Errorf("%w: layout needs an odd number (>= 3) of lines, got %d", ErrInvalidMaze, len(lines))
	}
	width := (len(lines[0]) - 1) / 4
	height := (len(lines) - 1) / 2
	if width <= 0 || len(lines[0]) != 4*width+1 {
		return nil, fmt.Errorf("%w: first layout line has length %d, want 4*width+1", ErrInvalidMaze, len(lines[0]))
	}

	at := func(row, col int) byte {
		if col < len(lines[row]) {
			return lines[row][col]
		}
		return ' '
	}
	b := NewBuilder(width, height).Dimensions(tileLength, wallWidth)
	for r := 0; r < height; r++ {
		y := height - 1 - r
		top, mid, bottom := 2*r, 2*r+1, 2*r+2
		for x := 0; x < width; x++ {
			b.SetWall(x, y, North, at(top, 4*x+2) == '-')
			b.SetWall(x, y, South, at(bottom, 4*x+2) == '-')
			b.SetWall(x, y, West, at(mid, 4*x) == '|')
			b.SetWall(x, y, East, at(mid, 4*x+4) == '|')
		}
	}
	return b.Build()
}

// LoadNum reads the classic ".num" format: one "x y north east south west"
// line per tile, walls given as 0 or 1. Missing tiles are an error.
func LoadNum(r io.Reader) (*Maze, error) {
	type entry struct {
		x, y  int
		walls [4]bool
	}
	var (
		entries []entry
		seen    = make(map[Coord]struct{})
		width   int
		height  int
	)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 6 {
			return nil, fmt.Errorf("%w: line %d: want 6 fields, got %d", ErrInvalidMaze, line, len(fields))
		}
		var vals [6]int
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidMaze, line, err)
			}
			vals[i] = v
		}
		if vals[0] < 0 || vals[1] < 0 {
			return nil, fmt.Errorf("%w: line %d: negative coordinate", ErrInvalidMaze, line)
		}
		e := entry{x: vals[0], y: vals[1]}
		if _, dup := seen[Coord{e.x, e.y}]; dup {
			return nil, fmt.Errorf("%w: line %d: tile (%d, %d) listed twice", ErrInvalidMaze, line, e.x, e.y)
		}
		seen[Coord{e.x, e.y}] = struct{}{}
		for i := range e.walls {
			e.walls[i] = vals[2+i] != 0
		}
		entries = append(entries, e)
		width, height = max(width, e.x+1), max(height, e.y+1)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: read: %w", ErrInvalidMaze, err)
	}
	if len(entries) != width*height {
		return nil, fmt.Errorf("%w: %d tiles listed for a %dx%d maze", ErrInvalidMaze, len(entries), width, height)
	}
	b := NewBuilder(width, height)
	for _, e := range entries {
		for _, d := range Directions {
			b.SetWall(e.x, e.y, d, e.walls[d])
		}
	}
	return b.Build()
}

// LoadFile picks a loader by file extension (.yaml, .yml or .num).
func LoadFile(path string) (*Maze, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(f)
	case ".num":
		return LoadNum(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}
