package maze

// Direction names one side of a tile.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

var directionNames = [...]string{"north", "east", "south", "west"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "unknown"
}

// Opposite returns the direction facing d across a shared wall.
func (d Direction) Opposite() Direction { return (d + 2) % 4 }

// Offset returns the grid step taken when leaving a tile through side d.
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case North:
		return 0, 1
	case East:
		return 1, 0
	case South:
		return 0, -1
	default:
		return -1, 0
	}
}

// Directions lists every side in clockwise order starting at North.
var Directions = [4]Direction{North, East, South, West}

// Coord is a discretized tile location; x grows east, y grows north.
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Tile is the wall state of one grid cell.
type Tile struct {
	Coord
	Walls [4]bool
}

// HasWall reports whether side d of the tile is walled.
func (t Tile) HasWall(d Direction) bool { return t.Walls[d] }
