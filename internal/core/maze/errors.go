package maze

import "errors"

var (
	ErrInvalidMaze   = errors.New("invalid maze")
	ErrOutOfBounds   = errors.New("tile out of bounds")
	ErrUnknownFormat = errors.New("unknown maze file format")
)
