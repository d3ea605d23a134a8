package world

import "errors"

var (
	ErrInvalidConfig  = errors.New("world: invalid config")
	ErrUnknownMouse   = errors.New("world: unknown mouse")
	ErrDuplicateMouse = errors.New("world: duplicate mouse id")
	ErrMouseCrashed   = errors.New("world: mouse has crashed")
	ErrOffGrid        = errors.New("world: mouse starts outside the maze")
	ErrClosed         = errors.New("world: closed")
)
