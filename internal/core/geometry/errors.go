package geometry

import "errors"

var (
	ErrDegeneratePolygon = errors.New("degenerate polygon")
	ErrNonFiniteVertex   = errors.New("non-finite vertex")
)
