package server

import "errors"

var (
	ErrInvalidConfig  = errors.New("server: invalid configuration")
	ErrUnknownAction  = errors.New("server: unknown control action")
	ErrFeedBufferFull = errors.New("server: feed client too slow")
)
