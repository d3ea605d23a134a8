package mouse

import "errors"

var (
	// Configuration faults, returned from New.

	ErrInvalidDescription = errors.New("invalid mouse description")
	ErrAsymmetricAxle     = errors.New("wheels do not share an axle")
	ErrDuplicateSensor    = errors.New("duplicate sensor name")

	// Query and actuation faults.

	ErrNoSuchSensor      = errors.New("no such sensor")
	ErrInvalidWheelSpeed = errors.New("invalid wheel speed")
	ErrWheelSpeedLimit   = errors.New("wheel speed exceeds limit")

	// ErrDegenerateView reports a sensor whose view cone has no area at read time.
	ErrDegenerateView = errors.New("sensor view has zero area")
)
