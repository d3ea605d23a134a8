package mouse

import "sync"

// WheelSpeeds is a pair of wheel angular velocities in rad/s.
type WheelSpeeds struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Drive holds the actuator state shared by the controller and the
// simulation. Set and Get always move both speeds together.
type Drive struct {
	mu     sync.Mutex
	speeds WheelSpeeds
}

// Set replaces both wheel speeds at once.
func (d *Drive) Set(speeds WheelSpeeds) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.speeds = speeds
}

// Get returns both wheel speeds as they were last set.
func (d *Drive) Get() WheelSpeeds {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.speeds
}
