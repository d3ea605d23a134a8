package mouse

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/mazesim/internal/core/geometry"
)

// Description is the declarative form of a mouse. Coordinates are in meters
// and place the mouse in the maze frame at the start of a run; angles are in
// degrees, counter-clockwise from the +x axis.
type Description struct {
	Body               []geometry.Point    `json:"body" yaml:"body"`
	Wheels             WheelsDescription   `json:"wheels" yaml:"wheels"`
	Sensors            []SensorDescription `json:"sensors,omitempty" yaml:"sensors,omitempty"`
	MaxAngularVelocity float64             `json:"max_angular_velocity,omitempty" yaml:"max_angular_velocity,omitempty"`
}

type WheelsDescription struct {
	Left  WheelDescription `json:"left" yaml:"left"`
	Right WheelDescription `json:"right" yaml:"right"`
}

type WheelDescription struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Radius float64 `json:"radius" yaml:"radius"`
	Width  float64 `json:"width" yaml:"width"`
}

// SensorDescription describes a range sensor. The view cone is either the
// explicit View outline, whose first vertex must be the mount point, or an
// arc of Range meters spanning HalfWidth degrees on each side of Direction.
type SensorDescription struct {
	Name      string           `json:"name" yaml:"name"`
	X         float64          `json:"x" yaml:"x"`
	Y         float64          `json:"y" yaml:"y"`
	Direction float64          `json:"direction" yaml:"direction"`
	Radius    float64          `json:"radius" yaml:"radius"`
	Range     float64          `json:"range,omitempty" yaml:"range,omitempty"`
	HalfWidth float64          `json:"half_width,omitempty" yaml:"half_width,omitempty"`
	View      []geometry.Point `json:"view,omitempty" yaml:"view,omitempty"`
	ReadTime  time.Duration    `json:"read_time" yaml:"read_time"`
}

// LoadYAML decodes a mouse description from YAML.
func LoadYAML(r io.Reader) (Description, error) {
	var d Description
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return Description{}, fmt.Errorf("%w: decode yaml: %w", ErrInvalidDescription, err)
	}
	return d, nil
}

// LoadJSON decodes a mouse description from JSON.
func LoadJSON(r io.Reader) (Description, error) {
	var d Description
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Description{}, fmt.Errorf("%w: decode json: %w", ErrInvalidDescription, err)
	}
	return d, nil
}

// LoadFile picks a decoder by file extension.
func LoadFile(path string) (Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return Description{}, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(f)
	}
	return LoadYAML(f)
}
