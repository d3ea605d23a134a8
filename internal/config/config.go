package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/mazesim/internal/core/mouse"
	"github.com/zeusync/mazesim/internal/core/observability/log"
)

var ErrInvalidConfig = errors.New("config: invalid run configuration")

// Config describes one simulation run.
type Config struct {
	LogLevel         string        `yaml:"log_level"`
	TickInterval     time.Duration `yaml:"tick_interval"`
	SimSpeed         float64       `yaml:"sim_speed"`
	SensorRays       int           `yaml:"sensor_rays"`
	CollisionShape   string        `yaml:"collision_shape"`
	Maze             string        `yaml:"maze"`
	Mice             []Mouse       `yaml:"mice"`
	ListenAddr       string        `yaml:"listen_addr"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
}

// Mouse names one mouse of the run and the file describing its hardware.
type Mouse struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	// Algorithm selects the navigation algorithm driving this mouse.
	Algorithm string `yaml:"algorithm"`
}

func Default() Config {
	return Config{
		LogLevel:         "info",
		TickInterval:     5 * time.Millisecond,
		SimSpeed:         1,
		SensorRays:       mouse.DefaultSensorRays,
		CollisionShape:   mouse.CollisionHull.String(),
		ListenAddr:       "127.0.0.1:8080",
		SnapshotInterval: 50 * time.Millisecond,
	}
}

// Decode reads a YAML run file on top of the defaults.
func Decode(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return c, c.Validate()
}

// Load reads the run file at path. Relative maze and mouse description paths
// are resolved against the file's directory.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	c.Maze = resolve(dir, c.Maze)
	for i := range c.Mice {
		c.Mice[i].Description = resolve(dir, c.Mice[i].Description)
	}
	return c, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Validate reports the first problem found in c.
func (c Config) Validate() error {
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick_interval must be positive, got %v", ErrInvalidConfig, c.TickInterval)
	}
	if !(c.SimSpeed > 0) {
		return fmt.Errorf("%w: sim_speed must be positive, got %v", ErrInvalidConfig, c.SimSpeed)
	}
	if time.Duration(float64(c.TickInterval)*c.SimSpeed) <= 0 {
		return fmt.Errorf("%w: tick_interval %v at sim_speed %v rounds to a zero step", ErrInvalidConfig, c.TickInterval, c.SimSpeed)
	}
	if c.SensorRays < 1 {
		return fmt.Errorf("%w: sensor_rays must be at least 1, got %d", ErrInvalidConfig, c.SensorRays)
	}
	if _, err := mouse.ParseCollisionShape(c.CollisionShape); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("%w: snapshot_interval must be positive, got %v", ErrInvalidConfig, c.SnapshotInterval)
	}
	if c.Maze == "" {
		return fmt.Errorf("%w: no maze given", ErrInvalidConfig)
	}
	if len(c.Mice) == 0 {
		return fmt.Errorf("%w: no mice given", ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(c.Mice))
	for i, m := range c.Mice {
		if m.ID == "" {
			return fmt.Errorf("%w: mouse %d has no id", ErrInvalidConfig, i)
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("%w: duplicate mouse id %q", ErrInvalidConfig, m.ID)
		}
		seen[m.ID] = struct{}{}
		if m.Description == "" {
			return fmt.Errorf("%w: mouse %q has no description file", ErrInvalidConfig, m.ID)
		}
	}
	return nil
}

// Level is the parsed log level.
func (c Config) Level() log.Level {
	l, _ := log.ParseLevel(c.LogLevel)
	return l
}

func (c Config) Shape() mouse.CollisionShape {
	s, _ := mouse.ParseCollisionShape(c.CollisionShape)
	return s
}
