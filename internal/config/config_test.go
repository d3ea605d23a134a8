package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/mazesim/internal/core/mouse"
	"github.com/zeusync/mazesim/internal/core/observability/log"
)

const runFile = `
log_level: debug
tick_interval: 2ms
sim_speed: 4
collision_shape: parts
maze: mazes/classic.yaml
mice:
  - id: alpha
    description: mice/default.yaml
  - id: beta
    description: /abs/mouse.yaml
    algorithm: cruise
`

func TestDecode(t *testing.T) {
	c, err := Decode(strings.NewReader(runFile))
	require.NoError(t, err)
	require.Equal(t, 2*time.Millisecond, c.TickInterval)
	require.Equal(t, 4.0, c.SimSpeed)
	require.Equal(t, log.LevelDebug, c.Level())
	require.Equal(t, mouse.CollisionParts, c.Shape())
	require.Len(t, c.Mice, 2)
	require.Equal(t, "cruise", c.Mice[1].Algorithm)

	// untouched keys keep their defaults
	require.Equal(t, mouse.DefaultSensorRays, c.SensorRays)
	require.Equal(t, Default().ListenAddr, c.ListenAddr)
	require.Equal(t, 50*time.Millisecond, c.SnapshotInterval)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Default()
		c.Maze = "maze.num"
		c.Mice = []Mouse{{ID: "alpha", Description: "mouse.yaml"}}
		return c
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero tick", func(c *Config) { c.TickInterval = 0 }},
		{"negative speed", func(c *Config) { c.SimSpeed = -1 }},
		{"zero step", func(c *Config) { c.TickInterval, c.SimSpeed = time.Nanosecond, 0.5 }},
		{"no rays", func(c *Config) { c.SensorRays = 0 }},
		{"unknown shape", func(c *Config) { c.CollisionShape = "blob" }},
		{"unknown level", func(c *Config) { c.LogLevel = "chatty" }},
		{"no snapshot interval", func(c *Config) { c.SnapshotInterval = 0 }},
		{"no maze", func(c *Config) { c.Maze = "" }},
		{"no mice", func(c *Config) { c.Mice = nil }},
		{"duplicate id", func(c *Config) { c.Mice = append(c.Mice, c.Mice[0]) }},
		{"missing id", func(c *Config) { c.Mice[0].ID = "" }},
		{"missing description", func(c *Config) { c.Mice[0].Description = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(&c)
			require.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("maze: a.num\nmice: [{id: a, description: b}]\nspeed: 3\n"))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(runFile), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "mazes", "classic.yaml"), c.Maze)
	require.Equal(t, filepath.Join(dir, "mice", "default.yaml"), c.Mice[0].Description)
	require.Equal(t, "/abs/mouse.yaml", c.Mice[1].Description)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
