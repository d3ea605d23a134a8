package injector

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/mazesim/internal/config"
)

func TestInitializeApp(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maze.num"), []byte("0 0 1 1 1 1\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mouse.yaml"), []byte(`
body: [{x: 0.06, y: 0.04}, {x: 0.12, y: 0.04}, {x: 0.12, y: 0.10}, {x: 0.06, y: 0.10}]
wheels:
  left: {x: 0.06, y: 0.07, radius: 0.015, width: 0.008}
  right: {x: 0.12, y: 0.07, radius: 0.015, width: 0.008}
`), 0o600))

	cfg := config.Default()
	cfg.LogLevel = "error"
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.Maze = filepath.Join(dir, "maze.num")
	cfg.Mice = []config.Mouse{{ID: "alpha", Description: filepath.Join(dir, "mouse.yaml")}}
	require.NoError(t, cfg.Validate())

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	defer cleanup()
	require.NotNil(t, app.Logger)
	require.Equal(t, []string{"alpha"}, app.Runner.World().MouseIDs())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, app.Runner.Run(ctx))
	require.Positive(t, app.Runner.World().SimTime())
}

func TestInitializeAppBadMaze(t *testing.T) {
	cfg := config.Default()
	cfg.Maze = filepath.Join(t.TempDir(), "nowhere.num")
	cfg.Mice = []config.Mouse{{ID: "alpha", Description: "mouse.yaml"}}
	_, _, err := InitializeApp(cfg)
	require.Error(t, err)
}
