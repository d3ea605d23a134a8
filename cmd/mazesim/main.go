package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/mazesim/internal/config"
	"github.com/zeusync/mazesim/internal/core/observability/log"
	"github.com/zeusync/mazesim/internal/injector"
)

func main() {
	configPath := flag.String("config", "configs/run.yaml", "path to the run configuration")
	listen := flag.String("listen", "", "override listen_addr from the run configuration")
	speed := flag.Float64("speed", 0, "override sim_speed from the run configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	if *speed > 0 {
		cfg.SimSpeed = *speed
	}
	if err = cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error in config:", err)
		os.Exit(1)
	}

	app, cleanup, err := injector.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error building simulation:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	runErr := app.Runner.Run(ctx)
	stop()
	cleanup()
	if runErr != nil {
		app.Logger.Error("Simulation failed", log.Error(runErr))
	}
	_ = app.Logger.Sync()
	if runErr != nil {
		os.Exit(1)
	}
}
