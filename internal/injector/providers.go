package injector

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/zeusync/mazesim/internal/config"
	"github.com/zeusync/mazesim/internal/core/events/bus"
	"github.com/zeusync/mazesim/internal/core/observability/log"
	"github.com/zeusync/mazesim/internal/core/observability/metrics"
	"github.com/zeusync/mazesim/internal/core/world"
	"github.com/zeusync/mazesim/internal/runner"
	"github.com/zeusync/mazesim/internal/server"
)

// App is a fully wired simulation run.
type App struct {
	Runner *runner.Runner
	Logger *log.Logger
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideRegistry,
	wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
	ProvideMetrics,
	ProvideBus,
	runner.NewWorld,
	ProvideServer,
	ProvideRunner,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg config.Config) *log.Logger {
	return log.New(cfg.Level())
}

// ProvideRegistry returns a registry carrying the Go runtime and process
// collectors next to the simulation metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func ProvideMetrics(reg *prometheus.Registry) *metrics.Simulation {
	return metrics.New(reg)
}

// ProvideBus returns the run's event bus with metrics observing deliveries.
func ProvideBus(m *metrics.Simulation) bus.EventBus {
	b := bus.New()
	b.AddObserver(m)
	return b
}

func ProvideServer(cfg config.Config, w *world.World, b bus.EventBus, g prometheus.Gatherer, m *metrics.Simulation, logger log.Log) (*server.Server, func(), error) {
	sc := server.DefaultConfig()
	sc.ListenAddr = cfg.ListenAddr
	sc.SnapshotInterval = cfg.SnapshotInterval
	srv, err := server.New(sc, w, b, g, m, logger)
	if err != nil {
		return nil, nil, err
	}
	return srv, func() { _ = srv.Close() }, nil
}

func ProvideRunner(cfg config.Config, w *world.World, srv *server.Server, m *metrics.Simulation, logger log.Log) (*runner.Runner, error) {
	return runner.New(cfg, w, runner.DefaultRegistry(), m, logger, srv)
}
