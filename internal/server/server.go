package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zeusync/mazesim/internal/core/events/bus"
	"github.com/zeusync/mazesim/internal/core/observability/log"
	"github.com/zeusync/mazesim/internal/core/observability/metrics"
	"github.com/zeusync/mazesim/internal/core/world"
)

// Simulation is the part of the World the feed reads and steers.
type Simulation interface {
	Snapshot() world.Snapshot
	Pause()
	Resume()
	PauseMouse(id string) error
	ResumeMouse(id string) error
}

// Config holds feed server configuration
type Config struct {
	ListenAddr       string
	SnapshotInterval time.Duration
	// ClientBuffer is the number of outgoing messages queued per client
	// before it is dropped.
	ClientBuffer    int
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:       "127.0.0.1:8080",
		SnapshotInterval: 50 * time.Millisecond,
		ClientBuffer:     64,
		WriteTimeout:     5 * time.Second,
		ShutdownTimeout:  5 * time.Second,
	}
}

func (c Config) validate() error {
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("%w: snapshot interval %v", ErrInvalidConfig, c.SnapshotInterval)
	}
	if c.ClientBuffer <= 0 {
		return fmt.Errorf("%w: client buffer %d", ErrInvalidConfig, c.ClientBuffer)
	}
	return nil
}

// Server streams world snapshots and events to websocket clients and
// exposes prometheus metrics.
type Server struct {
	config   Config
	sim      Simulation
	events   bus.EventBus
	gatherer prometheus.Gatherer
	metrics  *metrics.Simulation
	logger   log.Log

	mu      sync.Mutex
	clients map[*client]struct{}

	subs []bus.Subscription
}

// New creates a feed server. events may be nil when no live event
// forwarding is wanted; gatherer may be nil to disable /metrics.
func New(config Config, sim Simulation, events bus.EventBus, gatherer prometheus.Gatherer, m *metrics.Simulation, logger log.Log) (*Server, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if sim == nil {
		return nil, fmt.Errorf("%w: nil simulation", ErrInvalidConfig)
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Server{
		config:   config,
		sim:      sim,
		events:   events,
		gatherer: gatherer,
		metrics:  m,
		logger:   logger.Named("server"),
		clients:  make(map[*client]struct{}),
	}
	if events != nil {
		for _, typ := range []string{world.EventTileEntered, world.EventCrashed} {
			sub, err := events.Subscribe(typ, s.forwardEvent)
			if err != nil {
				return nil, err
			}
			s.subs = append(s.subs, sub)
		}
	}
	return s, nil
}

// Handler routes /feed, /snapshot, /metrics and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", s.handleFeed)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// Run serves on ListenAddr and broadcasts snapshots until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.config.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()
	s.logger.Info("Feed server started", log.String("addr", ln.Addr().String()))

	ticker := time.NewTicker(s.config.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.broadcastSnapshot()
		case err := <-errCh:
			s.closeClients()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			s.closeClients()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Warn("Feed server shutdown failed", log.Error(err))
			}
			s.logger.Info("Feed server stopped")
			return nil
		}
	}
}

// Close detaches the server from the event bus and disconnects clients.
func (s *Server) Close() error {
	for _, sub := range s.subs {
		_ = sub.Cancel()
	}
	s.subs = nil
	s.closeClients()
	return nil
}

// ClientCount is the number of connected feed clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
