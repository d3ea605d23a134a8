package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zeusync/mazesim/internal/core/events/bus"
)

const namespace = "mazesim"

// Simulation holds the collectors fed by the simulation loop and the event bus.
type Simulation struct {
	Ticks         prometheus.Counter
	TickDuration  prometheus.Histogram
	SimTime       prometheus.Gauge
	ActiveMice    prometheus.Gauge
	Collisions    *prometheus.CounterVec
	TilesEntered  *prometheus.CounterVec
	EventsHandled *prometheus.CounterVec
	EventFailures *prometheus.CounterVec
	SensorReads   *prometheus.CounterVec
	SnapshotsSent prometheus.Counter
	FeedClients   prometheus.Gauge
}

// New creates the collectors and registers them on reg. A nil reg leaves them
// unregistered, which is what tests that do not scrape want.
func New(reg prometheus.Registerer) *Simulation {
	m := &Simulation{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Number of simulation ticks executed",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock time spent inside one simulation tick",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		SimTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sim_time_seconds",
			Help:      "Current simulation clock",
		}),
		ActiveMice: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_mice",
			Help:      "Mice that are neither crashed nor paused",
		}),
		Collisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collisions_total",
			Help:      "Mice that crashed into a wall or left the maze",
		}, []string{"mouse"}),
		TilesEntered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tiles_entered_total",
			Help:      "Tile changes observed per mouse",
		}, []string{"mouse"}),
		EventsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Events delivered through the in-process bus",
		}, []string{"type"}),
		EventFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_handler_failures_total",
			Help:      "Bus deliveries where at least one handler failed",
		}, []string{"type"}),
		SensorReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_reads_total",
			Help:      "Sensor reads issued by navigation algorithms",
		}, []string{"mouse", "sensor"}),
		SnapshotsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_snapshots_sent_total",
			Help:      "Snapshots written to feed clients",
		}),
		FeedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_clients",
			Help:      "Connected snapshot feed clients",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.Ticks, m.TickDuration, m.SimTime, m.ActiveMice,
			m.Collisions, m.TilesEntered, m.EventsHandled, m.EventFailures,
			m.SensorReads, m.SnapshotsSent, m.FeedClients,
		)
	}
	return m
}

// ObserveTick records one finished tick.
func (m *Simulation) ObserveTick(took, simTime time.Duration, active int) {
	m.Ticks.Inc()
	m.TickDuration.Observe(took.Seconds())
	m.SimTime.Set(simTime.Seconds())
	m.ActiveMice.Set(float64(active))
}

var _ bus.Observer = (*Simulation)(nil)

func (m *Simulation) OnPublish(string, bus.Event) {}

func (m *Simulation) OnDelivered(eventType string, _ int, err error, _ time.Duration) {
	m.EventsHandled.WithLabelValues(eventType).Inc()
	if err != nil {
		m.EventFailures.WithLabelValues(eventType).Inc()
	}
}
