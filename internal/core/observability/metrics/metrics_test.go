package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/mazesim/internal/core/events/bus"
)

func TestObserveTick(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveTick(time.Millisecond, 2*time.Second, 3)
	m.ObserveTick(time.Millisecond, 3*time.Second, 2)

	require.Equal(t, 2.0, testutil.ToFloat64(m.Ticks))
	require.Equal(t, 3.0, testutil.ToFloat64(m.SimTime))
	require.Equal(t, 2.0, testutil.ToFloat64(m.ActiveMice))

	count, err := testutil.GatherAndCount(reg, "mazesim_tick_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestBusObserver(t *testing.T) {
	m := New(nil)
	b := bus.New()
	b.AddObserver(m)
	_, _ = b.Subscribe("mouse.crashed", func(bus.Event) error { return errors.New("boom") })

	require.Error(t, b.Publish(bus.NewEvent("mouse.crashed", "test", nil)))
	require.NoError(t, b.Publish(bus.NewEvent("mouse.tile_entered", "test", nil)))

	require.Equal(t, 1.0, testutil.ToFloat64(m.EventsHandled.WithLabelValues("mouse.crashed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.EventFailures.WithLabelValues("mouse.crashed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.EventsHandled.WithLabelValues("mouse.tile_entered")))
}
