package live

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics

	// Instrumentation is optional; every method must be a no-op on nil.
	m.SessionStarted()
	m.SessionClosed()
	m.FrameReceived()
	m.FrameSent()
	m.DecodeError()
	m.BroadcastSent()
	m.DeltaDelivered()
	m.MountResult(MountOK)
	m.CleanupBroadcast()
	m.WriteError()
	m.ReadError()
}

func TestMetrics_CountsSessions(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(registry))

	m.SessionStarted()
	m.SessionStarted()
	m.SessionClosed()

	if got := testutil.ToFloat64(m.sessionsActive); got != 1 {
		t.Errorf("sessions_active = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.sessionsTotal); got != 2 {
		t.Errorf("sessions_total = %v, want 2", got)
	}
}

func TestMetrics_MountResults(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(registry), WithNamespace("test"))

	m.MountResult(MountOK)
	m.MountResult(MountOK)
	m.MountResult(MountTimeout)

	if got := testutil.ToFloat64(m.mountsTotal.WithLabelValues(MountOK)); got != 2 {
		t.Errorf("mounts_total{result=%q} = %v, want 2", MountOK, got)
	}
	if got := testutil.ToFloat64(m.mountsTotal.WithLabelValues(MountTimeout)); got != 1 {
		t.Errorf("mounts_total{result=%q} = %v, want 1", MountTimeout, got)
	}
}
