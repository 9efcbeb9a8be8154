package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/navikenz/navihire/internal/realtime"
)

const namespace = "navihire"

var statuses = []realtime.Status{
	realtime.StatusDisconnected,
	realtime.StatusConnecting,
	realtime.StatusConnected,
	realtime.StatusReconnecting,
}

// Metrics implements realtime.Observer on top of Prometheus collectors.
type Metrics struct {
	// Status is 1 for the current connection status and 0 for the others.
	// Labels: status
	Status *prometheus.GaugeVec

	// Transitions counts status changes.
	// Labels: from, to
	Transitions *prometheus.CounterVec

	// Retries counts scheduled reconnect attempts.
	Retries prometheus.Counter

	// RetryDelay observes the wait before each scheduled attempt, in seconds.
	RetryDelay prometheus.Histogram

	// Received counts decoded inbound messages.
	// Labels: type
	Received *prometheus.CounterVec

	// Sent counts outbound frames.
	// Labels: kind (message|ping)
	Sent *prometheus.CounterVec

	// Dropped counts user messages that were not written.
	// Labels: status (the connection status at the time)
	Dropped *prometheus.CounterVec

	// ParseFailures counts inbound frames that could not be decoded.
	ParseFailures prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{
		Status: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "connection_status",
				Help:      "Current realtime connection status (1 for the active status)",
			},
			[]string{"status"},
		),
		Transitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connection_transitions_total",
				Help:      "Realtime connection status transitions",
			},
			[]string{"from", "to"},
		),
		Retries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnect_attempts_total",
			Help:      "Automatic reconnect attempts scheduled",
		}),
		RetryDelay: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconnect_delay_seconds",
			Help:      "Delay before each scheduled reconnect attempt",
			Buckets:   []float64{1, 3, 6, 9, 12, 15, 30, 60},
		}),
		Received: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_received_total",
				Help:      "Inbound chat messages by type",
			},
			[]string{"type"},
		),
		Sent: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_sent_total",
				Help:      "Outbound frames by kind",
			},
			[]string{"kind"},
		),
		Dropped: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_dropped_total",
				Help:      "User messages dropped because the session was not connected",
			},
			[]string{"status"},
		),
		ParseFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_failures_total",
			Help:      "Inbound frames dropped as malformed",
		}),
	}
	m.setStatus(realtime.StatusDisconnected)
	return m
}

func (m *Metrics) setStatus(current realtime.Status) {
	for _, s := range statuses {
		v := 0.0
		if s == current {
			v = 1
		}
		m.Status.WithLabelValues(s.String()).Set(v)
	}
}

func (m *Metrics) StatusChanged(from, to realtime.Status) {
	m.setStatus(to)
	m.Transitions.WithLabelValues(from.String(), to.String()).Inc()
}

func (m *Metrics) MessageReceived(msg realtime.InboundMessage) {
	typ := msg.Type
	if typ == "" {
		typ = "unknown"
	}
	m.Received.WithLabelValues(typ).Inc()
}

func (m *Metrics) MessageSent(kind string) {
	m.Sent.WithLabelValues(kind).Inc()
}

func (m *Metrics) MessageDropped(status realtime.Status) {
	m.Dropped.WithLabelValues(status.String()).Inc()
}

func (m *Metrics) ParseFailed(data []byte, err error) {
	m.ParseFailures.Inc()
}

func (m *Metrics) RetryScheduled(attempt int, delay time.Duration) {
	m.Retries.Inc()
	m.RetryDelay.Observe(delay.Seconds())
}
