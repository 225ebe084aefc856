package recorder

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	ticks         prometheus.Counter
	unavailable   *prometheus.CounterVec
	recording     prometheus.Gauge
	sessionsSaved prometheus.Counter
	flushFailures prometheus.Counter
}

// NewMetrics creates the recorder's metrics and registers them with reg. A nil
// reg leaves the metrics unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "irtl",
			Subsystem: "recorder",
			Name:      "ticks_total",
			Help:      "Number of polls of the telemetry source.",
		}),
		unavailable: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "irtl",
			Subsystem: "recorder",
			Name:      "unavailable_values_total",
			Help:      "Number of polls where the telemetry source returned no value for a channel.",
		}, []string{"channel"}),
		recording: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "irtl",
			Subsystem: "recorder",
			Name:      "recording",
			Help:      "1 while a session is being recorded.",
		}),
		sessionsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "irtl",
			Subsystem: "recorder",
			Name:      "sessions_saved_total",
			Help:      "Number of session files written.",
		}),
		flushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "irtl",
			Subsystem: "recorder",
			Name:      "flush_failures_total",
			Help:      "Number of sessions that could not be written.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.ticks, m.unavailable, m.recording, m.sessionsSaved, m.flushFailures)
	}

	return m
}
