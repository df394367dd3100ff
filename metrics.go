package cs1000

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "cs1000"

// Metrics exports driver activity to Prometheus. A nil *Metrics records nothing.
type Metrics struct {
	commands     *prometheus.CounterVec
	measurements *prometheus.CounterVec
	duration     prometheus.Histogram
	remote       prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "commands_total",
			Help:      "Commands written to the instrument.",
		}, []string{"command"}),
		measurements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "measurements_total",
			Help:      "Measurement cycles by outcome.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "measurement_duration_seconds",
			Help:      "Wall time of a full measurement cycle.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		remote: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "remote_enabled",
			Help:      "1 while the instrument is under remote control.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.commands, m.measurements, m.duration, m.remote)
	}
	return m
}

func (m *Metrics) command(cmd string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(cmd).Inc()
}

func (m *Metrics) setRemote(on bool) {
	if m == nil {
		return
	}
	if on {
		m.remote.Set(1)
	} else {
		m.remote.Set(0)
	}
}

func (m *Metrics) measurement(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.measurements.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.duration.Observe(elapsed.Seconds())
	}
}

func outcome(err error) string {
	var perr *ParseError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &perr):
		return "parse_error"
	default:
		return "transport_error"
	}
}
