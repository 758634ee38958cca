package azddns

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors updated by a Client.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	updates     prometheus.Counter
	failures    *prometheus.CounterVec
	lastSuccess prometheus.Gauge
	interval    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "azddns_updates_total",
			Help: "Number of successful record-set updates.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "azddns_failures_total",
			Help: "Number of failed update cycles by stage.",
		}, []string{"stage"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "azddns_last_success_timestamp_seconds",
			Help: "Unix time of the last successful update.",
		}),
		interval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "azddns_update_interval_minutes",
			Help: "Configured time between update cycles.",
		}),
	}
	for _, c := range []prometheus.Collector{m.updates, m.failures, m.lastSuccess, m.interval} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// WithMetrics makes the client record its activity in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) error {
		c.metrics = m
		return nil
	}
}

func (m *Metrics) succeeded() {
	if m == nil {
		return
	}
	m.updates.Inc()
	m.lastSuccess.SetToCurrentTime()
}

func (m *Metrics) failed(stage string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(stage).Inc()
}

func (m *Metrics) setInterval(d time.Duration) {
	if m == nil {
		return
	}
	m.interval.Set(float64(d / time.Minute))
}
