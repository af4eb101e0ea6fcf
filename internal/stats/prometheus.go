package stats

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink mirrors scheduler counter paths into Prometheus
// collectors, partitioned by the counter path itself.
type PrometheusSink struct {
	events *prometheus.CounterVec
	values *prometheus.GaugeVec
}

// NewPrometheusSink registers the collectors against the provided
// registry. A nil registerer falls back to the default one.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crawlsched_events_total",
			Help: "Scheduler counter increments partitioned by counter path.",
		}, []string{"key"}),
		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "crawlsched_value",
			Help: "Scheduler gauge values partitioned by counter path.",
		}, []string{"key"}),
	}
	for _, collector := range []prometheus.Collector{s.events, s.values} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register stats collector: %w", err)
		}
	}
	return s, nil
}

// IncValue adds amount to the counter labeled with the given path.
func (s *PrometheusSink) IncValue(name string, amount int64) {
	s.events.WithLabelValues(name).Add(float64(amount))
}

// SetValue sets the gauge labeled with the given path.
func (s *PrometheusSink) SetValue(name string, value int64) {
	s.values.WithLabelValues(name).Set(float64(value))
}
