package analytics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusSink counts events by name.
//
// Metrics:
//   - projectd_analytics_events_total{event} - Count of analytics events
type PrometheusSink struct {
	events *prometheus.CounterVec
}

// NewPrometheusSink registers the counter on reg.
// Pass prometheus.DefaultRegisterer to expose it on the default /metrics.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	return &PrometheusSink{
		events: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "projectd_analytics_events_total",
				Help: "Total number of project analytics events",
			},
			[]string{"event"},
		),
	}
}

func (s *PrometheusSink) Log(_ context.Context, e Event) {
	s.events.WithLabelValues(string(e.Name)).Inc()
}
