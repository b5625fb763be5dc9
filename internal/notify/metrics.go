package notify

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts the outcome of every alert the dispatcher considers.
type Metrics struct {
	published  prometheus.Counter
	suppressed prometheus.Counter
	failed     prometheus.Counter
	cycles     *prometheus.CounterVec
}

// NewMetrics registers the alert counters on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smartspend",
			Name:      "alerts_published_total",
			Help:      "Budget alerts published to the broker.",
		}),
		suppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smartspend",
			Name:      "alerts_suppressed_total",
			Help:      "Budget alerts skipped because they were published recently.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smartspend",
			Name:      "alerts_failed_total",
			Help:      "Budget alerts that could not be published.",
		}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartspend",
			Name:      "alert_cycles_total",
			Help:      "Alert dispatch cycles by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{m.published, m.suppressed, m.failed, m.cycles} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
