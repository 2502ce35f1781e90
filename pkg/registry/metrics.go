package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

type metrics struct {
	constructions *prometheus.CounterVec
	connections   prometheus.Gauge
}

// newMetrics builds the collectors. A nil registerer leaves them unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		constructions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ppp",
			Subsystem: "registry",
			Name:      "constructions_total",
			Help:      "Connection constructions by backend type and result.",
		}, []string{"type", "result"}),
		connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "ppp",
			Subsystem: "registry",
			Name:      "connections",
			Help:      "Live connections held by the registry.",
		}),
	}
}

func (m *metrics) constructed(typ string, err error) {
	result := resultSuccess
	if err != nil {
		result = resultFailure
	}
	m.constructions.WithLabelValues(typ, result).Inc()
}
