package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	dayOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "turnboard",
			Name:      "day_operations_total",
			Help:      "Count of day mutations by operation.",
		},
		[]string{"op"},
	)

	daysClosed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "turnboard",
			Name:      "days_closed_total",
			Help:      "Count of days closed.",
		},
	)

	recommendations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "turnboard",
			Name:      "recommendations_total",
			Help:      "Count of recommendation queries by turn type.",
		},
		[]string{"turn_type"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "turnboard",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(dayOps, daysClosed, recommendations, httpRequests)
	})
}

func IncDayOp(op string) {
	dayOps.WithLabelValues(op).Inc()
}

func IncDayClosed() {
	daysClosed.Inc()
}

func IncRecommendation(turnType string) {
	recommendations.WithLabelValues(turnType).Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
