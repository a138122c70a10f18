package communicator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sirosfoundation/go-emandates/pkg/emandate"
)

// Metrics counts operations by outcome and records their latency. A nil
// *Metrics records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emandates",
			Name:      "operations_total",
			Help:      "Operations performed against the acquirer, by outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "emandates",
			Name:      "operation_duration_seconds",
			Help:      "Time from building the request to parsing the response.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.operations, m.duration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) observe(op emandate.Operation, outcome emandate.OutcomeKind, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(string(op), outcome.String()).Inc()
	m.duration.WithLabelValues(string(op)).Observe(elapsed.Seconds())
}
