package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
)

const metricsNamespace = "quote_catalog"

// CatalogMetrics counts catalog business events in Prometheus. The counters
// are exposed by the /-/metrics handler alongside the Go runtime collectors.
type CatalogMetrics struct {
	engagements *prometheus.CounterVec
	imports     *prometheus.CounterVec
}

// NewCatalogMetrics creates the catalog counters and registers them with reg.
// A nil reg registers with the Prometheus default registry.
func NewCatalogMetrics(reg prometheus.Registerer) (*CatalogMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &CatalogMetrics{
		engagements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "engagements_total",
			Help:      "Successful engagement actions on quotes.",
		}, []string{"action"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "import_records_total",
			Help:      "Import records processed, by result.",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{m.engagements, m.imports} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordEngagement increments the engagement counter for action.
func (m *CatalogMetrics) RecordEngagement(action domain.EngagementKind) {
	m.engagements.WithLabelValues(string(action)).Inc()
}

// RecordImport adds n records with the given result.
func (m *CatalogMetrics) RecordImport(result string, n int) {
	if n <= 0 {
		return
	}

	m.imports.WithLabelValues(result).Add(float64(n))
}
