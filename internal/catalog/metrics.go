package catalog

import "github.com/prometheus/client_golang/prometheus"

const (
	resultOK       = "ok"
	resultInvalid  = "invalid"
	resultNotFound = "not_found"
)

// QueryMetrics is optional; a nil *QueryMetrics records nothing.
type QueryMetrics struct {
	Queries  *prometheus.CounterVec
	Lookups  *prometheus.CounterVec
	Matches  prometheus.Histogram
	Products prometheus.Gauge
}

func NewQueryMetrics(reg prometheus.Registerer) *QueryMetrics {
	m := &QueryMetrics{
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_queries_total",
				Help: "Product listing queries by result",
			},
			[]string{"result"},
		),
		Lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_lookups_total",
				Help: "Product lookups by id, by result",
			},
			[]string{"result"},
		),
		Matches: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalog_query_matches",
				Help:    "Products matching the filters of a listing query",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
			},
		),
		Products: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_products",
				Help: "Products in the loaded catalog",
			},
		),
	}

	reg.MustRegister(m.Queries, m.Lookups, m.Matches, m.Products)
	return m
}

func (m *QueryMetrics) setCatalogSize(n int) {
	if m == nil {
		return
	}
	m.Products.Set(float64(n))
}

func (m *QueryMetrics) observeQuery(result string, matches int) {
	if m == nil {
		return
	}
	m.Queries.WithLabelValues(result).Inc()
	if result == resultOK {
		m.Matches.Observe(float64(matches))
	}
}

func (m *QueryMetrics) observeLookup(result string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(result).Inc()
}
