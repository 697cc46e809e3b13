package compile

import "github.com/prometheus/client_golang/prometheus"

// Metrics instruments batch compilation. Create one per registry and
// share it across batches.
type Metrics struct {
	compiles *prometheus.CounterVec
	terms    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the compile metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		compiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aclgen_compiles_total",
			Help: "Documents compiled, by target and status.",
		}, []string{"target", "status"}),
		terms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aclgen_terms_compiled_total",
			Help: "Terms in successfully compiled documents, by target.",
		}, []string{"target"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aclgen_compile_duration_seconds",
			Help:    "Wall time per document compilation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"target"}),
	}
	reg.MustRegister(m.compiles, m.terms, m.duration)
	return m
}

func (m *Metrics) observe(job Job, res Result) {
	target := string(job.Target)
	status := "ok"
	if res.Err != nil {
		status = "error"
	}
	m.compiles.WithLabelValues(target, status).Inc()
	m.duration.WithLabelValues(target).Observe(res.Duration.Seconds())
	if res.Err == nil {
		m.terms.WithLabelValues(target).Add(float64(len(job.Doc.Terms)))
	}
}
