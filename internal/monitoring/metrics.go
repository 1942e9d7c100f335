package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ExtractionsTotal *prometheus.CounterVec
	StrategyHits     *prometheus.CounterVec
	FailuresTotal    *prometheus.CounterVec
	ProxyBytesTotal  prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		ExtractionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mediagrab_extractions_total",
			Help: "The total number of extraction requests started",
		}, nil),
		StrategyHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mediagrab_strategy_hits_total",
			Help: "Successful extractions by winning strategy",
		}, []string{"strategy"}),
		FailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mediagrab_failures_total",
			Help: "Failed extractions by reason",
		}, []string{"reason"}), // e.g. 'exhausted', 'bad_input'
		ProxyBytesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mediagrab_proxy_bytes_total",
			Help: "Bytes streamed through the proxy endpoint",
		}),
	}
}

// ExtractionStarted implements extract.Observer.
func (m *Metrics) ExtractionStarted() {
	m.ExtractionsTotal.WithLabelValues().Inc()
}

// StrategyHit implements extract.Observer.
func (m *Metrics) StrategyHit(strategy string) {
	m.StrategyHits.WithLabelValues(strategy).Inc()
}

// ExtractionFailed implements extract.Observer.
func (m *Metrics) ExtractionFailed(reason string) {
	m.FailuresTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) AddProxyBytes(n int64) {
	m.ProxyBytesTotal.Add(float64(n))
}
