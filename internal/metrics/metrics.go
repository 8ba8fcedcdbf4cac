// Package metrics exposes Prometheus counters for the ingestion pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gate result labels
const (
	ResultPass       = "pass"
	ResultReject     = "reject"
	ResultFailOpen   = "fail_open"
	ResultFailClosed = "fail_closed"
	ResultSkipped    = "skipped"
)

// Metrics records pipeline activity
type Metrics interface {
	ObserveSubmission(code string, durationSeconds float64)
	IncGateResult(gate, result string)
}

// Noop implements Metrics without emitting anything
type Noop struct{}

func (Noop) ObserveSubmission(string, float64) {}
func (Noop) IncGateResult(string, string)      {}

// Prom implements Metrics backed by Prometheus collectors
type Prom struct {
	submissions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	gates       *prometheus.CounterVec
}

// NewProm registers the pipeline collectors on reg
func NewProm(namespace string, reg prometheus.Registerer) *Prom {
	p := &Prom{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Submissions by outcome code",
		}, []string{"code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_duration_seconds",
			Help:      "Time from receipt to terminal outcome",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code"}),
		gates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_results_total",
			Help:      "Gate evaluations by gate and result",
		}, []string{"gate", "result"}),
	}
	reg.MustRegister(p.submissions, p.duration, p.gates)
	return p
}

func (p *Prom) ObserveSubmission(code string, durationSeconds float64) {
	p.submissions.WithLabelValues(code).Inc()
	p.duration.WithLabelValues(code).Observe(durationSeconds)
}

func (p *Prom) IncGateResult(gate, result string) {
	p.gates.WithLabelValues(gate, result).Inc()
}

// Handler returns an HTTP handler for /metrics
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
