package metrics

import (
	"time"

	"comida-a-casa/internal/shared"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors exposes generation metrics to Prometheus.
type Collectors struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	tokens   *prometheus.CounterVec
}

// NewCollectors creates the collectors and registers them on reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "comidaacasa",
			Name:      "generation_requests_total",
			Help:      "Generation calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "comidaacasa",
			Name:      "generation_latency_seconds",
			Help:      "Latency of generation calls.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"operation"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "comidaacasa",
			Name:      "generation_tokens_total",
			Help:      "Tokens consumed by generation calls.",
		}, []string{"operation", "kind"}),
	}
	reg.MustRegister(c.requests, c.latency, c.tokens)
	return c
}

// RecordGeneration implements llm.Recorder.
func (c *Collectors) RecordGeneration(operation string, usage shared.TokenUsage, latency time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	c.requests.WithLabelValues(operation, outcome).Inc()
	c.latency.WithLabelValues(operation).Observe(latency.Seconds())
	c.tokens.WithLabelValues(operation, "prompt").Add(float64(usage.PromptTokens))
	c.tokens.WithLabelValues(operation, "completion").Add(float64(usage.CompletionTokens))
}
