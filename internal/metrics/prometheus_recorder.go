package metrics

import (
	"errors"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	runDuration   prom.Histogram
	stageResults  *prom.CounterVec
	runOutcome    *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the pipeline metrics.
// Constructing a second recorder against the same registry reuses the
// collectors registered by the first instead of panicking.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	return &PrometheusRecorder{
		stageDuration: register(reg, prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "blogsmith",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})),
		runDuration: register(reg, prom.NewHistogram(prom.HistogramOpts{
			Namespace: "blogsmith",
			Name:      "run_duration_seconds",
			Help:      "Total pipeline run duration",
			Buckets:   prom.DefBuckets,
		})),
		stageResults: register(reg, prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogsmith",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})),
		runOutcome: register(reg, prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogsmith",
			Name:      "run_outcomes_total",
			Help:      "Pipeline run outcomes by final status",
		}, []string{"outcome"})),
	}
}

// register adds c to the registry, handing back the previously registered
// collector when the same metric already exists.
func register[C prom.Collector](reg prom.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var already prom.AlreadyRegisteredError
	if errors.As(err, &already) {
		return already.ExistingCollector.(C)
	}
	panic(err)
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncRunOutcome(outcome string) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(outcome).Inc()
}
