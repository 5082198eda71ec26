package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hrygo/acutie/plugin/ai/gateway"
	"github.com/hrygo/acutie/plugin/ai/router"
	"github.com/hrygo/acutie/plugin/ai/session"
)

const namespace = "acutie"

// Crisis decision outcomes.
const (
	CrisisDetected = "crisis"
	CrisisClear    = "clear"
	// CrisisKeywordOnly is a keyword hit whose model scores were unavailable.
	CrisisKeywordOnly = "keyword_only"
)

// Recorder exports collectors to a Prometheus registry and mirrors them in
// an Aggregator. It implements gateway.Observer and session.Observer.
type Recorder struct {
	turns         *prometheus.CounterVec
	turnDuration  *prometheus.HistogramVec
	activeTurns   prometheus.Gauge
	modelCalls    *prometheus.CounterVec
	modelDuration *prometheus.HistogramVec
	modelRetries  *prometheus.CounterVec
	crisis        *prometheus.CounterVec
	crisisScore   prometheus.Histogram
	sessionLoads  *prometheus.CounterVec
	saveFailures  prometheus.Counter

	agg *Aggregator
}

// NewRecorder registers the collectors with reg. A nil reg uses a private registry.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Recorder{
		turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Processed user messages by route and outcome.",
		}, []string{"route", "outcome"}),
		turnDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "End-to-end latency of a processed message.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"route"}),
		activeTurns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_turns",
			Help:      "Messages currently being processed.",
		}),
		modelCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Gateway invocations by task, provider and outcome.",
		}, []string{"task", "provider", "outcome"}),
		modelDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Gateway invocation latency including retries.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"task"}),
		modelRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_retries_total",
			Help:      "Extra attempts spent on retryable model failures.",
		}, []string{"task"}),
		crisis: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crisis_decisions_total",
			Help:      "Crisis ensemble decisions by outcome.",
		}, []string{"outcome"}),
		crisisScore: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "crisis_confidence",
			Help:      "Combined crisis ensemble score.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		sessionLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_loads_total",
			Help:      "Session state loads by source tier.",
		}, []string{"source"}),
		saveFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_save_failures_total",
			Help:      "Turns whose state could not be durably saved.",
		}),
		agg: NewAggregator(),
	}
}

// TurnStarted marks a message as in flight.
func (r *Recorder) TurnStarted() {
	r.activeTurns.Inc()
}

// ObserveTurn records a finished message.
func (r *Recorder) ObserveTurn(route string, latency time.Duration, success bool) {
	r.activeTurns.Dec()
	outcome := "ok"
	if !success {
		outcome = "error"
	}
	r.turns.WithLabelValues(route, outcome).Inc()
	r.turnDuration.WithLabelValues(route).Observe(latency.Seconds())
	r.agg.RecordTurn(route, latency, success)
}

// ObserveModelCall implements gateway.Observer.
func (r *Recorder) ObserveModelCall(cfg router.ModelConfig, kind gateway.ErrorKind, attempts int, latency time.Duration) {
	task := string(cfg.Task)
	outcome := "ok"
	if kind != "" {
		outcome = string(kind)
	}
	r.modelCalls.WithLabelValues(task, cfg.Provider, outcome).Inc()
	r.modelDuration.WithLabelValues(task).Observe(latency.Seconds())
	if attempts > 1 {
		r.modelRetries.WithLabelValues(task).Add(float64(attempts - 1))
	}
	r.agg.RecordModelCall(task, string(kind), attempts, latency)
}

// ObserveCrisis records one ensemble decision.
func (r *Recorder) ObserveCrisis(outcome string, confidence float64) {
	r.crisis.WithLabelValues(outcome).Inc()
	r.crisisScore.Observe(confidence)
}

// ObserveLoad implements session.Observer.
func (r *Recorder) ObserveLoad(source session.Source) {
	r.sessionLoads.WithLabelValues(string(source)).Inc()
}

// ObserveSaveFailure counts a turn whose progress may be lost.
func (r *Recorder) ObserveSaveFailure() {
	r.saveFailures.Inc()
}

// Stats returns the in-process summary.
func (r *Recorder) Stats() *Stats {
	return r.agg.Stats()
}

var (
	_ gateway.Observer = (*Recorder)(nil)
	_ session.Observer = (*Recorder)(nil)
)
