// Package metrics records turn, model and memory outcomes as Prometheus
// collectors and keeps an in-process summary for the CLI.
package metrics

import "time"

// Stats is the in-process summary of everything recorded so far.
type Stats struct {
	TurnCount    int64                 `json:"turn_count"`
	SuccessCount int64                 `json:"success_count"`
	LatencyP50   time.Duration         `json:"latency_p50"`
	LatencyP95   time.Duration         `json:"latency_p95"`
	Routes       map[string]*RouteStat `json:"routes"`
	ModelCalls   map[string]*ModelStat `json:"model_calls"`
	ErrorsByKind map[string]int64      `json:"errors_by_kind"`
}

// RouteStat summarizes the turns that took one route.
type RouteStat struct {
	Count       int64         `json:"count"`
	SuccessRate float32       `json:"success_rate"`
	AvgLatency  time.Duration `json:"avg_latency"`
}

// ModelStat summarizes the calls made for one task.
type ModelStat struct {
	Calls      int64         `json:"calls"`
	Failures   int64         `json:"failures"`
	Retries    int64         `json:"retries"`
	AvgLatency time.Duration `json:"avg_latency"`
}
