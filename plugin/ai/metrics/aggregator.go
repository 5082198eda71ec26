package metrics

import (
	"sort"
	"sync"
	"time"
)

// maxLatencySamples bounds the per-route latency window used for percentiles.
const maxLatencySamples = 1024

// Aggregator keeps running totals in memory.
type Aggregator struct {
	mu sync.RWMutex

	routes map[string]*routeBucket
	models map[string]*modelBucket
	errors map[string]int64
}

type routeBucket struct {
	count      int64
	successes  int64
	latencySum int64   // milliseconds
	latencies  []int64 // most recent samples, milliseconds
	next       int     // ring position once full
}

type modelBucket struct {
	calls      int64
	failures   int64
	retries    int64
	latencySum int64 // milliseconds
}

// NewAggregator creates a new aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		routes: make(map[string]*routeBucket),
		models: make(map[string]*modelBucket),
		errors: make(map[string]int64),
	}
}

// RecordTurn records one processed message.
func (a *Aggregator) RecordTurn(route string, latency time.Duration, success bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.routes[route]
	if !ok {
		b = &routeBucket{latencies: make([]int64, 0, 64)}
		a.routes[route] = b
	}
	b.count++
	if success {
		b.successes++
	}
	ms := latency.Milliseconds()
	b.latencySum += ms
	if len(b.latencies) < maxLatencySamples {
		b.latencies = append(b.latencies, ms)
	} else {
		b.latencies[b.next] = ms
		b.next = (b.next + 1) % maxLatencySamples
	}
}

// RecordModelCall records one gateway invocation. kind is empty on success.
func (a *Aggregator) RecordModelCall(task, kind string, attempts int, latency time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.models[task]
	if !ok {
		b = &modelBucket{}
		a.models[task] = b
	}
	b.calls++
	if kind != "" {
		b.failures++
		a.errors[kind]++
	}
	if attempts > 1 {
		b.retries += int64(attempts - 1)
	}
	b.latencySum += latency.Milliseconds()
}

// Stats returns a copy of the current totals.
func (a *Aggregator) Stats() *Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := &Stats{
		Routes:       make(map[string]*RouteStat, len(a.routes)),
		ModelCalls:   make(map[string]*ModelStat, len(a.models)),
		ErrorsByKind: make(map[string]int64, len(a.errors)),
	}

	all := make([]int64, 0)
	for route, b := range a.routes {
		stats.TurnCount += b.count
		stats.SuccessCount += b.successes
		all = append(all, b.latencies...)

		rs := &RouteStat{Count: b.count}
		if b.count > 0 {
			rs.SuccessRate = float32(b.successes) / float32(b.count)
			rs.AvgLatency = time.Duration(b.latencySum/b.count) * time.Millisecond
		}
		stats.Routes[route] = rs
	}
	stats.LatencyP50 = time.Duration(percentile(all, 50)) * time.Millisecond
	stats.LatencyP95 = time.Duration(percentile(all, 95)) * time.Millisecond

	for task, b := range a.models {
		ms := &ModelStat{Calls: b.calls, Failures: b.failures, Retries: b.retries}
		if b.calls > 0 {
			ms.AvgLatency = time.Duration(b.latencySum/b.calls) * time.Millisecond
		}
		stats.ModelCalls[task] = ms
	}
	for kind, n := range a.errors {
		stats.ErrorsByKind[kind] = n
	}
	return stats
}

func percentile(latencies []int64, p int) int64 {
	if len(latencies) == 0 {
		return 0
	}
	sorted := make([]int64, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := (len(sorted) - 1) * p / 100
	return sorted[idx]
}
