// Package loadtest drives concurrent load against a sharkdb server and
// reports ops/sec and latency percentiles.
package loadtest

import (
	"sort"
	"sync"
	"time"
)

// Stats collects latency samples and computes percentiles and throughput.
type Stats struct {
	mu        sync.Mutex
	latencies []time.Duration
	ops       int64
	errors    int64
}

func NewStats() *Stats {
	return &Stats{latencies: make([]time.Duration, 0, 1024)}
}

// Record records one operation; a non-nil err counts as a failure and its
// latency is excluded from the percentiles.
func (s *Stats) Record(latency time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops++
	if err != nil {
		s.errors++
		return
	}
	s.latencies = append(s.latencies, latency)
}

func (s *Stats) Ops() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ops
}

func (s *Stats) Errors() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors
}

// Report computes the run summary: totals, ops/sec, P50/P95/P99 latency.
func (s *Stats) Report(duration time.Duration) Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := Report{
		TotalOps: s.ops,
		Errors:   s.errors,
		Duration: duration,
	}
	if duration > 0 {
		r.OpsPerSec = float64(s.ops) / duration.Seconds()
	}
	if len(s.latencies) == 0 {
		return r
	}
	lats := make([]time.Duration, len(s.latencies))
	copy(lats, s.latencies)
	sort.Slice(lats, func(i, j int) bool { return lats[i] < lats[j] })
	n := len(lats)
	r.P50Latency = lats[n*50/100]
	r.P95Latency = lats[n*95/100]
	r.P99Latency = lats[n*99/100]
	return r
}

// Report is the result of a load test run.
type Report struct {
	TotalOps   int64
	Errors     int64
	Duration   time.Duration
	OpsPerSec  float64
	P50Latency time.Duration
	P95Latency time.Duration
	P99Latency time.Duration
}
