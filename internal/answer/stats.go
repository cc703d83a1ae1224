package answer

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
	failed     bool
}

// KindSnapshot aggregates one call kind's recent samples.
type KindSnapshot struct {
	Count  int     `json:"count"`
	Errors int     `json:"errors"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// CallStats tracks answer-service call latencies and failures per call
// kind within a rolling window.
type CallStats struct {
	mu      sync.Mutex
	samples map[string][]sample
	maxAge  time.Duration
}

func NewCallStats(maxAge time.Duration) *CallStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &CallStats{
		samples: make(map[string][]sample),
		maxAge:  maxAge,
	}
}

func (s *CallStats) Record(kind string, d time.Duration, err error) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(kind, now)
	s.samples[kind] = append(s.samples[kind], sample{
		timestamp:  now,
		durationMs: ms,
		failed:     err != nil,
	})
}

// Snapshot returns per-kind aggregates for all samples still in the window.
func (s *CallStats) Snapshot() map[string]KindSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]KindSnapshot, len(s.samples))
	for kind := range s.samples {
		s.pruneLocked(kind, now)
		samples := s.samples[kind]
		if len(samples) == 0 {
			continue
		}

		values := make([]int64, 0, len(samples))
		var sum int64
		errors := 0
		for _, sm := range samples {
			values = append(values, sm.durationMs)
			sum += sm.durationMs
			if sm.failed {
				errors++
			}
		}
		sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

		out[kind] = KindSnapshot{
			Count:  len(values),
			Errors: errors,
			MinMs:  values[0],
			MaxMs:  values[len(values)-1],
			AvgMs:  float64(sum) / float64(len(values)),
			P50Ms:  percentile(values, 50),
			P95Ms:  percentile(values, 95),
			P99Ms:  percentile(values, 99),
		}
	}
	return out
}

func (s *CallStats) pruneLocked(kind string, now time.Time) {
	cutoff := now.Add(-s.maxAge)
	samples := s.samples[kind]
	writeIdx := 0
	for _, sm := range samples {
		if !sm.timestamp.Before(cutoff) {
			samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples[kind] = samples[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
