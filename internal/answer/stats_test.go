package answer

import (
	"errors"
	"testing"
	"time"
)

func TestCallStatsSnapshotPercentiles(t *testing.T) {
	stats := NewCallStats(time.Hour)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		stats.Record(KindAnswer, time.Duration(ms)*time.Millisecond, nil)
	}

	snap := stats.Snapshot()[KindAnswer]
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestCallStatsTracksKindsSeparately(t *testing.T) {
	stats := NewCallStats(time.Hour)
	stats.Record(KindAnswer, 100*time.Millisecond, nil)
	stats.Record(KindRelevantPages, 200*time.Millisecond, nil)
	stats.Record(KindRelevantPages, 400*time.Millisecond, nil)

	snap := stats.Snapshot()
	if snap[KindAnswer].Count != 1 {
		t.Errorf("expected 1 answer sample, got %d", snap[KindAnswer].Count)
	}
	if snap[KindRelevantPages].Count != 2 {
		t.Errorf("expected 2 relevant-pages samples, got %d", snap[KindRelevantPages].Count)
	}
	if snap[KindRelevantPages].AvgMs != 300 {
		t.Errorf("expected relevant-pages avg=300, got %f", snap[KindRelevantPages].AvgMs)
	}
}

func TestCallStatsCountsErrors(t *testing.T) {
	stats := NewCallStats(time.Hour)
	stats.Record(KindAnswer, 100*time.Millisecond, nil)
	stats.Record(KindAnswer, 100*time.Millisecond, errors.New("boom"))
	stats.Record(KindAnswer, 100*time.Millisecond, errors.New("boom"))

	snap := stats.Snapshot()[KindAnswer]
	if snap.Count != 3 {
		t.Fatalf("expected count=3, got %d", snap.Count)
	}
	if snap.Errors != 2 {
		t.Fatalf("expected errors=2, got %d", snap.Errors)
	}
}

func TestCallStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewCallStats(10 * time.Millisecond)
	stats.Record(KindAnswer, 100*time.Millisecond, nil)
	time.Sleep(25 * time.Millisecond)

	if snap, ok := stats.Snapshot()[KindAnswer]; ok {
		t.Fatalf("expected kind to drop after prune, got %+v", snap)
	}

	stats.Record(KindAnswer, 200*time.Millisecond, nil)
	snap := stats.Snapshot()[KindAnswer]
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestCallStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewCallStats(time.Hour)
	stats.Record(KindAnswer, -5*time.Millisecond, nil)

	snap := stats.Snapshot()[KindAnswer]
	if snap.MinMs != 0 {
		t.Fatalf("expected negative duration clamped to 0, got %d", snap.MinMs)
	}
}
