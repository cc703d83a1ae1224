package pipeline

import (
	"sync"
	"testing"
	"time"

	"github.com/M1noa/DocuCheat/internal/document"
)

func TestNewRun_InitialState(t *testing.T) {
	run := NewRun("exam.pdf", []byte("data"))

	if run.ID == "" || len(run.ID) != 20 {
		t.Errorf("expected 20-char run ID, got %q", run.ID)
	}
	if run.Phase() != PhaseInit {
		t.Errorf("expected phase init, got %q", run.Phase())
	}
	snap := run.Snapshot()
	if snap.Progress != 0 {
		t.Errorf("expected progress 0, got %d", snap.Progress)
	}
	if string(run.FileData()) != "data" {
		t.Errorf("expected upload bytes retained")
	}
}

func TestNewRunID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewRunID()
		if seen[id] {
			t.Fatalf("duplicate run ID %q", id)
		}
		seen[id] = true
	}
}

func TestRun_PhaseTransitions(t *testing.T) {
	run := NewRun("exam.pdf", nil)

	transitions := []struct {
		phase    Phase
		progress int
	}{
		{PhaseConverting, 10},
		{PhaseSegmenting, 30},
		{PhaseExtracting, 50},
		{PhaseAnswering, 70},
		{PhaseComplete, 100},
	}
	for _, tr := range transitions {
		run.SetPhase(tr.phase, tr.progress)
		snap := run.Snapshot()
		if snap.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, snap.Phase)
		}
		if snap.Progress != tr.progress {
			t.Errorf("expected progress %d, got %d", tr.progress, snap.Progress)
		}
	}
	if !run.Phase().Terminal() {
		t.Error("expected complete to be terminal")
	}
}

func TestRun_FailResetsProgress(t *testing.T) {
	run := NewRun("exam.pdf", nil)
	run.SetPhase(PhaseAnswering, 70)
	run.Fail("answer service unreachable")

	snap := run.Snapshot()
	if snap.Phase != PhaseFailed {
		t.Errorf("expected phase failed, got %q", snap.Phase)
	}
	if snap.Progress != 0 {
		t.Errorf("expected progress reset to 0, got %d", snap.Progress)
	}
	if snap.Error != "answer service unreachable" {
		t.Errorf("unexpected error message: %q", snap.Error)
	}
	if !snap.Phase.Terminal() {
		t.Error("expected failed to be terminal")
	}
}

func TestRun_ProgressIsMonotonic(t *testing.T) {
	run := NewRun("exam.pdf", nil)
	run.SetProgress(75)
	run.SetProgress(72)

	if got := run.Snapshot().Progress; got != 75 {
		t.Errorf("expected progress held at 75, got %d", got)
	}
}

func TestRun_ConcurrentCounterIncrements(t *testing.T) {
	run := NewRun("exam.pdf", nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run.IncrProcessedQuestions()
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			run.IncrFailedQuestions()
		}()
	}
	wg.Wait()

	stats := run.Stats()
	if stats.ProcessedQuestions != 50 {
		t.Errorf("expected 50 processed, got %d", stats.ProcessedQuestions)
	}
	if stats.FailedQuestions != 50 {
		t.Errorf("expected 50 failed, got %d", stats.FailedQuestions)
	}
}

func TestRun_MutatorsReturnSnapshot(t *testing.T) {
	run := NewRun("exam.pdf", nil)

	s := run.SetTotalQuestions(8)
	if s.TotalQuestions != 8 {
		t.Errorf("expected snapshot with 8 total, got %d", s.TotalQuestions)
	}
	s = run.IncrValidQuestions()
	if s.ValidQuestions != 1 || s.TotalQuestions != 8 {
		t.Errorf("expected cumulative snapshot, got %+v", s)
	}
}

func TestRun_SetDocumentReleasesUpload(t *testing.T) {
	run := NewRun("exam.txt", []byte("raw upload"))
	run.SetDocument(&document.Document{RawText: "converted text", PageCount: 1})

	if run.FileData() != nil {
		t.Error("expected upload bytes released after conversion")
	}
	if run.Document() == nil || run.Document().RawText != "converted text" {
		t.Errorf("expected converted document retained")
	}
}

func TestRunStore_PutGet(t *testing.T) {
	store := NewRunStore(time.Hour)
	run := NewRun("exam.pdf", nil)
	store.Put(run)

	if got := store.Get(run.ID); got != run {
		t.Errorf("expected stored run back, got %v", got)
	}
	if got := store.Get("missing"); got != nil {
		t.Errorf("expected nil for unknown ID, got %v", got)
	}
}

func TestRunStore_CleanupEvictsIdleRuns(t *testing.T) {
	store := NewRunStore(10 * time.Millisecond)

	stale := NewRun("old.pdf", nil)
	store.Put(stale)

	time.Sleep(25 * time.Millisecond)

	fresh := NewRun("new.pdf", nil)
	store.Put(fresh)
	fresh.SetPhase(PhaseConverting, 10)

	evicted := store.Cleanup()

	if store.Get(stale.ID) != nil {
		t.Error("expected stale run evicted")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh run retained")
	}
	if len(evicted) != 1 || evicted[0] != stale.ID {
		t.Errorf("expected evicted IDs [%s], got %v", stale.ID, evicted)
	}
}
