package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/M1noa/DocuCheat/internal/document"
)

// Phase is the run state machine position. Transitions are strictly
// sequential; Failed is reachable from any non-terminal phase and is
// permanent for the run.
type Phase string

const (
	PhaseInit       Phase = "init"
	PhaseConverting Phase = "converting"
	PhaseSegmenting Phase = "segmenting"
	PhaseExtracting Phase = "extracting_questions"
	PhaseAnswering  Phase = "answering"
	PhaseComplete   Phase = "complete"
	PhaseFailed     Phase = "failed"
)

// Terminal reports whether no further transition can happen.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}

// Stats are the run's monotonically-updated counters. Every mutation goes
// through a Run method and is broadcast as a snapshot immediately after.
type Stats struct {
	TotalPages         int `json:"totalPages"`
	ExamPages          int `json:"examPages"`
	TOCEntries         int `json:"tocEntries"`
	TotalQuestions     int `json:"totalQuestions"`
	ValidQuestions     int `json:"validQuestions"`
	InvalidQuestions   int `json:"invalidQuestions"`
	ProcessedQuestions int `json:"processedQuestions"`
	FailedQuestions    int `json:"failedQuestions"`
}

// Run tracks the state of a single document's processing. Batch workers
// mutate counters concurrently, so every access funnels through the mutex.
type Run struct {
	mu sync.Mutex

	ID       string
	Filename string

	phase    Phase
	progress int
	stats    Stats
	errMsg   string

	CreatedAt time.Time
	updatedAt time.Time

	fileData []byte
	doc      *document.Document
}

// NewRun creates a queued run holding the raw upload bytes.
func NewRun(filename string, fileData []byte) *Run {
	now := time.Now()
	return &Run{
		ID:        NewRunID(),
		Filename:  filename,
		phase:     PhaseInit,
		CreatedAt: now,
		updatedAt: now,
		fileData:  fileData,
	}
}

// NewRunID returns a random 20-character hex identifier.
func NewRunID() string {
	var b [10]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func (r *Run) SetPhase(p Phase, progress int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase = p
	r.progress = progress
	r.updatedAt = time.Now()
}

func (r *Run) SetProgress(progress int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if progress > r.progress {
		r.progress = progress
	}
	r.updatedAt = time.Now()
}

// Fail marks the run permanently failed and records the message.
func (r *Run) Fail(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase = PhaseFailed
	r.progress = 0
	r.errMsg = msg
	r.updatedAt = time.Now()
}

func (r *Run) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Stats mutators. Each returns the post-mutation snapshot so the caller
// can broadcast exactly what it produced, with no read-back race.

func (r *Run) SetTotalPages(n int) Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.TotalPages = n
	r.updatedAt = time.Now()
	return r.stats
}

func (r *Run) SetSegmentCounts(examPages, tocEntries int) Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.ExamPages = examPages
	r.stats.TOCEntries = tocEntries
	r.updatedAt = time.Now()
	return r.stats
}

func (r *Run) SetTotalQuestions(n int) Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.TotalQuestions = n
	r.updatedAt = time.Now()
	return r.stats
}

func (r *Run) IncrValidQuestions() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.ValidQuestions++
	r.updatedAt = time.Now()
	return r.stats
}

func (r *Run) IncrInvalidQuestions() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.InvalidQuestions++
	r.updatedAt = time.Now()
	return r.stats
}

func (r *Run) IncrProcessedQuestions() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.ProcessedQuestions++
	r.updatedAt = time.Now()
	return r.stats
}

func (r *Run) IncrFailedQuestions() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.FailedQuestions++
	r.updatedAt = time.Now()
	return r.stats
}

func (r *Run) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// FileData returns the raw upload bytes.
func (r *Run) FileData() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fileData
}

// SetDocument records the converted document and releases the upload
// bytes, which are no longer needed.
func (r *Run) SetDocument(doc *document.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc = doc
	r.fileData = nil
	r.updatedAt = time.Now()
}

// Document returns the converted document, or nil before conversion.
func (r *Run) Document() *document.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doc
}

// Snapshot is a read-only, JSON-safe copy of run state.
type Snapshot struct {
	ID       string `json:"run_id"`
	Filename string `json:"filename"`
	Phase    Phase  `json:"phase"`
	Progress int    `json:"progress"`
	Stats    Stats  `json:"stats"`
	Error    string `json:"error,omitempty"`
}

func (r *Run) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		ID:       r.ID,
		Filename: r.Filename,
		Phase:    r.phase,
		Progress: r.progress,
		Stats:    r.stats,
		Error:    r.errMsg,
	}
}

// RunStore is a thread-safe in-memory run registry with TTL eviction.
type RunStore struct {
	mu   sync.Mutex
	runs map[string]*Run
	ttl  time.Duration
}

func NewRunStore(ttl time.Duration) *RunStore {
	return &RunStore{
		runs: make(map[string]*Run),
		ttl:  ttl,
	}
}

func (s *RunStore) Put(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
}

func (s *RunStore) Get(id string) *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}

// Cleanup removes runs idle for longer than the TTL and returns the
// evicted IDs so per-run state held elsewhere can be released too.
func (s *RunStore) Cleanup() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var evicted []string
	for id, run := range s.runs {
		run.mu.Lock()
		idle := now.Sub(run.updatedAt)
		run.mu.Unlock()
		if idle > s.ttl {
			delete(s.runs, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}
