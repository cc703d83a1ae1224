package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/M1noa/DocuCheat/internal/answer"
	"github.com/M1noa/DocuCheat/internal/config"
)

// Orchestrator owns the run registry and the worker pool that drains the
// run queue. Each queued run is processed to completion by one worker.
type Orchestrator struct {
	runs      *RunStore
	queue     chan *Run
	processor *Processor
	sink      EventSink
	log       *slog.Logger
	cfg       config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrchestrator(cfg config.Config, client *answer.Client, sink EventSink, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		runs:      NewRunStore(cfg.RunTTL),
		queue:     make(chan *Run, cfg.MaxQueueSize),
		processor: NewProcessor(client, cfg, log, sink),
		sink:      sink,
		log:       log,
		cfg:       cfg,
	}
}

// Start launches worker goroutines and the registry cleanup loop.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case run, ok := <-o.queue:
					if !ok {
						return
					}
					o.processor.Process(workerCtx, run)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.evictExpired()
			}
		}
	}()
}

// evictExpired drops idle runs from the store and releases any event
// backlog the sink holds for them.
func (o *Orchestrator) evictExpired() {
	evicted := o.runs.Cleanup()
	if len(evicted) == 0 {
		return
	}
	if f, ok := o.sink.(BacklogSink); ok {
		for _, id := range evicted {
			f.Forget(id)
		}
	}
	o.log.Info("evicted idle runs", "count", len(evicted))
}

// Stop gracefully shuts down the worker pool.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit registers a run and queues it for processing.
func (o *Orchestrator) Submit(run *Run) error {
	o.runs.Put(run)
	select {
	case o.queue <- run:
		return nil
	default:
		run.Fail("run queue is full")
		return fmt.Errorf("run queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetRun returns a run by ID, or nil.
func (o *Orchestrator) GetRun(id string) *Run {
	return o.runs.Get(id)
}

// QueueDepth returns the current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
