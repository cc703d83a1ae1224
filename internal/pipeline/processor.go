package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/M1noa/DocuCheat/internal/answer"
	"github.com/M1noa/DocuCheat/internal/config"
	"github.com/M1noa/DocuCheat/internal/document"
	"github.com/M1noa/DocuCheat/internal/exam"
	"github.com/M1noa/DocuCheat/internal/parser"
)

// Progress checkpoints per phase. Percent only moves forward within a
// successful run; a failure resets it to 0 alongside the error event as a
// terminal signal.
const (
	progressConverting = 10
	progressSegmenting = 30
	progressExtracting = 50
	progressAnswering  = 70
	progressComplete   = 100
)

// Processor drives one run through the full phase sequence. Phases are
// strictly sequential; the only fan-out is the per-batch answering below.
type Processor struct {
	client *answer.Client
	cfg    config.Config
	log    *slog.Logger
	sink   EventSink
}

func NewProcessor(client *answer.Client, cfg config.Config, log *slog.Logger, sink EventSink) *Processor {
	return &Processor{
		client: client,
		cfg:    cfg,
		log:    log,
		sink:   sink,
	}
}

// Process runs a run to completion. Fatal errors mark the run Failed and
// stop; per-question failures are contained in the answering phase and
// never abort the run.
func (p *Processor) Process(ctx context.Context, run *Run) {
	log := p.log.With("run_id", run.ID, "filename", run.Filename)
	rep := reporter{runID: run.ID, sink: p.sink}

	// Phase 1: Converting
	run.SetPhase(PhaseConverting, progressConverting)
	rep.status("Converting document to text...", progressConverting)
	rep.info("Starting document processing", nil)

	pr, err := parser.ForFile(run.Filename, parser.Options{PDFFallbackPdftotext: p.cfg.PDFFallbackPdftotext})
	if err != nil {
		p.fail(run, rep, log, "unsupported document format: "+err.Error())
		return
	}
	doc, err := pr.Extract(bytes.NewReader(run.FileData()), run.Filename)
	if err != nil {
		p.fail(run, rep, log, "document conversion failed: "+err.Error())
		return
	}
	run.SetDocument(doc)
	rep.stats(run.SetTotalPages(doc.PageCount))
	rep.info("Document converted", map[string]any{"pages": doc.PageCount})
	log.Info("document converted", "pages", doc.PageCount)

	// Phase 2: Segmenting
	if ctx.Err() != nil {
		p.fail(run, rep, log, "processing cancelled")
		return
	}
	run.SetPhase(PhaseSegmenting, progressSegmenting)
	rep.status("Extracting document sections...", progressSegmenting)

	pages := document.Split(doc.RawText)
	sections, err := document.Segment(pages)
	if err != nil {
		p.fail(run, rep, log, "exam section not found: no exam markers or question patterns detected")
		return
	}
	rep.stats(run.SetSegmentCounts(len(sections.ExamPageIndices), sections.TOCEntryCount))
	rep.info("Document sections extracted", map[string]any{"examPages": sections.ExamPageIndices})
	log.Info("sections extracted", "exam_pages", len(sections.ExamPageIndices), "toc_entries", sections.TOCEntryCount)

	// Phase 3: Extracting questions
	run.SetPhase(PhaseExtracting, progressExtracting)
	rep.status("Processing exam questions...", progressExtracting)

	candidates, err := exam.Extract(sections.ExamText, p.cfg.MinChoiceCount)
	if err != nil {
		p.fail(run, rep, log, "no questions found in exam text")
		return
	}
	rep.stats(run.SetTotalQuestions(len(candidates)))

	var questions []exam.Question
	for _, cand := range candidates {
		if cand.Question == nil {
			rep.stats(run.IncrInvalidQuestions())
			rep.logError(fmt.Sprintf("Rejected question %d: %s", cand.Number, cand.Reject))
			continue
		}
		questions = append(questions, *cand.Question)
		rep.stats(run.IncrValidQuestions())
		rep.info(fmt.Sprintf("Extracted question %d with %d choices", cand.Question.Number, len(cand.Question.Choices)), nil)
	}
	log.Info("questions extracted", "total", len(candidates), "valid", len(questions))

	if len(questions) == 0 {
		p.fail(run, rep, log, "no valid questions to process")
		return
	}

	// Phase 4: Answering
	run.SetPhase(PhaseAnswering, progressAnswering)
	rep.status("Analyzing questions with AI...", progressAnswering)

	if !p.answerQuestions(ctx, run, rep, log, questions, sections, pages) {
		p.fail(run, rep, log, "processing cancelled")
		return
	}

	// Phase 5: Complete
	run.SetPhase(PhaseComplete, progressComplete)
	rep.status("Processing complete", progressComplete)
	rep.stats(run.Stats())
	log.Info("run complete", "processed", run.Stats().ProcessedQuestions, "failed", run.Stats().FailedQuestions)
}

// answerQuestions settles every question in fixed-size batches: all
// members of a batch run concurrently, the batch joins before the next
// starts, and a fixed pause sits between batches. Returns false when
// cancellation stopped further batches from starting.
func (p *Processor) answerQuestions(ctx context.Context, run *Run, rep reporter, log *slog.Logger, questions []exam.Question, sections *document.SectionSet, pages []document.Page) bool {
	total := len(questions)
	settled := 0

	for start := 0; start < total; start += p.cfg.BatchSize {
		if ctx.Err() != nil {
			return false
		}

		end := start + p.cfg.BatchSize
		if end > total {
			end = total
		}
		batch := questions[start:end]

		var wg sync.WaitGroup
		for _, q := range batch {
			wg.Add(1)
			go func(q exam.Question) {
				defer wg.Done()
				res, failure := p.answerOne(ctx, q, sections, pages)
				if failure != nil {
					rep.stats(run.IncrFailedQuestions())
					rep.questionError(*failure)
					log.Warn("question failed", "question", q.Number, "reason", failure.Reason)
					return
				}
				rep.stats(run.IncrProcessedQuestions())
				rep.questionProcessed(*res)
			}(q)
		}
		wg.Wait()

		settled += len(batch)
		pct := progressAnswering + (25*settled)/total
		run.SetProgress(pct)
		rep.status(fmt.Sprintf("Answered %d of %d questions", settled, total), pct)

		if end < total {
			select {
			case <-time.After(p.cfg.BatchDelay):
			case <-ctx.Done():
				return false
			}
		}
	}
	return true
}

// answerOne runs the per-question protocol: optional relevant-page
// enrichment, one answer request with a single fixed-delay retry, and
// classification of the reply. Exactly one of the return values is set.
func (p *Processor) answerOne(ctx context.Context, q exam.Question, sections *document.SectionSet, pages []document.Page) (*AnswerResult, *QuestionFailure) {
	var relevant []int
	var reference string
	if sections.TableOfContents != "" {
		reply, err := p.client.Complete(ctx, answer.KindRelevantPages, answer.BuildRelevantPagesPrompt(sections.TableOfContents, q.Text))
		if err != nil {
			// Enrichment is best effort; the question proceeds without it.
			p.log.Warn("relevant-page lookup failed", "question", q.Number, "error", err)
		} else {
			relevant = answer.ParsePageNumbers(reply, answer.MaxRelevantPages)
			reference = document.PageContents(pages, relevant)
		}
	}

	prompt := answer.BuildAnswerPrompt(q.Render(), reference)

	var content string
	var err error
	for attempt := 0; attempt < MaxAnswerAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.cfg.RetryDelay):
			case <-ctx.Done():
				return nil, &QuestionFailure{Question: q, Reason: "cancelled before retry"}
			}
		}
		content, err = p.client.Complete(ctx, answer.KindAnswer, prompt)
		if err == nil || !IsRetryable(err) {
			break
		}
	}
	if err != nil {
		return nil, &QuestionFailure{Question: q, Reason: err.Error(), StatusCode: statusCodeOf(err)}
	}

	if answer.SignalsInvalidQuestion(content) {
		return nil, &QuestionFailure{Question: q, Reason: "question judged invalid by the answer service", Invalid: true}
	}

	return &AnswerResult{
		Question:      q,
		Parsed:        answer.ParseAnswer(content),
		RelevantPages: relevant,
	}, nil
}

// fail marks the run Failed and emits the terminal error sequence: an
// error log, the single error event, a status with progress reset to 0,
// and a final stats snapshot.
func (p *Processor) fail(run *Run, rep reporter, log *slog.Logger, msg string) {
	run.Fail(msg)
	log.Error("run failed", "error", msg)
	rep.logError("Document processing error: " + msg)
	rep.runError(msg)
	rep.status("Error processing document", 0)
	rep.stats(run.Stats())
}
