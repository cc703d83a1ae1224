package pipeline

import (
	"github.com/M1noa/DocuCheat/internal/answer"
	"github.com/M1noa/DocuCheat/internal/exam"
)

// Event names pushed to the client, in production order per run.
const (
	EventStatus            = "status"
	EventStats             = "stats"
	EventLog               = "log"
	EventQuestionProcessed = "question-processed"
	EventQuestionError     = "question-error"
	EventError             = "error"
)

// EventSink receives the run's event stream. Implementations must not
// block the pipeline; the websocket hub buffers and drops on backpressure.
type EventSink interface {
	Emit(runID string, event string, payload any)
}

// BacklogSink is implemented by sinks that keep per-run event history.
// Forget is called when the run store evicts a run.
type BacklogSink interface {
	Forget(runID string)
}

// StatusPayload reports a phase transition or answering progress.
type StatusPayload struct {
	Message  string `json:"message"`
	Progress int    `json:"progress"`
}

// LogPayload is a diagnostic checkpoint.
type LogPayload struct {
	Type    string `json:"type"` // "info" or "error"
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// QuestionProcessedPayload carries one answered question.
type QuestionProcessedPayload struct {
	Question    string        `json:"question"`
	Answer      string        `json:"answer"`
	PageNumbers []int         `json:"pageNumbers"`
	Raw         answer.Parsed `json:"raw"`
}

// QuestionErrorPayload carries one settled failure.
type QuestionErrorPayload struct {
	Question   string `json:"question"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// ErrorPayload is the single terminal event of an aborted run.
type ErrorPayload struct {
	Message string `json:"message"`
}

// AnswerResult is one successfully answered question. Immutable once
// emitted.
type AnswerResult struct {
	Question      exam.Question
	Parsed        answer.Parsed
	RelevantPages []int
}

// QuestionFailure is one question that settled without an answer. Invalid
// marks the answer service's own judgment that the question was malformed,
// as opposed to a transport failure.
type QuestionFailure struct {
	Question   exam.Question
	Reason     string
	StatusCode int
	Invalid    bool
}

// reporter fans run events out to the sink. Side-effect only, never fails;
// a nil sink drops everything.
type reporter struct {
	runID string
	sink  EventSink
}

func (r reporter) emit(event string, payload any) {
	if r.sink == nil {
		return
	}
	r.sink.Emit(r.runID, event, payload)
}

func (r reporter) status(message string, progress int) {
	r.emit(EventStatus, StatusPayload{Message: message, Progress: progress})
}

func (r reporter) stats(s Stats) {
	r.emit(EventStats, s)
}

func (r reporter) info(message string, data any) {
	r.emit(EventLog, LogPayload{Type: "info", Message: message, Data: data})
}

func (r reporter) logError(message string) {
	r.emit(EventLog, LogPayload{Type: "error", Message: message})
}

func (r reporter) questionProcessed(res AnswerResult) {
	pages := res.RelevantPages
	if pages == nil {
		pages = []int{}
	}
	r.emit(EventQuestionProcessed, QuestionProcessedPayload{
		Question:    res.Question.Render(),
		Answer:      res.Parsed.Raw,
		PageNumbers: pages,
		Raw:         res.Parsed,
	})
}

func (r reporter) questionError(fail QuestionFailure) {
	r.emit(EventQuestionError, QuestionErrorPayload{
		Question:   fail.Question.Render(),
		Error:      fail.Reason,
		StatusCode: fail.StatusCode,
	})
}

func (r reporter) runError(message string) {
	r.emit(EventError, ErrorPayload{Message: message})
}
