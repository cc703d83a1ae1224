package exam

import (
	"testing"
)

const sampleExam = `Final Exam Copy
1. What does HTTP stand for?
A. HyperText Transfer Protocol
B. High Throughput Transport
C. Host Transfer Protocol

2. Which layer does TCP operate at?
A. Application
B. Transport
C. Physical
D. Session
`

func TestExtract_WellFormedQuestions(t *testing.T) {
	candidates, err := Extract(sampleExam, DefaultMinChoices)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	q1 := candidates[0].Question
	if q1 == nil {
		t.Fatalf("expected question 1 to be valid, rejected: %s", candidates[0].Reject)
	}
	if q1.Number != 1 {
		t.Errorf("expected number 1, got %d", q1.Number)
	}
	if q1.Text != "What does HTTP stand for?" {
		t.Errorf("unexpected question text: %q", q1.Text)
	}
	if len(q1.Choices) != 3 {
		t.Fatalf("expected 3 choices, got %d", len(q1.Choices))
	}
	if q1.Choices[0].Letter != "A" || q1.Choices[0].Text != "HyperText Transfer Protocol" {
		t.Errorf("unexpected first choice: %+v", q1.Choices[0])
	}

	q2 := candidates[1].Question
	if q2 == nil {
		t.Fatalf("expected question 2 to be valid, rejected: %s", candidates[1].Reject)
	}
	if len(q2.Choices) != 4 {
		t.Errorf("expected 4 choices for question 2, got %d", len(q2.Choices))
	}
}

func TestExtract_MultilineQuestionBody(t *testing.T) {
	text := `1. A question body that wraps
onto a second line before the choices
A. yes
B. no
`
	candidates, err := Extract(text, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Question == nil {
		t.Fatalf("expected 1 valid candidate, got %+v", candidates)
	}
	want := "A question body that wraps onto a second line before the choices"
	if candidates[0].Question.Text != want {
		t.Errorf("expected normalized body %q, got %q", want, candidates[0].Question.Text)
	}
}

func TestExtract_TooFewChoices(t *testing.T) {
	text := `1. Lone option question
A. the only choice
`
	candidates, err := Extract(text, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Question != nil {
		t.Fatal("expected candidate to be rejected")
	}
	if candidates[0].Reject != RejectTooFewChoices {
		t.Errorf("expected reject %q, got %q", RejectTooFewChoices, candidates[0].Reject)
	}
}

func TestExtract_MinChoicesBoundary(t *testing.T) {
	trueFalse := `1. The sky is blue
A. True
B. False
`
	candidates, err := Extract(trueFalse, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidates[0].Question == nil {
		t.Errorf("expected two-choice question to pass with floor 2, rejected: %s", candidates[0].Reject)
	}

	candidates, err = Extract(trueFalse, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidates[0].Question != nil {
		t.Error("expected two-choice question to fail with floor 3")
	}
	if candidates[0].Reject != RejectTooFewChoices {
		t.Errorf("expected reject %q, got %q", RejectTooFewChoices, candidates[0].Reject)
	}
}

func TestExtract_AnswerKeyLeakRejected(t *testing.T) {
	text := `7. Which is marked up?
A. CORRECT this one
B. plain option
C. another option
`
	candidates, err := Extract(text, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidates[0].Question != nil {
		t.Fatal("expected answer-key leak to reject the candidate")
	}
	if candidates[0].Reject != RejectAnswerKeyLeak {
		t.Errorf("expected reject %q, got %q", RejectAnswerKeyLeak, candidates[0].Reject)
	}
	if candidates[0].Number != 7 {
		t.Errorf("expected rejected candidate to keep number 7, got %d", candidates[0].Number)
	}
}

func TestExtract_MissingChoiceBlock(t *testing.T) {
	text := `1. A numbered line with no choices at all

2. A valid one
A. yes
B. no
`
	candidates, err := Extract(text, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Question != nil {
		t.Error("expected choice-less candidate to be rejected")
	}
	if candidates[0].Reject != RejectMissingParts {
		t.Errorf("expected reject %q, got %q", RejectMissingParts, candidates[0].Reject)
	}
	if candidates[1].Question == nil {
		t.Errorf("expected second candidate to stay valid, rejected: %s", candidates[1].Reject)
	}
}

func TestExtract_MarkerSplitsBlocks(t *testing.T) {
	text := "1. First question\nA. one\nB. two\nFinal Exam Copy\n2. Second question\nA. one\nB. two\n"
	candidates, err := Extract(text, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates across marker blocks, got %d", len(candidates))
	}
	for _, c := range candidates {
		if c.Question == nil {
			t.Errorf("candidate %d unexpectedly rejected: %s", c.Number, c.Reject)
		}
	}
}

func TestExtract_NoQuestions(t *testing.T) {
	_, err := Extract("nothing numbered in here", 2)
	if err != ErrNoQuestions {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestExtract_ZeroMinUsesDefault(t *testing.T) {
	trueFalse := "1. Two options\nA. yes\nB. no\n"
	candidates, err := Extract(trueFalse, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidates[0].Question == nil {
		t.Errorf("expected default floor to accept two choices, rejected: %s", candidates[0].Reject)
	}
}

func TestQuestionRender_Format(t *testing.T) {
	q := Question{
		Number: 12,
		Text:   "Pick a letter",
		Choices: []Choice{
			{Letter: "A", Text: "first"},
			{Letter: "B", Text: "second"},
		},
	}
	want := "12. Pick a letter\nA. first\nB. second"
	if got := q.Render(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
