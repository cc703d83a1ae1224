package exam

import (
	"errors"
	"strconv"
	"strings"

	"github.com/M1noa/DocuCheat/internal/document"
	"github.com/dlclark/regexp2"
)

// DefaultMinChoices is the smallest choice count a candidate may have and
// still become a Question. The source documents occasionally use true/false
// items, so the floor is 2; stricter deployments raise it via configuration.
const DefaultMinChoices = 2

// ErrNoQuestions means the exam text produced zero candidates, valid or not.
var ErrNoQuestions = errors.New("no questions found in exam text")

// The question pattern needs negative lookahead to stop a body at the next
// numbered question or lettered choice, which the stdlib regexp engine
// cannot express, hence regexp2. Groups: number, body, choice block. The
// choice block is zero-or-more so under-optioned candidates still surface
// as rejections instead of vanishing.
var questionPattern = regexp2.MustCompile(
	`(?:^|\n)\s*(\d{1,3})\s*\.\s*([^\n]+(?:\n(?!\s*\d{1,3}\s*\.|\s*[A-Z]\s*\.).*)*)((?:\n\s*[A-Z]\s*\.\s*[^\n]+)*)`,
	regexp2.Multiline,
)

var choicePattern = regexp2.MustCompile(
	`\n\s*([A-Z])\s*\.\s*([^\n]+(?:\n(?!\s*[A-Z]\s*\.).*)*)`,
	regexp2.Multiline,
)

// sentinelPrefixes mark answer-key leakage in a choice line. A candidate
// containing one is rejected outright; the comparison is case-sensitive.
var sentinelPrefixes = []string{"Incorrect", "CORRECT"}

// RejectReason explains why a candidate never became a Question.
type RejectReason string

const (
	RejectMissingParts  RejectReason = "missing number, text or choices"
	RejectAnswerKeyLeak RejectReason = "choice text carries an answer-key marking"
	RejectTooFewChoices RejectReason = "insufficient choices"
)

// Candidate is one raw pattern match. Question is nil when the candidate
// was rejected, in which case Reject says why.
type Candidate struct {
	Number   int
	Question *Question
	Reject   RejectReason
}

// Extract pattern-matches exam text into question candidates. The text is
// split on the exam marker first so a marker landing mid-page cannot
// corrupt a match spanning the page boundary. Returns ErrNoQuestions when
// zero candidates match at all.
func Extract(examText string, minChoices int) ([]Candidate, error) {
	if minChoices <= 0 {
		minChoices = DefaultMinChoices
	}

	var candidates []Candidate
	for _, block := range strings.Split(examText, document.ExamMarker) {
		m, err := questionPattern.FindStringMatch(block)
		for err == nil && m != nil {
			candidates = append(candidates, buildCandidate(m, minChoices))
			m, err = questionPattern.FindNextMatch(m)
		}
	}

	if len(candidates) == 0 {
		return nil, ErrNoQuestions
	}
	return candidates, nil
}

func buildCandidate(m *regexp2.Match, minChoices int) Candidate {
	numberText := m.GroupByNumber(1).String()
	body := m.GroupByNumber(2).String()
	choiceBlock := m.GroupByNumber(3).String()

	number, _ := strconv.Atoi(numberText)
	cand := Candidate{Number: number}

	if numberText == "" || strings.TrimSpace(body) == "" || strings.TrimSpace(choiceBlock) == "" {
		cand.Reject = RejectMissingParts
		return cand
	}

	choices, leaked := parseChoices(choiceBlock)
	if leaked {
		cand.Reject = RejectAnswerKeyLeak
		return cand
	}
	if len(choices) < minChoices {
		cand.Reject = RejectTooFewChoices
		return cand
	}

	cand.Question = &Question{
		Number:  number,
		Text:    normalize(body),
		Choices: choices,
	}
	return cand
}

func parseChoices(block string) (choices []Choice, leaked bool) {
	m, err := choicePattern.FindStringMatch(block)
	for err == nil && m != nil {
		text := normalize(m.GroupByNumber(2).String())
		for _, prefix := range sentinelPrefixes {
			if strings.HasPrefix(text, prefix) {
				return nil, true
			}
		}
		choices = append(choices, Choice{
			Letter: m.GroupByNumber(1).String(),
			Text:   text,
		})
		m, err = choicePattern.FindNextMatch(m)
	}
	return choices, false
}
