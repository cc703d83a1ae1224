package answer

import (
	"regexp"
	"strconv"
	"strings"
)

// InvalidQuestionSentinel is the phrase the service uses to say the
// question itself was malformed. It is a terminal judgment, never retried.
const InvalidQuestionSentinel = "Invalid Question Provided"

// Parsed is the validated form of an answer reply. A reply either matches
// the requested "Answer: <letter> - <text>" shape (WellFormed) or it
// doesn't; either way Raw keeps the full reply for diagnostics.
type Parsed struct {
	WellFormed bool
	Letter     string
	Text       string
	Reason     string
	Raw        string
}

var (
	answerLine = regexp.MustCompile(`(?m)^\s*Answer:\s*([A-Z])\b(?:\s*[-–:.]?\s*(.*))?$`)
	reasonLine = regexp.MustCompile(`(?m)^\s*Reason:\s*(.+)$`)
)

// ParseAnswer extracts the structured answer from a reply. A reply that
// does not match the requested format still carries the raw text, so this
// never fails.
func ParseAnswer(raw string) Parsed {
	p := Parsed{Raw: raw}

	if m := answerLine.FindStringSubmatch(raw); m != nil {
		p.WellFormed = true
		p.Letter = m[1]
		p.Text = strings.TrimSpace(m[2])
	}
	if m := reasonLine.FindStringSubmatch(raw); m != nil {
		p.Reason = strings.TrimSpace(m[1])
	}
	return p
}

// SignalsInvalidQuestion reports whether the reply carries the
// invalid-question sentinel.
func SignalsInvalidQuestion(raw string) bool {
	return strings.Contains(raw, InvalidQuestionSentinel)
}

var digits = regexp.MustCompile(`\d+`)

// ParsePageNumbers pulls every integer out of a page-list reply, capped at
// max. A reply with no numbers yields nil; malformed replies are treated as
// empty rather than as errors.
func ParsePageNumbers(raw string, max int) []int {
	var pages []int
	for _, s := range digits.FindAllString(raw, -1) {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			continue
		}
		pages = append(pages, n)
		if len(pages) == max {
			break
		}
	}
	return pages
}
