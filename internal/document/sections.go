package document

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Markers used to classify pages. These are literal substrings from the
// document templates this service targets.
const (
	ExamMarker       = "Final Exam Copy"
	TOCMarker        = "Table of Contents"
	CourseInfoMarker = "Course Information"
)

// MaxTOCChars caps the stored table of contents so downstream prompts stay
// bounded. Overflow truncates, it never errors.
const MaxTOCChars = 10000

// ErrNoExamSection means neither the exam marker nor the question-shaped
// heuristic matched anywhere in the document.
var ErrNoExamSection = errors.New("no exam section found")

// questionShape recognizes a numbered line followed by at least two
// lettered-choice lines, the structural shape of a multiple-choice question.
var questionShape = regexp.MustCompile(`\d{1,3}\s*\.\s*[^\n]+(?:\n\s*[A-Z]\s*\.\s*[^\n]+){2,}`)

var tocEntryLine = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)

// SectionSet is the classified view of a document's pages. ExamText is the
// concatenation of exam pages in document order. TableOfContents and
// CourseInfo are empty when the document has no such section.
type SectionSet struct {
	ExamPageIndices []int
	ExamText        string
	TableOfContents string
	CourseInfo      string
	TOCEntryCount   int
}

// Segment classifies pages into exam content, table of contents, and course
// information. A page is exam content if it carries the exam marker or
// matches the question shape. If no page qualifies, the heuristic is re-run
// over the whole raw text; a match there treats the entire text as exam
// content attributed to page 1.
func Segment(pages []Page) (*SectionSet, error) {
	set := &SectionSet{}

	var examText strings.Builder
	for _, page := range pages {
		if strings.Contains(page.Text, ExamMarker) || questionShape.MatchString(page.Text) {
			set.ExamPageIndices = append(set.ExamPageIndices, page.Index)
			examText.WriteString(page.Text)
			examText.WriteString("\n")
		}
	}
	set.ExamText = examText.String()

	if len(set.ExamPageIndices) == 0 {
		var raw strings.Builder
		for i, page := range pages {
			if i > 0 {
				raw.WriteString(PageBreak)
			}
			raw.WriteString(page.Text)
		}
		if !questionShape.MatchString(raw.String()) {
			return nil, ErrNoExamSection
		}
		set.ExamText = raw.String()
		set.ExamPageIndices = []int{1}
	}

	for _, page := range pages {
		if set.TableOfContents == "" && strings.Contains(page.Text, TOCMarker) {
			set.TableOfContents = truncate(page.Text, MaxTOCChars)
			set.TOCEntryCount = len(tocEntryLine.FindAllString(set.TableOfContents, -1))
		}
		if set.CourseInfo == "" && strings.Contains(page.Text, CourseInfoMarker) {
			set.CourseInfo = page.Text
		}
	}

	return set, nil
}

// truncate cuts s to at most n bytes, backing off to a rune boundary so
// the result stays valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
