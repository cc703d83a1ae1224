package answer

import (
	"fmt"
	"strings"
)

// Call kinds recorded in CallStats.
const (
	KindRelevantPages = "relevant_pages"
	KindAnswer        = "answer"
)

// MaxRelevantPages bounds how many reference pages one question may pull in.
const MaxRelevantPages = 10

// BuildRelevantPagesPrompt asks the service to name the TOC pages most
// relevant to a question. The reply is expected as a short page-number
// list; ParsePageNumbers tolerates anything vaguely number-bearing.
func BuildRelevantPagesPrompt(tableOfContents, questionText string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Given this question and table of contents, list up to %d most relevant page numbers separated by commas.\n\n", MaxRelevantPages)
	sb.WriteString("Table of Contents:\n")
	sb.WriteString(tableOfContents)
	sb.WriteString("\n\nQuestion:\n")
	sb.WriteString(questionText)
	sb.WriteString("\n\nRespond only with page numbers like: \"Pages: 1,2,3,4,5\"")
	return sb.String()
}

// BuildAnswerPrompt asks for the answer to a rendered question, optionally
// grounded on reference content pulled from the document.
func BuildAnswerPrompt(renderedQuestion, referenceContent string) string {
	var sb strings.Builder
	sb.WriteString("Answer this multiple choice question.\n\nQuestion:\n")
	sb.WriteString(renderedQuestion)
	if referenceContent != "" {
		sb.WriteString("\n\nRelevant content:\n")
		sb.WriteString(referenceContent)
	}
	sb.WriteString("\n\nRespond only in this format:\nAnswer: <letter> - <answer text>\nReason: <explanation>")
	return sb.String()
}
