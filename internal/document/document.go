package document

import "strings"

// PageBreak is the separator emitted between pages by the text converters.
// It matches the form feed most PDF extractors insert at page boundaries.
const PageBreak = "\f"

// Document is the plain-text form of an uploaded file, produced once by the
// parser and immutable afterwards.
type Document struct {
	Title     string
	RawText   string
	PageCount int
}

// Page is one page of a Document. Index is 1-based and follows the
// document's natural page order; later page-number references resolve
// against this sequence.
type Page struct {
	Index int
	Text  string
}

// Split breaks raw text into its page sequence. Input without any page
// break yields a single page containing the whole text.
func Split(rawText string) []Page {
	parts := strings.Split(rawText, PageBreak)
	pages := make([]Page, len(parts))
	for i, part := range parts {
		pages[i] = Page{Index: i + 1, Text: part}
	}
	return pages
}

// PageContents resolves 1-based page numbers against a page sequence and
// joins the non-empty results. Out-of-range numbers are skipped.
func PageContents(pages []Page, numbers []int) string {
	var sb strings.Builder
	for _, n := range numbers {
		if n < 1 || n > len(pages) {
			continue
		}
		text := strings.TrimSpace(pages[n-1].Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}
	return sb.String()
}
