package parser

import (
	"io"
	"strings"

	"github.com/M1noa/DocuCheat/internal/document"
)

// TextParser handles plain text files. Text exported from a paged format
// often keeps its form feeds, so page breaks already present are honored.
type TextParser struct{}

func (p *TextParser) Extract(r io.Reader, filename string) (*document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := string(data)
	return &document.Document{
		Title:     titleFromFilename(filename),
		RawText:   text,
		PageCount: strings.Count(text, document.PageBreak) + 1,
	}, nil
}
