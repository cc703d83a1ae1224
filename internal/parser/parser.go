// Package parser converts uploaded files into plain-text Documents. It is
// the only place that understands binary formats; everything downstream
// sees raw text plus a page count.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/M1noa/DocuCheat/internal/document"
)

// Parser converts raw document bytes into a Document.
type Parser interface {
	Extract(r io.Reader, filename string) (*document.Document, error)
}

// Options tune format-specific behavior.
type Options struct {
	// PDFFallbackPdftotext shells out to pdftotext when the Go PDF
	// library cannot read a file.
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// titleFromFilename strips the extension to get a display title.
func titleFromFilename(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// singlePage wraps unpaged text as a one-page document.
func singlePage(filename, text string) *document.Document {
	return &document.Document{
		Title:     titleFromFilename(filename),
		RawText:   text,
		PageCount: 1,
	}
}
