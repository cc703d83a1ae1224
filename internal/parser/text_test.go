package parser

import (
	"strings"
	"testing"
)

func TestTextParser_PlainText(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Extract(strings.NewReader("hello world"), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.RawText != "hello world" {
		t.Errorf("expected raw text preserved, got %q", doc.RawText)
	}
	if doc.PageCount != 1 {
		t.Errorf("expected 1 page, got %d", doc.PageCount)
	}
	if doc.Title != "notes" {
		t.Errorf("expected title from filename, got %q", doc.Title)
	}
}

func TestTextParser_HonorsFormFeeds(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Extract(strings.NewReader("one\ftwo\fthree"), "paged.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.PageCount != 3 {
		t.Errorf("expected 3 pages, got %d", doc.PageCount)
	}
}

func TestForFile_SelectsParser(t *testing.T) {
	cases := []struct {
		filename string
		wantErr  bool
	}{
		{"exam.txt", false},
		{"exam.md", false},
		{"exam.markdown", false},
		{"exam.html", false},
		{"exam.HTM", false},
		{"exam.pdf", false},
		{"exam.docx", false},
		{"exam.csv", true},
		{"exam", true},
	}
	for _, tc := range cases {
		_, err := ForFile(tc.filename, Options{})
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected error", tc.filename)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.filename, err)
		}
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("Exam Final.PDF") {
		t.Error("expected .PDF to be supported case-insensitively")
	}
	if IsSupportedExtension("archive.zip") {
		t.Error("expected .zip to be unsupported")
	}
}
