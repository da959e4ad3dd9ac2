// Package pdf extracts plain text from PDF documents. Pages are walked
// in order and each page contributes its text followed by a newline, so
// page count survives in the output even when a page has no text. No
// layout reconstruction is attempted.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/extraia-ai/extract-service/internal/extract"
)

type Extractor struct {
	maxBytes int64
}

func New(maxBytes int64) *Extractor {
	return &Extractor{maxBytes: maxBytes}
}

func (e *Extractor) Name() string { return "document/pdf" }

func (e *Extractor) MaxFileSize() int64 { return e.maxBytes }

func (e *Extractor) SupportedTypes() []string {
	return []string{"application/pdf"}
}

func (e *Extractor) Extract(ctx context.Context, job extract.Job) (extract.Result, error) {
	select {
	case <-ctx.Done():
		return extract.Result{}, ctx.Err()
	default:
	}

	f, r, err := pdf.Open(job.LocalPath)
	if err != nil {
		return extract.Result{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		sb.WriteString(pageText(r.Page(i)))
		sb.WriteString("\n")
	}

	text := sb.String()
	words, chars := extract.BuildCounts(text)
	return extract.Result{
		Text:      text,
		Method:    "native",
		FileType:  e.Name(),
		WordCount: words,
		CharCount: chars,
	}, nil
}

// pageText joins a page's text tokens with single spaces in their
// extraction order.
func pageText(p pdf.Page) string {
	if p.V.IsNull() {
		return ""
	}
	content := p.Content()
	tokens := make([]string, 0, len(content.Text))
	for _, t := range content.Text {
		tokens = append(tokens, t.S)
	}
	return joinTokens(tokens)
}

func joinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}
