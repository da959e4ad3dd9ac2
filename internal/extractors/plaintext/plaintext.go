// Package plaintext reads text/plain uploads verbatim as UTF-8.
package plaintext

import (
	"context"
	"fmt"
	"os"

	"github.com/extraia-ai/extract-service/internal/extract"
)

type Extractor struct {
	maxBytes int64
}

func New(maxBytes int64) *Extractor {
	return &Extractor{maxBytes: maxBytes}
}

func (e *Extractor) Name() string       { return "text/plain" }
func (e *Extractor) MaxFileSize() int64 { return e.maxBytes }
func (e *Extractor) SupportedTypes() []string {
	return []string{"text/plain"}
}

func (e *Extractor) Extract(ctx context.Context, job extract.Job) (extract.Result, error) {
	select {
	case <-ctx.Done():
		return extract.Result{}, ctx.Err()
	default:
	}

	b, err := os.ReadFile(job.LocalPath)
	if err != nil {
		return extract.Result{}, fmt.Errorf("read file: %w", err)
	}

	text := string(b)
	words, chars := extract.BuildCounts(text)
	return extract.Result{
		Text:      text,
		Method:    "native",
		FileType:  e.Name(),
		WordCount: words,
		CharCount: chars,
	}, nil
}
