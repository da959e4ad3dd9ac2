package office

import (
	"context"
	"strings"

	"github.com/extraia-ai/extract-service/internal/extract"
)

// PlaceholderDOC is returned instead of an error when a legacy .doc
// file yields no text. The old binary format is not reliably parsable
// by the OOXML path, and a readable hint beats a hard failure there.
const PlaceholderDOC = "Could not extract text from this .doc file. " +
	"Convert it to .docx or .pdf and upload it again."

// LegacyDOCExtractor attempts the DOCX raw-text path on legacy
// application/msword uploads. Failure or empty output degrades to a
// placeholder message rather than an error.
type LegacyDOCExtractor struct {
	maxBytes int64
}

func NewLegacyDOC(maxBytes int64) *LegacyDOCExtractor {
	return &LegacyDOCExtractor{maxBytes: maxBytes}
}

func (e *LegacyDOCExtractor) Name() string       { return "document/legacy-doc" }
func (e *LegacyDOCExtractor) MaxFileSize() int64 { return e.maxBytes }
func (e *LegacyDOCExtractor) SupportedTypes() []string {
	return []string{"application/msword"}
}

func (e *LegacyDOCExtractor) Extract(ctx context.Context, job extract.Job) (extract.Result, error) {
	select {
	case <-ctx.Done():
		return extract.Result{}, ctx.Err()
	default:
	}

	text, err := extractRawText(job.LocalPath)
	if err != nil || strings.TrimSpace(text) == "" {
		warning := "legacy .doc produced no text"
		if err != nil {
			warning = "legacy .doc could not be parsed: " + err.Error()
		}
		return extract.Result{
			Text:     PlaceholderDOC,
			Warnings: []string{warning},
			Method:   "placeholder",
			FileType: e.Name(),
		}, nil
	}

	words, chars := extract.BuildCounts(text)
	return extract.Result{
		Text:      text,
		Method:    "native",
		FileType:  e.Name(),
		WordCount: words,
		CharCount: chars,
	}, nil
}
