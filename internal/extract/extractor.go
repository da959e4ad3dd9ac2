package extract

import (
	"context"
	"fmt"
)

// Extractor is implemented by every document-format handler.
type Extractor interface {
	Extract(ctx context.Context, job Job) (Result, error)
	SupportedTypes() []string
	Name() string
	MaxFileSize() int64
}

// Job describes one uploaded document handed to an extractor.
type Job struct {
	LocalPath string
	FileName  string
	MIMEType  string
	FileSize  int64
}

// Result is the output of exactly one extractor invocation. It is not
// an error carrier: extraction either returns a Result or fails with a
// typed error.
type Result struct {
	Text      string   `json:"text"`
	Warnings  []string `json:"warnings,omitempty"`
	Method    string   `json:"method"`
	FileType  string   `json:"fileType"`
	WordCount int      `json:"wordCount"`
	CharCount int      `json:"charCount"`
}

// sizeLabel renders a byte limit in the largest unit that stays
// non-zero, so small limits don't print as "0MB".
func sizeLabel(n int64) string {
	if n >= 1<<20 {
		return fmt.Sprintf("%dMB", n/(1<<20))
	}
	if n >= 1<<10 {
		return fmt.Sprintf("%dKB", n/(1<<10))
	}
	return fmt.Sprintf("%dB", n)
}

// BuildCounts returns whitespace-delimited word count and rune count.
func BuildCounts(text string) (wordCount int, charCount int) {
	charCount = len([]rune(text))
	inWord := false
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			if inWord {
				wordCount++
				inWord = false
			}
			continue
		}
		inWord = true
	}
	if inWord {
		wordCount++
	}
	return
}
