package extract

import (
	"context"
	"testing"
)

type stubExtractor struct {
	name string
	mts  []string
	res  Result
	err  error
	max  int64

	calls int
	panic bool
}

func (s *stubExtractor) Extract(ctx context.Context, job Job) (Result, error) {
	s.calls++
	if s.panic {
		panic("malformed document")
	}
	return s.res, s.err
}
func (s *stubExtractor) SupportedTypes() []string { return s.mts }
func (s *stubExtractor) Name() string             { return s.name }
func (s *stubExtractor) MaxFileSize() int64       { return s.max }

func TestResolveExactMatch(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{name: "pdf", mts: []string{"application/pdf"}})
	r.Register(&stubExtractor{name: "word", mts: []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}})

	e, err := r.Resolve("application/pdf")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if e.Name() != "pdf" {
		t.Fatalf("expected pdf extractor, got %q", e.Name())
	}
}

func TestResolveNormalizesCaseAndParameters(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{name: "text", mts: []string{"text/plain"}})

	e, err := r.Resolve("Text/Plain; charset=utf-8")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if e.Name() != "text" {
		t.Fatalf("expected text extractor, got %q", e.Name())
	}
}

func TestResolveRejectsPrefixMatches(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{name: "text", mts: []string{"text/plain"}})

	if _, err := r.Resolve("text/html"); err == nil {
		t.Fatalf("expected text/html to be rejected, no prefix fallback")
	}
	if _, err := r.Resolve("image/png"); err == nil {
		t.Fatalf("expected image/png to be rejected")
	}
}
