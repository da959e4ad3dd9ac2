package extract

import (
	"fmt"
	"strings"
)

// Registry maps declared MIME types to extractors. Matching is exact:
// every alias an extractor answers for (e.g. legacy vs. modern Word
// types) must be listed in its SupportedTypes; there is no extension
// or prefix fallback.
type Registry struct {
	byMIME     map[string]Extractor
	extractors []Extractor
}

func NewRegistry() *Registry {
	return &Registry{
		byMIME:     make(map[string]Extractor),
		extractors: make([]Extractor, 0),
	}
}

func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
	for _, mt := range e.SupportedTypes() {
		key := NormalizeMIME(mt)
		if key != "" {
			r.byMIME[key] = e
		}
	}
}

func (r *Registry) Resolve(mimeType string) (Extractor, error) {
	if e, ok := r.byMIME[NormalizeMIME(mimeType)]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("no extractor registered for mime=%q", mimeType)
}

// NormalizeMIME lowercases a declared media type and drops parameters
// such as "; charset=utf-8". The bare type still has to match the
// dispatch table exactly.
func NormalizeMIME(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i > 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}
