// Package office extracts raw text from Word documents. DOCX is read
// directly from the OOXML package; formatting is discarded.
package office

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/extraia-ai/extract-service/internal/extract"
)

type DOCXExtractor struct {
	maxBytes int64
}

func NewDOCX(maxBytes int64) *DOCXExtractor {
	return &DOCXExtractor{maxBytes: maxBytes}
}

func (e *DOCXExtractor) Name() string       { return "document/docx" }
func (e *DOCXExtractor) MaxFileSize() int64 { return e.maxBytes }
func (e *DOCXExtractor) SupportedTypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
}

func (e *DOCXExtractor) Extract(ctx context.Context, job extract.Job) (extract.Result, error) {
	select {
	case <-ctx.Done():
		return extract.Result{}, ctx.Err()
	default:
	}

	text, err := extractRawText(job.LocalPath)
	if err != nil {
		return extract.Result{}, err
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

// extractRawText reads word/document.xml from an OOXML package and
// returns its text content with paragraphs separated by blank lines.
func extractRawText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open package: %w", err)
	}
	defer zr.Close()

	body, err := readZipFile(&zr.Reader, "word/document.xml")
	if err != nil {
		return "", err
	}

	return documentXMLToText(body), nil
}

// documentXMLToText walks the document body collecting run text.
// Tabs and explicit breaks are kept; each paragraph ends with a blank
// line, matching the raw-text shape of common Word text extractors.
func documentXMLToText(b []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(b))

	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteString("\t")
			case "br":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n\n")
			}
		}
	}
	return sb.String()
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("missing %s", name)
}
