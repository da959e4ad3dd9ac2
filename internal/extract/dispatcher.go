package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/extraia-ai/extract-service/internal/apierr"
)

// UploadedDocument is the tuple the dispatcher consumes once the form
// component has parsed the multipart body to disk.
type UploadedDocument struct {
	TempPath         string
	OriginalFilename string
	DeclaredMIMEType string
	Size             int64
}

// Dispatcher selects the extractor for a declared MIME type and
// applies the uniform failure policy: unknown types fail with
// UnsupportedFormat, extractor panics and errors become
// ExtractionFailed, and whitespace-only output becomes EmptyDocument.
type Dispatcher struct {
	registry     *Registry
	maxFileBytes int64
}

func NewDispatcher(registry *Registry, maxFileBytes int64) *Dispatcher {
	return &Dispatcher{registry: registry, maxFileBytes: maxFileBytes}
}

func (d *Dispatcher) Dispatch(ctx context.Context, doc UploadedDocument) (Result, error) {
	extractor, err := d.registry.Resolve(doc.DeclaredMIMEType)
	if err != nil {
		return Result{}, apierr.Newf(apierr.KindUnsupportedFormat,
			"unsupported file format: %s", doc.DeclaredMIMEType)
	}

	max := d.maxFileBytes
	if m := extractor.MaxFileSize(); m > 0 && (max <= 0 || m < max) {
		max = m
	}
	if max > 0 && doc.Size > max {
		// Same client fault as an oversized upload body, so the same
		// 400-class kind.
		return Result{}, apierr.Newf(apierr.KindUploadFailed,
			"file exceeds %s limit", sizeLabel(max))
	}

	job := Job{
		LocalPath: doc.TempPath,
		FileName:  doc.OriginalFilename,
		MIMEType:  NormalizeMIME(doc.DeclaredMIMEType),
		FileSize:  doc.Size,
	}

	res, err := d.run(ctx, extractor, job)
	if err != nil {
		return Result{}, err
	}
	return d.finish(res)
}

// DispatchText is the literal-text passthrough for pasted input.
func (d *Dispatcher) DispatchText(text string) (Result, error) {
	res := Result{Text: text, Method: "passthrough", FileType: "text/pasted"}
	return d.finish(res)
}

// run invokes the extractor with panic capture so a library fault in a
// malformed document never escapes as a raw panic.
func (d *Dispatcher) run(ctx context.Context, extractor Extractor, job Job) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = apierr.Newf(apierr.KindExtractionFailed,
				"failed to extract text from document").WithDetails(fmt.Sprintf("%s: panic: %v", extractor.Name(), r))
		}
	}()

	res, err = extractor.Extract(ctx, job)
	if err != nil {
		if apierr.KindOf(err) != apierr.KindInternal {
			return Result{}, err
		}
		return Result{}, apierr.Wrap(apierr.KindExtractionFailed,
			"failed to extract text from document", err)
	}
	return res, nil
}

// finish applies the centralized no-usable-text policy to every format.
func (d *Dispatcher) finish(res Result) (Result, error) {
	if strings.TrimSpace(res.Text) == "" {
		return Result{}, apierr.New(apierr.KindEmptyDocument,
			"no text could be extracted from the document")
	}
	if res.CharCount == 0 {
		res.WordCount, res.CharCount = BuildCounts(res.Text)
	}
	return res, nil
}
