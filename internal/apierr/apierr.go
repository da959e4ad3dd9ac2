// Package apierr defines the closed error taxonomy every failure is
// converted to before it crosses a component boundary. Handlers map a
// Kind to an HTTP status; no raw internal error ever reaches a response.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindUnsupportedFormat   Kind = "unsupported_format"
	KindEmptyDocument       Kind = "empty_document"
	KindExtractionFailed    Kind = "extraction_failed"
	KindNoInputProvided     Kind = "no_input_provided"
	KindUploadFailed        Kind = "upload_failed"
	KindSummarizationFailed Kind = "summarization_failed"
	KindInvalidModelOutput  Kind = "invalid_model_output"
	KindConfiguration       Kind = "configuration_error"
	KindInternal            Kind = "internal_error"
)

// Error carries a user-facing message plus an optional diagnostic string.
// Message is safe to return to clients; Details may contain library
// error text and is sanitized before leaving the process.
type Error struct {
	Kind    Kind
	Message string
	Details string
}

func (e *Error) Error() string {
	if e.Details == "" {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind) + ": " + e.Message + ": " + e.Details
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap converts an arbitrary error into a typed one, keeping the
// original text as the diagnostic.
func Wrap(kind Kind, message string, err error) *Error {
	e := &Error{Kind: kind, Message: message}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// WithDetails attaches a diagnostic string (e.g. raw model output).
func (e *Error) WithDetails(details string) *Error {
	e.Details = details
	return e
}

// KindOf returns the taxonomy kind of err, or KindInternal for anything
// that escaped conversion.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to the response status code. Client faults
// (bad format, no input, empty document, malformed upload) are 400;
// everything else is a processing or configuration failure.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnsupportedFormat, KindEmptyDocument, KindNoInputProvided, KindUploadFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
