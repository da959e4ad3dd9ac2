package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"golang.org/x/sync/semaphore"

	"github.com/extraia-ai/extract-service/internal/config"
	"github.com/extraia-ai/extract-service/internal/extract"
	officeextractor "github.com/extraia-ai/extract-service/internal/extractors/office"
)

func setupTest(t *testing.T) {
	t.Helper()
	cfg = config.Load()
	cfg.SummaryMode = config.ModePreview
	cfg.PreviewChars = 2000
	requestSem = semaphore.NewWeighted(cfg.MaxConcurrentRequests)
	dispatcher = extract.NewDispatcher(newRegistry(cfg), cfg.MaxFileBytes)
	summarizer = nil
}

func multipartUpload(t *testing.T, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="document"; filename=%q`, filename))
	h.Set("Content-Type", contentType)

	pw, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := pw.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestExtractTxtUpload(t *testing.T) {
	setupTest(t)

	body, ct := multipartUpload(t, "sample.txt", "text/plain", "hello world")
	req := httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	handleExtract(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	m := decodeBody(t, rec)
	if m["extractedTextPreview"] != "hello world" {
		t.Fatalf("expected extracted text, got %v", m["extractedTextPreview"])
	}
	if !strings.Contains(m["message"].(string), "sample.txt") {
		t.Fatalf("message must name the file: %v", m["message"])
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	setupTest(t)

	body, ct := multipartUpload(t, "photo.png", "image/png", "\x89PNG\r\n")
	req := httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	handleExtract(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	m := decodeBody(t, rec)
	if !strings.Contains(m["error"].(string), "image/png") {
		t.Fatalf("error must name the unsupported type: %v", m["error"])
	}
}

func TestExtractEmptyTextFile(t *testing.T) {
	setupTest(t)

	body, ct := multipartUpload(t, "blank.txt", "text/plain", "   \n\t ")
	req := httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	handleExtract(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty document, got %d", rec.Code)
	}
}

func TestExtractLegacyDocPlaceholderIsSuccess(t *testing.T) {
	setupTest(t)

	body, ct := multipartUpload(t, "old.doc", "application/msword", "\xD0\xCF\x11\xE0 legacy binary")
	req := httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	handleExtract(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected placeholder success, got %d: %s", rec.Code, rec.Body.String())
	}
	m := decodeBody(t, rec)
	if m["extractedTextPreview"] != officeextractor.PlaceholderDOC {
		t.Fatalf("expected placeholder text, got %v", m["extractedTextPreview"])
	}
}

func TestExtractPastedText(t *testing.T) {
	setupTest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/extract",
		strings.NewReader(`{"text": "edital colado"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handleExtract(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	m := decodeBody(t, rec)
	if m["extractedTextPreview"] != "edital colado" {
		t.Fatalf("expected passthrough text, got %v", m["extractedTextPreview"])
	}
}

func TestExtractEmptyPastedTextIsNoInput(t *testing.T) {
	setupTest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/extract",
		strings.NewReader(`{"text": ""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handleExtract(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	m := decodeBody(t, rec)
	if !strings.Contains(m["error"].(string), "no document or text") {
		t.Fatalf("expected NoInputProvided message, got %v", m["error"])
	}
}

func TestExtractMissingContentTypeIsNoInput(t *testing.T) {
	setupTest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader("raw bytes"))
	rec := httptest.NewRecorder()

	handleExtract(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestExtractRejectsNonPOST(t *testing.T) {
	setupTest(t)

	handler := withMethod(http.MethodPost, handleExtract)
	req := httptest.NewRequest(http.MethodGet, "/api/extract", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if rec.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("expected Allow header")
	}
}

func TestCORSPreflight(t *testing.T) {
	setupTest(t)

	handler := withCORS(withMethod(http.MethodPost, handleExtract))
	req := httptest.NewRequest(http.MethodOptions, "/api/extract", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}

func TestSummarizationModeWithoutKeyIsConfigurationError(t *testing.T) {
	setupTest(t)
	cfg.SummaryMode = config.ModeStructured
	summarizer = nil

	req := httptest.NewRequest(http.MethodPost, "/api/extract",
		strings.NewReader(`{"text": "conteúdo"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handleExtract(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	m := decodeBody(t, rec)
	if !strings.Contains(m["error"].(string), "not configured") {
		t.Fatalf("expected configuration error, got %v", m["error"])
	}
}

func TestPreviewTruncation(t *testing.T) {
	setupTest(t)
	cfg.PreviewChars = 10

	long := strings.Repeat("a", 50)
	req := httptest.NewRequest(http.MethodPost, "/api/extract",
		strings.NewReader(fmt.Sprintf(`{"text": %q}`, long)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handleExtract(rec, req)

	m := decodeBody(t, rec)
	preview := m["extractedTextPreview"].(string)
	if preview != strings.Repeat("a", 10)+"..." {
		t.Fatalf("unexpected preview %q", preview)
	}
}
