package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/semaphore"

	"github.com/extraia-ai/extract-service/internal/apierr"
	"github.com/extraia-ai/extract-service/internal/config"
	"github.com/extraia-ai/extract-service/internal/extract"
	officeextractor "github.com/extraia-ai/extract-service/internal/extractors/office"
	pdfextractor "github.com/extraia-ai/extract-service/internal/extractors/pdf"
	plaintextextractor "github.com/extraia-ai/extract-service/internal/extractors/plaintext"
	"github.com/extraia-ai/extract-service/internal/summarize"
)

var (
	cfg config.Config

	requestSem *semaphore.Weighted
	dispatcher *extract.Dispatcher
	summarizer *summarize.Client

	metrics = &serverMetrics{}
)

type serverMetrics struct {
	mu            sync.RWMutex
	totalRequests int64
	activeReqs    int64
}

func (m *serverMetrics) incActive() {
	m.mu.Lock()
	m.activeReqs++
	m.totalRequests++
	m.mu.Unlock()
}
func (m *serverMetrics) decActive() {
	m.mu.Lock()
	m.activeReqs--
	m.mu.Unlock()
}
func (m *serverMetrics) get() (total, active int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalRequests, m.activeReqs
}

func main() {
	_ = godotenv.Load()

	cfg = config.Load()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	requestSem = semaphore.NewWeighted(cfg.MaxConcurrentRequests)
	dispatcher = extract.NewDispatcher(newRegistry(cfg), cfg.MaxFileBytes)

	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		fmt.Fprintln(os.Stderr, "warning: GEMINI_API_KEY not set (summarization modes will fail)")
	} else {
		client, err := summarize.NewClient(context.Background(),
			cfg.GeminiAPIKey, cfg.GeminiModel, cfg.MaxPromptChars, cfg.SummarizeTimeout)
		if err != nil {
			panic(err)
		}
		summarizer = client
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/metrics", handleMetrics)

	mux.HandleFunc("/api/extract",
		withCORS(
			withMethod("POST",
				withConcurrencyLimit(func(w http.ResponseWriter, r *http.Request) {
					handleExtract(w, r)
				}))))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           withLogging(withRecovery(mux)),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go reportStats()

	fmt.Printf("extraia listening on %s (mode: %s, max concurrent: %d)\n",
		srv.Addr, cfg.SummaryMode, cfg.MaxConcurrentRequests)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

// newRegistry wires one extractor per supported document format. Every
// MIME alias must be listed explicitly; anything else is rejected.
func newRegistry(cfg config.Config) *extract.Registry {
	registry := extract.NewRegistry()
	registry.Register(pdfextractor.New(cfg.MaxFileBytes))
	registry.Register(officeextractor.NewDOCX(cfg.MaxFileBytes))
	registry.Register(officeextractor.NewLegacyDOC(cfg.MaxFileBytes))
	registry.Register(plaintextextractor.New(cfg.MaxFileBytes))
	return registry
}

func reportStats() {
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		total, active := metrics.get()
		fmt.Printf("[stats] active=%d total=%d goroutines=%d mem=%dMB\n",
			active, total, runtime.NumGoroutine(), m.Alloc/(1<<20))
	}
}

// ---------- Handlers ----------

func handleHealth(w http.ResponseWriter, r *http.Request) {
	_, active := metrics.get()
	status := "healthy"
	code := http.StatusOK

	ratio := cfg.HealthDegradeRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 0.9
	}

	if active >= int64(float64(cfg.MaxConcurrentRequests)*ratio) {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status": status,
		"active": active,
		"mode":   cfg.SummaryMode,
	})
}

func handleMetrics(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	total, active := metrics.get()

	writeJSON(w, http.StatusOK, map[string]any{
		"activeRequests": active,
		"totalRequests":  total,
		"goroutines":     runtime.NumGoroutine(),
		"memAllocMB":     m.Alloc / (1 << 20),
		"memSysMB":       m.Sys / (1 << 20),
	})
}

// handleExtract accepts exactly one input channel per request: a
// multipart file upload or a JSON payload with literal text.
func handleExtract(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), cfg.ExtractTimeout)
	defer cancel()

	switch extract.NormalizeMIME(r.Header.Get("Content-Type")) {
	case "multipart/form-data":
		handleFileExtract(ctx, w, r)
	case "application/json":
		handleTextExtract(ctx, w, r)
	default:
		writeAPIError(w, apierr.New(apierr.KindNoInputProvided,
			"no document or text provided"))
	}
}

func handleFileExtract(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxFileBytes+(1<<20))

	file, header, err := r.FormFile("document")
	if err != nil {
		writeAPIError(w, apierr.Wrap(apierr.KindUploadFailed,
			"file upload could not be read", err))
		return
	}
	defer file.Close()

	tmp, err := extract.SaveUploadToTemp(file, header.Filename, cfg.MaxFileBytes)
	if err != nil {
		writeAPIError(w, apierr.Wrap(apierr.KindUploadFailed,
			"failed to store uploaded file", err))
		return
	}
	// Safety net only: the explicit Release below runs first, and a
	// second Release is a no-op.
	defer tmp.Release()

	declared := extract.NormalizeMIME(header.Header.Get("Content-Type"))
	if declared == "" || declared == "application/octet-stream" {
		declared = extract.SniffMIMEType(tmp.Path)
	}

	doc := extract.UploadedDocument{
		TempPath:         tmp.Path,
		OriginalFilename: header.Filename,
		DeclaredMIMEType: declared,
		Size:             tmp.Size,
	}

	res, dispatchErr := dispatcher.Dispatch(ctx, doc)

	// The temp file is always released before the response is written.
	tmp.Release()

	if dispatchErr != nil {
		writeAPIError(w, dispatchErr)
		return
	}

	respondExtracted(ctx, w,
		fmt.Sprintf("File %q processed successfully", header.Filename), res)
}

type textExtractRequest struct {
	Text string `json:"text"`
}

func handleTextExtract(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[textExtractRequest](r, cfg.MaxJSONBodyBytes)
	if err != nil {
		writeAPIError(w, apierr.Wrap(apierr.KindUploadFailed,
			"request body could not be parsed", err))
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeAPIError(w, apierr.New(apierr.KindNoInputProvided,
			"no document or text provided"))
		return
	}

	res, err := dispatcher.DispatchText(req.Text)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	respondExtracted(ctx, w, "Text processed successfully", res)
}

// respondExtracted finishes a request whose extraction succeeded:
// preview mode answers directly, the other modes go through the
// summarization client first.
func respondExtracted(ctx context.Context, w http.ResponseWriter, message string, res extract.Result) {
	if cfg.SummaryMode == config.ModePreview {
		writeJSON(w, http.StatusOK, map[string]any{
			"message":              message,
			"extractedTextPreview": previewOf(res.Text),
		})
		return
	}

	if summarizer == nil {
		writeAPIError(w, apierr.New(apierr.KindConfiguration,
			"summarization is not configured on this server"))
		return
	}

	mode := summarize.ModeNarrative
	if cfg.SummaryMode == config.ModeStructured {
		mode = summarize.ModeStructured
	}

	sum, err := summarizer.Summarize(ctx, res.Text, mode)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	switch cfg.SummaryMode {
	case config.ModeStructured:
		writeJSON(w, http.StatusOK, map[string]any{
			"message":        message,
			"structuredData": sum.Structured,
		})
	case config.ModeNarrative:
		writeJSON(w, http.StatusOK, map[string]any{
			"message": message,
			"summary": sum.Markdown,
		})
	}
}

// previewOf caps the extracted text for the preview response body.
func previewOf(text string) string {
	runes := []rune(text)
	if len(runes) <= cfg.PreviewChars {
		return text
	}
	return string(runes[:cfg.PreviewChars]) + "..."
}

// ---------- Middleware ----------

func withMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			writeErr(w, http.StatusMethodNotAllowed, "Method must be "+method)
			return
		}
		next(w, r)
	}
}

func withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func withConcurrencyLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requestSem.Acquire(r.Context(), 1); err != nil {
			writeErr(w, http.StatusServiceUnavailable, "Service at capacity")
			return
		}
		defer requestSem.Release(1)

		metrics.incActive()
		defer metrics.decActive()

		next(w, r)
	}
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				fmt.Fprintf(os.Stderr, "panic: %v\n", err)
				writeErr(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &wrapWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)

		fmt.Printf("%s %s -> %d (%s)\n",
			r.Method, sanitizeLogString(r.URL.Path), ww.status, time.Since(start))
	})
}

type wrapWriter struct {
	http.ResponseWriter
	status int
}

func (w *wrapWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// ---------- Helpers ----------

func sanitizeLogString(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

func parseJSON[T any](r *http.Request, limit int64) (T, error) {
	var out T
	dec := json.NewDecoder(io.LimitReader(r.Body, limit))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&out); err != nil {
		return out, err
	}

	// Ensure there's nothing else after the first JSON value
	if err := dec.Decode(new(any)); err != io.EOF {
		if err == nil {
			return out, fmt.Errorf("unexpected trailing data")
		}
		return out, err
	}

	return out, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// writeAPIError maps a typed error onto the single error response
// shape: {error, details?}.
func writeAPIError(w http.ResponseWriter, err error) {
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		ae = apierr.Wrap(apierr.KindInternal,
			"an error occurred while processing the request", err)
	}

	body := map[string]any{"error": ae.Message}
	if ae.Details != "" {
		body["details"] = apierr.Sanitize(ae.Details)
	}
	writeJSON(w, ae.Kind.HTTPStatus(), body)
}
