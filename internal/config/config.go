package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// SummaryMode selects what happens to extracted text after extraction.
type SummaryMode string

const (
	// ModePreview returns the first chars of the extracted text, no model call.
	ModePreview SummaryMode = "preview"
	// ModeStructured asks the model for a fixed-schema JSON object.
	ModeStructured SummaryMode = "structured"
	// ModeNarrative asks the model for a markdown summary.
	ModeNarrative SummaryMode = "narrative"
)

type Config struct {
	// Server
	Port string

	// Secrets
	GeminiAPIKey string

	// Summarization
	SummaryMode      SummaryMode
	GeminiModel      string
	MaxPromptChars   int
	SummarizeTimeout time.Duration

	// Limits
	MaxFileBytes     int64
	MaxJSONBodyBytes int64
	PreviewChars     int

	// Concurrency
	MaxConcurrentRequests int64

	// Server timeouts
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	// Request timeout for the whole extract pipeline
	ExtractTimeout time.Duration

	// housekeeping
	CleanupInterval time.Duration

	// health
	HealthDegradeRatio float64

	// http
	MaxHeaderBytes int
}

func Load() Config {
	return Config{
		Port: envStr("PORT", "10000"),

		GeminiAPIKey: envStr("GEMINI_API_KEY", ""),

		SummaryMode:      SummaryMode(envStr("SUMMARY_MODE", string(ModePreview))),
		GeminiModel:      envStr("GEMINI_MODEL", "gemini-2.0-flash"),
		MaxPromptChars:   envInt("MAX_PROMPT_CHARS", 60000),
		SummarizeTimeout: envDur("SUMMARIZE_TIMEOUT", 60*time.Second),

		MaxFileBytes:     int64(envInt("MAX_FILE_BYTES", 25<<20)),
		MaxJSONBodyBytes: int64(envInt("MAX_JSON_BODY_BYTES", 2<<20)),
		PreviewChars:     envInt("PREVIEW_CHARS", 2000),

		MaxConcurrentRequests: int64(envInt("MAX_CONCURRENT_REQUESTS", 15)),

		ReadHeaderTimeout: envDur("READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:       envDur("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:      envDur("WRITE_TIMEOUT", 120*time.Second),
		IdleTimeout:       envDur("IDLE_TIMEOUT", 60*time.Second),

		ExtractTimeout: envDur("EXTRACT_TIMEOUT", 90*time.Second),

		CleanupInterval: envDur("CLEANUP_INTERVAL", 5*time.Minute),

		HealthDegradeRatio: envFloat("HEALTH_DEGRADE_RATIO", 0.9),

		MaxHeaderBytes: envInt("MAX_HEADER_BYTES", 1<<20),
	}
}

func (c Config) Validate() error {
	switch c.SummaryMode {
	case ModePreview, ModeStructured, ModeNarrative:
	default:
		return fmt.Errorf("SUMMARY_MODE must be one of preview, structured, narrative (got %q)", c.SummaryMode)
	}
	return nil
}

// NeedsModel reports whether the configured mode requires the
// generation service.
func (c Config) NeedsModel() bool {
	return c.SummaryMode == ModeStructured || c.SummaryMode == ModeNarrative
}

func envStr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func envDur(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
