// Package summarize builds the model prompt from extracted text and
// turns the generation service's response into the declared output
// shape for the configured mode.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/extraia-ai/extract-service/internal/apierr"
)

// Mode selects which of the two prompts and output shapes is used.
type Mode string

const (
	ModeStructured Mode = "structured"
	ModeNarrative  Mode = "narrative"
)

// Summary is the result of one successful summarization call. Exactly
// one of Markdown or Structured is set, depending on the mode.
type Summary struct {
	Markdown    string
	Structured  *StructuredFields
	TruncatedAt int
}

// Client invokes the Gemini generation service once per call, with a
// bounded timeout and no retry loop.
type Client struct {
	genai          *genai.Client
	model          string
	maxPromptChars int
	timeout        time.Duration
}

func NewClient(ctx context.Context, apiKey, model string, maxPromptChars int, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apierr.New(apierr.KindConfiguration,
			"generation service API key is not configured")
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apierr.Wrap(apierr.KindConfiguration,
			"failed to initialize generation client", err)
	}

	return &Client{
		genai:          gc,
		model:          model,
		maxPromptChars: maxPromptChars,
		timeout:        timeout,
	}, nil
}

func (c *Client) Summarize(ctx context.Context, text string, mode Mode) (*Summary, error) {
	truncated := Truncate(text, c.maxPromptChars)

	prompt, err := BuildPrompt(mode, truncated)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindSummarizationFailed, "could not build prompt", err)
	}

	fmt.Printf("[summarize] mode=%s sourceChars=%d sentChars=%d\n",
		mode, len([]rune(text)), len([]rune(truncated)))

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.genai.Models.GenerateContent(callCtx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindSummarizationFailed,
			"summarization service call failed", err)
	}

	raw := resp.Text()
	sum := &Summary{TruncatedAt: len([]rune(truncated))}

	switch mode {
	case ModeNarrative:
		sum.Markdown = strings.TrimSpace(raw)
		if sum.Markdown == "" {
			return nil, apierr.New(apierr.KindInvalidModelOutput,
				"summarization service returned an empty response")
		}
	case ModeStructured:
		fields, err := ParseStructured(raw)
		if err != nil {
			return nil, err
		}
		sum.Structured = fields
	}
	return sum, nil
}

// Truncate caps text at the first max characters. Truncation is silent
// and deterministic; the cap applies to any text regardless of origin.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
