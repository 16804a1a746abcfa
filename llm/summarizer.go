package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrEmptySummary is returned when the model produced no text.
var ErrEmptySummary = errors.New("llm: empty summary")

// Summarizer produces the five-block summary text for a session.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (string, error)
}

// Generator is a single system+user prompt round trip to a model.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// PromptSummarizer builds the summary prompt and delegates generation.
type PromptSummarizer struct {
	gen     Generator
	now     func() time.Time
	timeout time.Duration
}

// NewSummarizer wraps gen. A nil now uses time.Now.
func NewSummarizer(gen Generator, now func() time.Time) *PromptSummarizer {
	if now == nil {
		now = time.Now
	}
	return &PromptSummarizer{gen: gen, now: now}
}

// WithTimeout bounds every generation call by d. Zero means no bound.
func (s *PromptSummarizer) WithTimeout(d time.Duration) *PromptSummarizer {
	s.timeout = d
	return s
}

// Summarize implements Summarizer.
func (s *PromptSummarizer) Summarize(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Session) == "" {
		return "", fmt.Errorf("llm: session text is required")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	out, err := s.gen.Generate(ctx, SystemPrompt(req, s.now()), UserPrompt(req))
	if err != nil {
		return "", err
	}
	summary := CleanSummary(out)
	if summary == "" {
		return "", ErrEmptySummary
	}
	return summary, nil
}

// GeminiClient implements Generator for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config Config
}

// NewGeminiClient creates a Gemini client.
func NewGeminiClient(ctx context.Context, config Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("llm: create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, config: config}, nil
}

// Generate implements Generator.
func (c *GeminiClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	if c.config.Model == "" {
		return "", fmt.Errorf("llm: no model configured")
	}
	model := c.client.GenerativeModel(c.config.Model)
	model.SetTemperature(c.config.Temperature)
	if c.config.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(c.config.MaxOutputTokens)
	}
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("llm: generate content: %w", err)
	}
	return extractTextFromResponse(resp)
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("llm: no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("llm: no content in response")
	}
	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("llm: no text parts in response")
	}
	return strings.Join(parts, ""), nil
}
