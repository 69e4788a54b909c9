// Package llm wraps Gemini content generation using the official SDK.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"leo-agent/history"
)

// ErrEmptyReply is returned when Gemini answers with no usable text
var ErrEmptyReply = errors.New("LLM reply missing or empty")

// Gemini generates chat replies via the Gemini API.
// A client is constructed per call so the API key can differ per request
// (the config panel may supply it).
type Gemini struct {
	Model   string
	BaseURL string // override for tests; empty means the production endpoint
}

// NewGemini creates an adapter for the given model
func NewGemini(model string) *Gemini {
	return &Gemini{Model: model}
}

// Reply sends the persona plus conversation window to Gemini and returns
// the first candidate's text.
func (g *Gemini) Reply(ctx context.Context, apiKey, persona string, msgs []history.Message) (string, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.BaseURL != "" {
		cfg.HTTPOptions.BaseURL = g.BaseURL
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: failed to create client: %w", err)
	}

	contents := buildContents(msgs)

	resp, err := client.Models.GenerateContent(ctx, g.Model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: persona}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	reply := extractReply(resp)
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

// buildContents converts stored history into the Gemini wire format
func buildContents(msgs []history.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(msgs))
	for _, msg := range msgs {
		contents = append(contents, &genai.Content{
			Role:  msg.Role,
			Parts: []*genai.Part{{Text: msg.Text}},
		})
	}
	return contents
}

// extractReply pulls the first non-empty text part of the first candidate
func extractReply(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return ""
	}
	for _, part := range content.Parts {
		if part != nil && part.Text != "" {
			return strings.TrimSpace(part.Text)
		}
	}
	return ""
}
