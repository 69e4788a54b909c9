// Package tts wraps the Murf speech generation REST API.
package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the Murf API root
const DefaultBaseURL = "https://api.murf.ai"

// MaxChunkChars is Murf's per-request text limit. Longer replies are
// split and synthesized as multiple requests.
const MaxChunkChars = 3000

// Murf is a pass-through client for the Murf speech/generate endpoint
type Murf struct {
	BaseURL    string
	HTTPClient *http.Client
	Voice      string
}

// NewMurf creates a client with production defaults
func NewMurf(voice string) *Murf {
	return &Murf{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Voice:      voice,
	}
}

type generateRequest struct {
	Text        string `json:"text"`
	VoiceID     string `json:"voice_id"`
	AudioFormat string `json:"audio_format"`
}

type generateResponse struct {
	AudioFile string `json:"audioFile"`
	AudioURL  string `json:"audio_url"`
}

// Synthesize converts text to speech and returns one audio URL per chunk,
// in text order. Chunks are synthesized concurrently.
func (c *Murf) Synthesize(ctx context.Context, apiKey, text string) ([]string, error) {
	chunks := SplitChunks(text, MaxChunkChars)
	urls := make([]string, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			url, err := c.generate(gctx, apiKey, chunk)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

func (c *Murf) generate(ctx context.Context, apiKey, text string) (string, error) {
	body, err := sonic.Marshal(generateRequest{
		Text:        text,
		VoiceID:     c.Voice,
		AudioFormat: "mp3",
	})
	if err != nil {
		return "", fmt.Errorf("murf generate: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/speech/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("murf generate: %w", err)
	}
	req.Header.Set("api-key", apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("murf generate: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("murf generate: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("murf generate: status %d: %s", resp.StatusCode, respBody)
	}

	var out generateResponse
	if err := sonic.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("murf generate: %w", err)
	}

	// Murf has shipped both field names
	url := out.AudioFile
	if url == "" {
		url = out.AudioURL
	}
	if url == "" {
		return "", fmt.Errorf("murf generate: no audio url in response")
	}
	return url, nil
}

// SplitChunks splits text into pieces of at most maxChars bytes, never
// cutting inside a UTF-8 rune. Text at or under the limit comes back as
// a single chunk.
func SplitChunks(text string, maxChars int) []string {
	if len(text) <= maxChars {
		return []string{text}
	}

	chunks := make([]string, 0, len(text)/maxChars+1)
	for start := 0; start < len(text); {
		end := start + maxChars
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}
		for end > start && !utf8.RuneStart(text[end]) {
			end--
		}
		if end == start {
			// A single rune wider than the limit; emit it whole
			_, size := utf8.DecodeRuneInString(text[start:])
			end = start + size
		}
		chunks = append(chunks, text[start:end])
		start = end
	}
	return chunks
}
