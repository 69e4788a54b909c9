// Package stt wraps the AssemblyAI speech-to-text REST API.
package stt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
)

// DefaultBaseURL is the AssemblyAI API root
const DefaultBaseURL = "https://api.assemblyai.com"

const defaultPollInterval = 1 * time.Second

// AssemblyAI is a pass-through client for the AssemblyAI v2 API.
// A transcription is three calls: upload the audio, create a transcript
// job, then poll the job until it completes or errors.
type AssemblyAI struct {
	BaseURL      string
	HTTPClient   *http.Client
	PollInterval time.Duration
}

// NewAssemblyAI creates a client with production defaults
func NewAssemblyAI() *AssemblyAI {
	return &AssemblyAI{
		BaseURL:      DefaultBaseURL,
		HTTPClient:   &http.Client{Timeout: 60 * time.Second},
		PollInterval: defaultPollInterval,
	}
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL string `json:"audio_url"`
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"` // "queued", "processing", "completed", "error"
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// Transcribe uploads audio bytes and returns the finished transcript text.
// The returned text can be empty when the audio contains no speech.
func (c *AssemblyAI) Transcribe(ctx context.Context, apiKey string, audio []byte) (string, error) {
	uploadURL, err := c.upload(ctx, apiKey, audio)
	if err != nil {
		return "", err
	}

	id, err := c.createTranscript(ctx, apiKey, uploadURL)
	if err != nil {
		return "", err
	}

	return c.pollTranscript(ctx, apiKey, id)
}

func (c *AssemblyAI) upload(ctx context.Context, apiKey string, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v2/upload", bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("assemblyai upload: %w", err)
	}
	req.Header.Set("authorization", apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var out uploadResponse
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("assemblyai upload: %w", err)
	}
	if out.UploadURL == "" {
		return "", fmt.Errorf("assemblyai upload: no upload_url in response")
	}
	return out.UploadURL, nil
}

func (c *AssemblyAI) createTranscript(ctx context.Context, apiKey, audioURL string) (string, error) {
	body, err := sonic.Marshal(transcriptRequest{AudioURL: audioURL})
	if err != nil {
		return "", fmt.Errorf("assemblyai transcript: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("assemblyai transcript: %w", err)
	}
	req.Header.Set("authorization", apiKey)
	req.Header.Set("Content-Type", "application/json")

	var out transcriptResponse
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("assemblyai transcript: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("assemblyai transcript: no id in response")
	}
	return out.ID, nil
}

func (c *AssemblyAI) pollTranscript(ctx context.Context, apiKey, id string) (string, error) {
	interval := c.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v2/transcript/"+id, nil)
		if err != nil {
			return "", fmt.Errorf("assemblyai poll: %w", err)
		}
		req.Header.Set("authorization", apiKey)

		var out transcriptResponse
		if err := c.do(req, &out); err != nil {
			return "", fmt.Errorf("assemblyai poll: %w", err)
		}

		switch out.Status {
		case "completed":
			return out.Text, nil
		case "error":
			return "", fmt.Errorf("assemblyai poll: transcription failed: %s", out.Error)
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("assemblyai poll: %w", ctx.Err())
		case <-time.After(interval):
		}
	}
}

func (c *AssemblyAI) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}

	return sonic.Unmarshal(body, out)
}
