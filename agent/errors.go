package agent

import (
	"errors"
	"fmt"
)

// ErrEmptyTranscript is returned when speech-to-text yields no usable text
var ErrEmptyTranscript = errors.New("transcription produced no text")

// Upstream service identifiers used in error classification
const (
	ServiceSTT  = "assemblyai"
	ServiceLLM  = "gemini"
	ServiceTTS  = "murf"
	ServiceNews = "newsapi"
)

// MissingKeyError reports that a turn needed an API key that neither the
// request headers nor the server environment provided.
type MissingKeyError struct {
	Service string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("no API key provided for %s", e.Service)
}

// UpstreamError wraps a failure from one of the relayed services so the
// transport can tell the caller which hop broke.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
