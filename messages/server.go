package messages

// Error codes
const (
	ErrCodeInvalidMessage   = "INVALID_MESSAGE"
	ErrCodeMissingAPIKey    = "MISSING_API_KEY"
	ErrCodeTranscriptEmpty  = "TRANSCRIPT_EMPTY"
	ErrCodeSTTError         = "STT_ERROR"
	ErrCodeLLMError         = "LLM_ERROR"
	ErrCodeTTSError         = "TTS_ERROR"
	ErrCodeSessionFailed    = "SESSION_FAILED"
	ErrCodeBufferFull       = "BUFFER_FULL"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeConnectionClosed = "CONNECTION_CLOSED"
)

// Message types
const (
	TypeTranscript = "transcript"
	TypeReply      = "reply"
	TypeSpeech     = "speech"
	TypeStatus     = "status"
	TypeError      = "error"
)

// ServerMessage represents a message sent to the frontend client
type ServerMessage struct {
	Type      string      `json:"type"` // "transcript", "reply", "speech", "status", "error"
	SessionID string      `json:"sessionId,omitempty"`
	Payload   interface{} `json:"payload"`
}

// TranscriptPayload carries the recognized user text
type TranscriptPayload struct {
	Text string `json:"text"`
}

// ReplyPayload carries the assistant's text reply
type ReplyPayload struct {
	Text string `json:"text"`
}

// SpeechPayload carries the synthesized reply audio URLs
type SpeechPayload struct {
	AudioURL  string   `json:"audioUrl"`
	AudioURLs []string `json:"audioUrls,omitempty"`
}

// StatusPayload contains status updates
type StatusPayload struct {
	Status  string `json:"status"` // "connected", "accepted", "turn_complete", "pong"
	Message string `json:"message,omitempty"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewTranscriptMessage creates a transcript stage message
func NewTranscriptMessage(sessionID, text string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeTranscript,
		SessionID: sessionID,
		Payload:   TranscriptPayload{Text: text},
	}
}

// NewReplyMessage creates a reply stage message
func NewReplyMessage(sessionID, text string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeReply,
		SessionID: sessionID,
		Payload:   ReplyPayload{Text: text},
	}
}

// NewSpeechMessage creates a speech stage message
func NewSpeechMessage(sessionID, audioURL string, audioURLs []string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeSpeech,
		SessionID: sessionID,
		Payload: SpeechPayload{
			AudioURL:  audioURL,
			AudioURLs: audioURLs,
		},
	}
}

// NewStatusMessage creates a status message
func NewStatusMessage(sessionID, status, message string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeStatus,
		SessionID: sessionID,
		Payload: StatusPayload{
			Status:  status,
			Message: message,
		},
	}
}

// NewErrorMessage creates an error message
func NewErrorMessage(sessionID, code, message string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeError,
		SessionID: sessionID,
		Payload: ErrorPayload{
			Code:    code,
			Message: message,
		},
	}
}
