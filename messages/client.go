package messages

import "encoding/json"

// ClientMessage represents a message from the frontend client
type ClientMessage struct {
	Type    string          `json:"type"` // "audio", "text", "control", "config"
	Payload json.RawMessage `json:"payload"`
}

// AudioPayload contains audio data from the client
type AudioPayload struct {
	Data string `json:"data"` // Base64-encoded recorder audio
}

// TextPayload contains a typed user turn
type TextPayload struct {
	Text string `json:"text"`
}

// ControlPayload contains control commands
type ControlPayload struct {
	Action string `json:"action"` // "ping", "end_turn", "reset"
}

// ConfigPayload carries user-supplied API keys for the session.
// Browsers cannot set custom headers on WebSocket upgrades, so the
// config panel sends keys as the first message instead.
type ConfigPayload struct {
	AssemblyAIKey string `json:"assemblyaiKey,omitempty"`
	GeminiKey     string `json:"geminiKey,omitempty"`
	MurfKey       string `json:"murfKey,omitempty"`
	NewsAPIKey    string `json:"newsapiKey,omitempty"`
}
