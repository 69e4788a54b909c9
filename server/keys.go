package server

import (
	"net/http"

	"leo-agent/agent"
)

// Request headers the config panel uses to pass user-supplied API keys.
// A header always wins over the server's environment default. Keys are
// never logged and never stored server-side.
const (
	HeaderAssemblyAIKey = "X-Leo-Assemblyai-Key"
	HeaderGeminiKey     = "X-Leo-Gemini-Key"
	HeaderMurfKey       = "X-Leo-Murf-Key"
	HeaderNewsAPIKey    = "X-Leo-Newsapi-Key"
)

// keysFromRequest resolves the per-turn API keys: header over env default
func (s *Server) keysFromRequest(r *http.Request) agent.Keys {
	keys := s.defaultKeys()
	if v := r.Header.Get(HeaderAssemblyAIKey); v != "" {
		keys.AssemblyAI = v
	}
	if v := r.Header.Get(HeaderGeminiKey); v != "" {
		keys.Gemini = v
	}
	if v := r.Header.Get(HeaderMurfKey); v != "" {
		keys.Murf = v
	}
	if v := r.Header.Get(HeaderNewsAPIKey); v != "" {
		keys.NewsAPI = v
	}
	return keys
}

// defaultKeys returns the keys configured through the environment
func (s *Server) defaultKeys() agent.Keys {
	return agent.Keys{
		AssemblyAI: s.config.AssemblyAIKey,
		Gemini:     s.config.GeminiKey,
		Murf:       s.config.MurfKey,
		NewsAPI:    s.config.NewsAPIKey,
	}
}
