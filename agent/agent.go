// Package agent orchestrates one conversation turn: transcribe the
// user's audio, route prefix-triggered skills, otherwise ask Gemini for a
// reply and synthesize it with Murf. The agent itself does no I/O beyond
// the injected providers, which keeps it testable with fakes.
package agent

import (
	"context"
	"log"
	"strings"

	"leo-agent/history"
	"leo-agent/news"
)

// Skill prefixes recognized in the transcript
const (
	searchPrefix = "search:"
	newsPrefix   = "news:"
)

// Transcriber converts audio bytes to text
type Transcriber interface {
	Transcribe(ctx context.Context, apiKey string, audio []byte) (string, error)
}

// Responder generates a chat reply from the persona and history window
type Responder interface {
	Reply(ctx context.Context, apiKey, persona string, msgs []history.Message) (string, error)
}

// Synthesizer converts reply text to one audio URL per chunk
type Synthesizer interface {
	Synthesize(ctx context.Context, apiKey, text string) ([]string, error)
}

// Headlines looks up current news for a topic
type Headlines interface {
	TopHeadlines(ctx context.Context, apiKey, topic string) ([]news.Article, error)
}

// Searcher answers a free-form web query
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Keys are the per-turn API keys, already resolved from request headers
// and server defaults by the transport.
type Keys struct {
	AssemblyAI string
	Gemini     string
	Murf       string
	NewsAPI    string
}

// Hooks let the transport stream turn progress to the client as each
// stage completes. Nil hooks are skipped.
type Hooks struct {
	OnTranscript func(text string)
	OnReply      func(text string)
}

// TurnRequest is one user turn. Audio takes precedence over Text.
type TurnRequest struct {
	SessionID string
	Audio     []byte
	Text      string
	Keys      Keys
	Hooks     Hooks
}

// TurnResult is the response payload for a completed turn. AudioURL is
// the first synthesized chunk, kept for compatibility with clients that
// play a single URL; AudioURLs carries every chunk in order.
type TurnResult struct {
	SessionID string   `json:"session_id"`
	UserText  string   `json:"user_text"`
	ReplyText string   `json:"llm_text"`
	AudioURL  string   `json:"audio_url"`
	AudioURLs []string `json:"audio_urls,omitempty"`
}

// Agent wires the providers together
type Agent struct {
	Store         history.Store
	STT           Transcriber
	LLM           Responder
	TTS           Synthesizer
	News          Headlines
	Search        Searcher
	HistoryWindow int
}

// Turn runs one full conversation turn
func (a *Agent) Turn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	userText, err := a.userText(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.Hooks.OnTranscript != nil {
		req.Hooks.OnTranscript(userText)
	}

	lower := strings.ToLower(userText)
	switch {
	case strings.HasPrefix(lower, searchPrefix):
		query := strings.TrimSpace(userText[len(searchPrefix):])
		return a.skillTurn(ctx, req, userText, a.searchAnswer(ctx, query))

	case strings.HasPrefix(lower, newsPrefix):
		topic := strings.TrimSpace(userText[len(newsPrefix):])
		return a.skillTurn(ctx, req, userText, a.newsAnswer(ctx, req.Keys.NewsAPI, topic))
	}

	return a.chatTurn(ctx, req, userText)
}

// userText resolves the turn input: transcribe audio when present,
// otherwise use the text field directly.
func (a *Agent) userText(ctx context.Context, req TurnRequest) (string, error) {
	if len(req.Audio) == 0 {
		text := strings.TrimSpace(req.Text)
		if text == "" {
			return "", ErrEmptyTranscript
		}
		return text, nil
	}

	if req.Keys.AssemblyAI == "" {
		return "", &MissingKeyError{Service: ServiceSTT}
	}

	text, err := a.STT.Transcribe(ctx, req.Keys.AssemblyAI, req.Audio)
	if err != nil {
		return "", &UpstreamError{Service: ServiceSTT, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

// skillTurn records a skill exchange in history and returns it without
// speech synthesis (skill answers are text-only, as headline lists read
// poorly as audio).
func (a *Agent) skillTurn(ctx context.Context, req TurnRequest, userText, answer string) (*TurnResult, error) {
	if err := a.record(ctx, req.SessionID, userText, answer); err != nil {
		return nil, err
	}
	if req.Hooks.OnReply != nil {
		req.Hooks.OnReply(answer)
	}
	return &TurnResult{
		SessionID: req.SessionID,
		UserText:  userText,
		ReplyText: answer,
		AudioURL:  "",
	}, nil
}

// chatTurn is the normal flow: history + Gemini + Murf
func (a *Agent) chatTurn(ctx context.Context, req TurnRequest, userText string) (*TurnResult, error) {
	if req.Keys.Gemini == "" {
		return nil, &MissingKeyError{Service: ServiceLLM}
	}
	if req.Keys.Murf == "" {
		return nil, &MissingKeyError{Service: ServiceTTS}
	}

	if err := a.Store.Append(ctx, req.SessionID, history.Message{Role: history.RoleUser, Text: userText}); err != nil {
		return nil, err
	}

	window, err := a.Store.Window(ctx, req.SessionID, a.HistoryWindow)
	if err != nil {
		return nil, err
	}

	reply, err := a.LLM.Reply(ctx, req.Keys.Gemini, Persona, window)
	if err != nil {
		return nil, &UpstreamError{Service: ServiceLLM, Err: err}
	}
	if req.Hooks.OnReply != nil {
		req.Hooks.OnReply(reply)
	}

	if err := a.Store.Append(ctx, req.SessionID, history.Message{Role: history.RoleModel, Text: reply}); err != nil {
		return nil, err
	}

	urls, err := a.TTS.Synthesize(ctx, req.Keys.Murf, reply)
	if err != nil {
		return nil, &UpstreamError{Service: ServiceTTS, Err: err}
	}

	result := &TurnResult{
		SessionID: req.SessionID,
		UserText:  userText,
		ReplyText: reply,
		AudioURLs: urls,
	}
	if len(urls) > 0 {
		result.AudioURL = urls[0]
	}
	return result, nil
}

// record appends both sides of a skill exchange
func (a *Agent) record(ctx context.Context, sessionID, userText, answer string) error {
	if err := a.Store.Append(ctx, sessionID, history.Message{Role: history.RoleUser, Text: userText}); err != nil {
		return err
	}
	return a.Store.Append(ctx, sessionID, history.Message{Role: history.RoleModel, Text: answer})
}

// searchAnswer runs the web search skill, degrading to a friendly
// message when DuckDuckGo is unreachable
func (a *Agent) searchAnswer(ctx context.Context, query string) string {
	answer, err := a.Search.Search(ctx, query)
	if err != nil {
		log.Printf("web search failed for %q: %v", query, err)
		return "Web search service is currently unavailable."
	}
	return answer
}

// newsAnswer runs the news skill and formats headlines as a short list
func (a *Agent) newsAnswer(ctx context.Context, apiKey, topic string) string {
	if apiKey == "" {
		return "NewsAPI key not configured; news feature unavailable."
	}

	articles, err := a.News.TopHeadlines(ctx, apiKey, topic)
	if err != nil {
		log.Printf("news lookup failed for %q: %v", topic, err)
		return "News service is currently unavailable."
	}
	if len(articles) == 0 {
		return "No news found for '" + topic + "'."
	}

	var b strings.Builder
	b.WriteString("Here are the top headlines:")
	for _, article := range articles {
		b.WriteString("\n- ")
		b.WriteString(article.Title)
	}
	return b.String()
}
