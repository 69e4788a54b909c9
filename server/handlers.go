package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"leo-agent/agent"
	"leo-agent/history"
	"leo-agent/messages"
)

type textRequest struct {
	Text string `json:"text"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type historyResponse struct {
	SessionID string            `json:"session_id"`
	Messages  []history.Message `json:"messages"`
}

type healthResponse struct {
	Status        string  `json:"status"`
	Sessions      int     `json:"sessions"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
}

// handleChat runs a full voice turn from an uploaded recording.
//
// @Summary     Voice conversation turn
// @Description Accepts a multipart audio upload ("file" field), transcribes it with AssemblyAI,
// @Description routes "search:"/"news:" skill prefixes, otherwise generates a Gemini reply and
// @Description synthesizes it with Murf. API keys come from X-Leo-*-Key headers or server env.
// @Tags        agent
// @Accept      multipart/form-data
// @Produce     json
// @Param       session_id  path      string  true   "Conversation session id"
// @Param       file        formData  file    true   "Recorded audio"
// @Success     200  {object}  agent.TurnResult
// @Failure     400  {object}  messages.ErrorPayload  "Empty transcript or bad upload"
// @Failure     401  {object}  messages.ErrorPayload  "Missing API key"
// @Failure     502  {object}  messages.ErrorPayload  "Upstream service failure"
// @Router      /agent/chat/{session_id} [post]
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, messages.ErrCodeInvalidMessage, "missing audio file: "+err.Error())
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, messages.ErrCodeInvalidMessage, "reading audio: "+err.Error())
		return
	}

	result, err := s.agent.Turn(r.Context(), agent.TurnRequest{
		SessionID: sessionID,
		Audio:     audio,
		Keys:      s.keysFromRequest(r),
	})
	if err != nil {
		writeTurnError(w, sessionID, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleText runs a turn from typed text, skipping the STT hop.
//
// @Summary     Text conversation turn
// @Tags        agent
// @Accept      json
// @Produce     json
// @Param       session_id  path  string       true  "Conversation session id"
// @Param       body        body  textRequest  true  "User message"
// @Success     200  {object}  agent.TurnResult
// @Failure     400  {object}  messages.ErrorPayload
// @Failure     401  {object}  messages.ErrorPayload
// @Failure     502  {object}  messages.ErrorPayload
// @Router      /agent/text/{session_id} [post]
func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 64*1024))
	if err != nil {
		writeError(w, http.StatusBadRequest, messages.ErrCodeInvalidMessage, "reading body: "+err.Error())
		return
	}

	var req textRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, messages.ErrCodeInvalidMessage, "invalid json: "+err.Error())
		return
	}

	result, err := s.agent.Turn(r.Context(), agent.TurnRequest{
		SessionID: sessionID,
		Text:      req.Text,
		Keys:      s.keysFromRequest(r),
	})
	if err != nil {
		writeTurnError(w, sessionID, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleHistory returns the stored transcript for a session.
//
// @Summary  Session transcript
// @Tags     agent
// @Produce  json
// @Param    session_id  path  string  true  "Conversation session id"
// @Success  200  {object}  historyResponse
// @Router   /agent/history/{session_id} [get]
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")

	msgs, err := s.store.Messages(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, messages.ErrCodeSessionFailed, err.Error())
		return
	}
	if msgs == nil {
		msgs = []history.Message{}
	}

	writeJSON(w, http.StatusOK, historyResponse{SessionID: sessionID, Messages: msgs})
}

// handleClearHistory drops a session's transcript.
//
// @Summary  Clear session transcript
// @Tags     agent
// @Param    session_id  path  string  true  "Conversation session id"
// @Success  204  "cleared"
// @Router   /agent/history/{session_id} [delete]
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")

	if err := s.store.Clear(r.Context(), sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, messages.ErrCodeSessionFailed, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleNewSession mints a fresh session id for the frontend.
//
// @Summary  New conversation session
// @Tags     agent
// @Produce  json
// @Success  200  {object}  sessionResponse
// @Router   /agent/session [get]
func (s *Server) handleNewSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: uuid.New().String()})
}

// handleHealth reports liveness plus host load.
//
// @Summary  Health check
// @Tags     ops
// @Produce  json
// @Success  200  {object}  healthResponse
// @Router   /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		Sessions:      s.store.ActiveSessionCount(r.Context()),
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		resp.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		resp.MemoryPercent = vm.UsedPercent
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeTurnError maps agent errors onto HTTP statuses and error codes
func writeTurnError(w http.ResponseWriter, sessionID string, err error) {
	code, status := classifyTurnError(err)
	log.Printf("[%s] turn failed (%s): %v", shortSession(sessionID), code, err)
	writeError(w, status, code, err.Error())
}

// classifyTurnError picks the client-visible error code and HTTP status
func classifyTurnError(err error) (string, int) {
	var missing *agent.MissingKeyError
	if errors.As(err, &missing) {
		return messages.ErrCodeMissingAPIKey, http.StatusUnauthorized
	}

	if errors.Is(err, agent.ErrEmptyTranscript) {
		return messages.ErrCodeTranscriptEmpty, http.StatusBadRequest
	}
	if errors.Is(err, history.ErrTooManySessions) {
		return messages.ErrCodeSessionFailed, http.StatusServiceUnavailable
	}

	var upstream *agent.UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.Service {
		case agent.ServiceSTT:
			return messages.ErrCodeSTTError, http.StatusBadGateway
		case agent.ServiceLLM:
			return messages.ErrCodeLLMError, http.StatusBadGateway
		case agent.ServiceTTS:
			return messages.ErrCodeTTSError, http.StatusBadGateway
		}
	}

	return messages.ErrCodeSessionFailed, http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, `{"code":"SESSION_FAILED","message":"encoding response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, messages.ErrorPayload{Code: code, Message: message})
}

// shortSession trims a session id for log lines
func shortSession(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
