package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"leo-agent/agent"
	"leo-agent/messages"
)

const (
	writeBufferSize = 64
	writeTimeout    = 10 * time.Second
)

// wsSession is one streaming conversation over a WebSocket. The client
// sends audio chunks (binary frames or base64 JSON) and control
// messages; the server streams each stage of the turn back as it
// completes.
type wsSession struct {
	id     string
	conn   *websocket.Conn
	agent  *agent.Agent
	keys   agent.Keys
	buffer *AudioBuffer

	// All writes go through writeChan into a single writePump goroutine
	writeChan chan any

	mu        sync.RWMutex
	closed    bool
	closeChan chan struct{}
	turnMu    sync.Mutex // one turn at a time per session
	ctx       context.Context
	cancel    context.CancelFunc
}

// handleWebSocket upgrades the connection and runs a streaming session
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(int64(s.config.MaxBufferSize))

	ctx, cancel := context.WithCancel(context.Background())
	sess := &wsSession{
		id:        sessionID,
		conn:      conn,
		agent:     s.agent,
		keys:      s.defaultKeys(),
		buffer:    NewAudioBuffer(s.config.MaxBufferSize),
		writeChan: make(chan any, writeBufferSize),
		closeChan: make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}

	log.Printf("[%s] websocket session opened", shortSession(sessionID))
	sess.start()

	<-sess.closeChan
	log.Printf("[%s] websocket session closed", shortSession(sessionID))
}

// start begins the read loop and the write pump
func (sess *wsSession) start() {
	go sess.writePump()
	sess.queueMessage(messages.NewStatusMessage(sess.id, "connected", "Session established"))
	go sess.readLoop()
}

// writePump handles all outgoing messages in a single goroutine
func (sess *wsSession) writePump() {
	defer func() {
		sess.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		_ = sess.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
	}()

	for {
		select {
		case <-sess.closeChan:
			return
		case msg := <-sess.writeChan:
			sess.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sess.conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

// queueMessage adds a message to the write queue (non-blocking)
func (sess *wsSession) queueMessage(msg any) {
	sess.mu.RLock()
	closed := sess.closed
	sess.mu.RUnlock()
	if closed {
		return
	}
	select {
	case sess.writeChan <- msg:
	default:
		// Queue full, drop message (shouldn't happen with proper sizing)
	}
}

// close terminates the session once. writeChan is left open so a
// concurrent queueMessage can never send on a closed channel; writePump
// exits via closeChan and straggler messages are simply dropped.
func (sess *wsSession) close() {
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return
	}
	sess.closed = true
	sess.mu.Unlock()

	sess.cancel()
	close(sess.closeChan)
	sess.buffer.Clear()
	_ = sess.conn.Close()
}

// readLoop processes incoming frames until the client disconnects
func (sess *wsSession) readLoop() {
	defer sess.close()

	for {
		select {
		case <-sess.closeChan:
			return
		default:
			messageType, message, err := sess.conn.ReadMessage()
			if err != nil {
				return
			}

			// Binary frames are raw recorder chunks
			if messageType == websocket.BinaryMessage {
				sess.appendAudio(message)
				continue
			}

			var clientMsg messages.ClientMessage
			if err := json.Unmarshal(message, &clientMsg); err != nil {
				sess.queueMessage(messages.NewErrorMessage(sess.id, messages.ErrCodeInvalidMessage, "Invalid message format"))
				continue
			}

			sess.processClientMessage(&clientMsg)
		}
	}
}

func (sess *wsSession) processClientMessage(msg *messages.ClientMessage) {
	switch msg.Type {
	case "audio":
		var payload messages.AudioPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			sess.queueMessage(messages.NewErrorMessage(sess.id, messages.ErrCodeInvalidMessage, "Invalid audio payload"))
			return
		}
		audioBytes, err := base64.StdEncoding.DecodeString(payload.Data)
		if err != nil {
			sess.queueMessage(messages.NewErrorMessage(sess.id, messages.ErrCodeInvalidMessage, "Invalid base64 audio data"))
			return
		}
		sess.appendAudio(audioBytes)

	case "text":
		var payload messages.TextPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			sess.queueMessage(messages.NewErrorMessage(sess.id, messages.ErrCodeInvalidMessage, "Invalid text payload"))
			return
		}
		go sess.runTurn(agent.TurnRequest{SessionID: sess.id, Text: payload.Text})

	case "config":
		var payload messages.ConfigPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			sess.queueMessage(messages.NewErrorMessage(sess.id, messages.ErrCodeInvalidMessage, "Invalid config payload"))
			return
		}
		sess.applyConfig(&payload)
		sess.queueMessage(messages.NewStatusMessage(sess.id, "configured", ""))

	case "control":
		var payload messages.ControlPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			sess.queueMessage(messages.NewErrorMessage(sess.id, messages.ErrCodeInvalidMessage, "Invalid control payload"))
			return
		}
		sess.handleControl(&payload)

	default:
		sess.queueMessage(messages.NewErrorMessage(sess.id, messages.ErrCodeInvalidMessage, "Unknown message type: "+msg.Type))
	}
}

func (sess *wsSession) handleControl(payload *messages.ControlPayload) {
	switch payload.Action {
	case "ping":
		sess.queueMessage(messages.NewStatusMessage(sess.id, "pong", ""))

	case "end_turn":
		if sess.buffer.IsEmpty() {
			sess.queueMessage(messages.NewErrorMessage(sess.id, messages.ErrCodeInvalidMessage, "end_turn with no buffered audio"))
			return
		}
		audio := sess.buffer.Flush()
		go sess.runTurn(agent.TurnRequest{SessionID: sess.id, Audio: audio})

	case "reset":
		sess.buffer.Clear()
		if err := sess.agent.Store.Clear(sess.ctx, sess.id); err != nil {
			sess.queueMessage(messages.NewErrorMessage(sess.id, messages.ErrCodeSessionFailed, err.Error()))
			return
		}
		sess.queueMessage(messages.NewStatusMessage(sess.id, "reset", ""))

	default:
		sess.queueMessage(messages.NewErrorMessage(sess.id, messages.ErrCodeInvalidMessage, "Unknown control action: "+payload.Action))
	}
}

func (sess *wsSession) appendAudio(chunk []byte) {
	if err := sess.buffer.Append(chunk); err != nil {
		sess.queueMessage(messages.NewErrorMessage(sess.id, messages.ErrCodeBufferFull,
			fmt.Sprintf("Audio buffer full (max %d bytes)", sess.buffer.MaxSize())))
	}
}

// applyConfig overrides session keys with user-supplied ones
func (sess *wsSession) applyConfig(payload *messages.ConfigPayload) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if payload.AssemblyAIKey != "" {
		sess.keys.AssemblyAI = payload.AssemblyAIKey
	}
	if payload.GeminiKey != "" {
		sess.keys.Gemini = payload.GeminiKey
	}
	if payload.MurfKey != "" {
		sess.keys.Murf = payload.MurfKey
	}
	if payload.NewsAPIKey != "" {
		sess.keys.NewsAPI = payload.NewsAPIKey
	}
}

// runTurn executes one turn and streams each stage back to the client
func (sess *wsSession) runTurn(req agent.TurnRequest) {
	sess.turnMu.Lock()
	defer sess.turnMu.Unlock()

	sess.mu.RLock()
	req.Keys = sess.keys
	sess.mu.RUnlock()

	req.Hooks = agent.Hooks{
		OnTranscript: func(text string) {
			sess.queueMessage(messages.NewTranscriptMessage(sess.id, text))
		},
		OnReply: func(text string) {
			sess.queueMessage(messages.NewReplyMessage(sess.id, text))
		},
	}

	sess.queueMessage(messages.NewStatusMessage(sess.id, "accepted", ""))

	result, err := sess.agent.Turn(sess.ctx, req)
	if err != nil {
		code, _ := classifyTurnError(err)
		log.Printf("[%s] streaming turn failed (%s): %v", shortSession(sess.id), code, err)
		sess.queueMessage(messages.NewErrorMessage(sess.id, code, err.Error()))
		return
	}

	if result.AudioURL != "" {
		sess.queueMessage(messages.NewSpeechMessage(sess.id, result.AudioURL, result.AudioURLs))
	}
	sess.queueMessage(messages.NewStatusMessage(sess.id, "turn_complete", ""))
}
