// Package server is the HTTP and WebSocket transport for the assistant.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"leo-agent/agent"
	"leo-agent/config"
	"leo-agent/history"
)

// Server serves the REST API, the WebSocket endpoint, and the static
// frontend
type Server struct {
	httpServer *http.Server
	upgrader   websocket.Upgrader
	agent      *agent.Agent
	store      history.Store
	config     *config.Config
	startedAt  time.Time
}

// NewServer wires the routes and returns a ready-to-start server
func NewServer(cfg *config.Config, store history.Store, ag *agent.Agent) *Server {
	s := &Server{
		agent:     ag,
		store:     store,
		config:    cfg,
		startedAt: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024, // 64KB for audio chunks
			WriteBufferSize: 64 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(cfg.AllowedOrigins, r.Header.Get("Origin"))
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /agent/chat/{session_id}", s.handleChat)
	mux.HandleFunc("POST /agent/text/{session_id}", s.handleText)
	mux.HandleFunc("GET /agent/history/{session_id}", s.handleHistory)
	mux.HandleFunc("DELETE /agent/history/{session_id}", s.handleClearHistory)
	mux.HandleFunc("GET /agent/session", s.handleNewSession)
	mux.HandleFunc("GET /ws/chat/{session_id}", s.handleWebSocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Swagger UI over the annotated handlers
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Static frontend
	fs := http.FileServer(http.Dir(cfg.StaticDir))
	mux.Handle("GET /static/", http.StripPrefix("/static/", fs))
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, cfg.StaticDir+"/index.html")
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.withCORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start begins listening for connections
func (s *Server) Start() error {
	log.Printf("server starting on port %d", s.config.Port)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server and the history store
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("shutting down server...")
	s.store.Shutdown()
	return s.httpServer.Shutdown(ctx)
}

// originAllowed checks an Origin header against the configured list
func originAllowed(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

// withCORS handles preflight requests and sets CORS headers so the
// config panel can attach per-request key headers from the browser.
func (s *Server) withCORS(next http.Handler) http.Handler {
	allowHeaders := strings.Join([]string{
		"Content-Type",
		HeaderAssemblyAIKey,
		HeaderGeminiKey,
		HeaderMurfKey,
		HeaderNewsAPIKey,
	}, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && originAllowed(s.config.AllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
