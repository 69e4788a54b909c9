// Leo is a browser voice assistant backend. It relays microphone audio
// through AssemblyAI, Gemini and Murf, with NewsAPI and DuckDuckGo wired
// in as prefix-triggered skills, and serves the static web client.
//
// @title       Leo Voice Agent API
// @version     1.0
// @description Request relay for the Leo browser voice assistant.
// @BasePath    /
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leo-agent/agent"
	"leo-agent/config"
	"leo-agent/history"
	"leo-agent/llm"
	"leo-agent/news"
	"leo-agent/search"
	"leo-agent/server"
	"leo-agent/stt"
	"leo-agent/tts"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// History store: Redis when reachable, in-memory otherwise
	store := history.NewStore(history.Options{
		RedisURL:       cfg.RedisURL,
		RedisPassword:  cfg.RedisPassword,
		MaxSessions:    cfg.MaxSessions,
		SessionTimeout: cfg.SessionTimeout,
	})
	if _, ok := store.(*history.RedisStore); ok {
		log.Printf("history store: redis (%s)", cfg.RedisURL)
	} else {
		log.Println("history store: in-memory (redis unreachable)")
	}

	ag := &agent.Agent{
		Store:         store,
		STT:           stt.NewAssemblyAI(),
		LLM:           llm.NewGemini(cfg.GeminiModel),
		TTS:           tts.NewMurf(cfg.MurfVoice),
		News:          news.NewClient(),
		Search:        search.NewClient(),
		HistoryWindow: cfg.HistoryWindow,
	}

	srv := server.NewServer(cfg, store, ag)

	// Start cleanup routine
	ctx, cancel := context.WithCancel(context.Background())
	go store.StartCleanupRoutine(ctx)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\nReceived shutdown signal...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped")
}
