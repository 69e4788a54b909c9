// Package history stores per-session conversation transcripts.
//
// Two backends are provided: an in-memory store and a Redis-backed store.
// NewStore prefers Redis when it is reachable and silently falls back to
// memory otherwise, so a missing Redis never blocks the assistant.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message roles, matching the Gemini wire format
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ErrTooManySessions is returned when a new session would exceed the cap
var ErrTooManySessions = errors.New("maximum sessions reached")

// Message is a single conversation entry
type Message struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// Store persists conversation history per session
type Store interface {
	// Append adds a message to a session, creating the session if needed.
	// Returns ErrTooManySessions when a new session would exceed the cap.
	Append(ctx context.Context, sessionID string, msg Message) error

	// Messages returns the full transcript for a session, oldest first.
	Messages(ctx context.Context, sessionID string) ([]Message, error)

	// Window returns at most n of the most recent messages, oldest first.
	Window(ctx context.Context, sessionID string, n int) ([]Message, error)

	// Clear removes a session and its transcript.
	Clear(ctx context.Context, sessionID string) error

	// ActiveSessionCount returns the number of tracked sessions.
	ActiveSessionCount(ctx context.Context) int

	// CleanupInactiveSessions evicts sessions idle past the timeout.
	CleanupInactiveSessions(ctx context.Context)

	// StartCleanupRoutine runs periodic cleanup until ctx is cancelled.
	StartCleanupRoutine(ctx context.Context)

	// Shutdown releases backend resources.
	Shutdown()
}

// Options configures a history store
type Options struct {
	RedisURL       string
	RedisPassword  string
	MaxSessions    int
	SessionTimeout time.Duration
}

// NewStore connects to Redis and returns a Redis-backed store, or an
// in-memory store when Redis is unreachable
func NewStore(opts Options) Store {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.RedisURL,
		Password: opts.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Redis unavailable, continue without it
		_ = client.Close()
		return NewMemoryStore(opts.MaxSessions, opts.SessionTimeout)
	}

	return NewRedisStore(client, opts.MaxSessions, opts.SessionTimeout)
}

// cleanupInterval is how often the cleanup routine wakes up
const cleanupInterval = 1 * time.Minute

func runCleanupLoop(ctx context.Context, s Store) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CleanupInactiveSessions(ctx)
		}
	}
}
