package history

import (
	"context"
	"sync"
	"time"
)

type memorySession struct {
	messages     []Message
	lastActivity time.Time
}

// MemoryStore keeps transcripts in process memory
type MemoryStore struct {
	sessions       map[string]*memorySession
	mu             sync.RWMutex
	maxSessions    int
	sessionTimeout time.Duration
}

// NewMemoryStore creates an in-memory history store
func NewMemoryStore(maxSessions int, sessionTimeout time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions:       make(map[string]*memorySession),
		maxSessions:    maxSessions,
		sessionTimeout: sessionTimeout,
	}
}

// Append adds a message to a session, creating the session if needed
func (ms *MemoryStore) Append(_ context.Context, sessionID string, msg Message) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	sess, exists := ms.sessions[sessionID]
	if !exists {
		if ms.maxSessions > 0 && len(ms.sessions) >= ms.maxSessions {
			return ErrTooManySessions
		}
		sess = &memorySession{}
		ms.sessions[sessionID] = sess
	}

	sess.messages = append(sess.messages, msg)
	sess.lastActivity = time.Now()
	return nil
}

// Messages returns the full transcript for a session, oldest first
func (ms *MemoryStore) Messages(_ context.Context, sessionID string) ([]Message, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	sess, exists := ms.sessions[sessionID]
	if !exists {
		return nil, nil
	}

	out := make([]Message, len(sess.messages))
	copy(out, sess.messages)
	return out, nil
}

// Window returns at most n of the most recent messages, oldest first
func (ms *MemoryStore) Window(ctx context.Context, sessionID string, n int) ([]Message, error) {
	msgs, err := ms.Messages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return msgs, nil
}

// Clear removes a session and its transcript
func (ms *MemoryStore) Clear(_ context.Context, sessionID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.sessions, sessionID)
	return nil
}

// ActiveSessionCount returns the number of tracked sessions
func (ms *MemoryStore) ActiveSessionCount(_ context.Context) int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.sessions)
}

// CleanupInactiveSessions removes sessions that have been inactive
func (ms *MemoryStore) CleanupInactiveSessions(_ context.Context) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	for id, sess := range ms.sessions {
		if now.Sub(sess.lastActivity) > ms.sessionTimeout {
			delete(ms.sessions, id)
		}
	}
}

// StartCleanupRoutine starts periodic cleanup of inactive sessions
func (ms *MemoryStore) StartCleanupRoutine(ctx context.Context) {
	runCleanupLoop(ctx, ms)
}

// Shutdown drops all sessions
func (ms *MemoryStore) Shutdown() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.sessions = make(map[string]*memorySession)
}
