package history

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const activeSessionsKey = "active_sessions"

// RedisStore keeps transcripts in Redis lists, one list per session.
// Session expiry is delegated to Redis key TTLs, refreshed on every append.
type RedisStore struct {
	client         *redis.Client
	maxSessions    int
	sessionTimeout time.Duration
}

// NewRedisStore creates a Redis-backed history store around an existing client
func NewRedisStore(client *redis.Client, maxSessions int, sessionTimeout time.Duration) *RedisStore {
	return &RedisStore{
		client:         client,
		maxSessions:    maxSessions,
		sessionTimeout: sessionTimeout,
	}
}

func historyKey(sessionID string) string {
	return "history:" + sessionID
}

// Append adds a message to a session, creating the session if needed
func (rs *RedisStore) Append(ctx context.Context, sessionID string, msg Message) error {
	key := historyKey(sessionID)

	exists, err := rs.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("history append: %w", err)
	}
	if exists == 0 && rs.maxSessions > 0 {
		count, err := rs.client.SCard(ctx, activeSessionsKey).Result()
		if err != nil {
			return fmt.Errorf("history append: %w", err)
		}
		if int(count) >= rs.maxSessions {
			return ErrTooManySessions
		}
	}

	data, err := sonic.Marshal(msg)
	if err != nil {
		return fmt.Errorf("history append: %w", err)
	}

	pipe := rs.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.SAdd(ctx, activeSessionsKey, sessionID)
	pipe.Expire(ctx, key, rs.sessionTimeout)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("history append: %w", err)
	}
	return nil
}

// Messages returns the full transcript for a session, oldest first
func (rs *RedisStore) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	return rs.rangeMessages(ctx, sessionID, 0)
}

// Window returns at most n of the most recent messages, oldest first
func (rs *RedisStore) Window(ctx context.Context, sessionID string, n int) ([]Message, error) {
	return rs.rangeMessages(ctx, sessionID, n)
}

func (rs *RedisStore) rangeMessages(ctx context.Context, sessionID string, n int) ([]Message, error) {
	start := int64(0)
	if n > 0 {
		start = int64(-n)
	}

	raw, err := rs.client.LRange(ctx, historyKey(sessionID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("history read: %w", err)
	}

	msgs := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := sonic.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("history decode: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Clear removes a session and its transcript
func (rs *RedisStore) Clear(ctx context.Context, sessionID string) error {
	pipe := rs.client.TxPipeline()
	pipe.Del(ctx, historyKey(sessionID))
	pipe.SRem(ctx, activeSessionsKey, sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("history clear: %w", err)
	}
	return nil
}

// ActiveSessionCount returns the number of tracked sessions
func (rs *RedisStore) ActiveSessionCount(ctx context.Context) int {
	count, err := rs.client.SCard(ctx, activeSessionsKey).Result()
	if err != nil {
		return 0
	}
	return int(count)
}

// CleanupInactiveSessions drops set members whose transcript key expired.
// The transcripts themselves are evicted by Redis TTLs.
func (rs *RedisStore) CleanupInactiveSessions(ctx context.Context) {
	ids, err := rs.client.SMembers(ctx, activeSessionsKey).Result()
	if err != nil {
		return
	}

	for _, id := range ids {
		exists, err := rs.client.Exists(ctx, historyKey(id)).Result()
		if err == nil && exists == 0 {
			rs.client.SRem(ctx, activeSessionsKey, id)
		}
	}
}

// StartCleanupRoutine starts periodic cleanup of expired session markers
func (rs *RedisStore) StartCleanupRoutine(ctx context.Context) {
	runCleanupLoop(ctx, rs)
}

// Shutdown closes the Redis connection
func (rs *RedisStore) Shutdown() {
	_ = rs.client.Close()
}
