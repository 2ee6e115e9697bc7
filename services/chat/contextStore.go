// File: services/chat/contextStore.go
package chat

import (
	"context"
	"encoding/json"
	"time"

	"pharmachat/models"
	"pharmachat/utils"

	"github.com/go-redis/redis/v8"
)

// SessionStore persists the conversational context between turns. The
// context is stored as an opaque JSON blob keyed by session id and is
// overwritten wholesale each turn; concurrent turns on the same session id
// are last-write-wins.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*models.SessionContext, error)
	Save(ctx context.Context, sessionID string, sess *models.SessionContext) error
	Clear(ctx context.Context, sessionID string) error
}

// RedisSessionStore implements SessionStore on Redis with a TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a session store with the given TTL.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

// Load returns the stored context for a session, or a fresh empty context
// when none exists yet.
func (s *RedisSessionStore) Load(ctx context.Context, sessionID string) (*models.SessionContext, error) {
	key := utils.SessionCachePrefix + sessionID
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return &models.SessionContext{SessionID: sessionID}, nil
	}
	if err != nil {
		return nil, err
	}
	var sess models.SessionContext
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Save writes the context back, refreshing the TTL.
func (s *RedisSessionStore) Save(ctx context.Context, sessionID string, sess *models.SessionContext) error {
	key := utils.SessionCachePrefix + sessionID
	sess.UpdatedAt = time.Now()
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, s.ttl).Err()
}

// Clear removes the stored context for a session.
func (s *RedisSessionStore) Clear(ctx context.Context, sessionID string) error {
	key := utils.SessionCachePrefix + sessionID
	return s.client.Del(ctx, key).Err()
}
