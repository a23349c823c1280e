package progress

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionTimeout = 3 * time.Second

// RedisSessionStore backs each conversation's session with a Redis
// hash, so session-assigned student ids survive a process restart.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a Redis-backed session store. Sessions
// expire after ttl of inactivity; ttl <= 0 means no expiry.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Session(conversationID string) Session {
	return &redisSession{
		client: s.client,
		key:    "session:" + conversationID,
		ttl:    s.ttl,
	}
}

type redisSession struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func (s *redisSession) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout)
	defer cancel()

	v, err := s.client.HGet(ctx, s.key, key).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("session read failed", "key", s.key, "error", err)
		}
		return "", false
	}
	return v, true
}

func (s *redisSession) Set(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout)
	defer cancel()

	if err := s.client.HSet(ctx, s.key, key, value).Err(); err != nil {
		slog.Warn("session write failed", "key", s.key, "error", err)
		return
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, s.key, s.ttl).Err(); err != nil {
			slog.Warn("session expire failed", "key", s.key, "error", err)
		}
	}
}
