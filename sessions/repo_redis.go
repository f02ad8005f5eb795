package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepo shares the session cache between gateway instances. Entries
// expire together with the access token they were decoded from.
type RedisRepo struct {
	client  *redis.Client
	prefix  string
	nowTime func() time.Time
}

var _ Repo = (*RedisRepo)(nil)

// NewRedisRepo creates a Redis-backed session cache.
func NewRedisRepo(client *redis.Client) *RedisRepo {
	return &RedisRepo{
		client:  client,
		prefix:  "course-session:",
		nowTime: time.Now,
	}
}

// NewRedisRepoFromURL parses a redis:// URL and checks the connection.
func NewRedisRepoFromURL(ctx context.Context, redisURL string) (*RedisRepo, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("session: invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("session: redis ping: %w", err)
	}
	return NewRedisRepo(client), nil
}

func (r *RedisRepo) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *RedisRepo) Get(ctx context.Context, sessionID string) (Session, error) {
	val, err := r.client.Get(ctx, r.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}

	var s Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return Session{}, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	if !s.Payload.ValidAt(r.nowTime()) {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (r *RedisRepo) Upsert(ctx context.Context, s Session) error {
	if s.ID == "" {
		return fmt.Errorf("session: missing session id")
	}

	ttl := s.Payload.ExpiresTime().Sub(r.nowTime())
	if ttl <= 0 {
		// Already expired, drop instead of caching
		return r.client.Del(ctx, r.key(s.ID)).Err()
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}
	return r.client.Set(ctx, r.key(s.ID), data, ttl).Err()
}

func (r *RedisRepo) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}

// Close releases the underlying Redis client
func (r *RedisRepo) Close() error {
	return r.client.Close()
}

// Client returns the underlying Redis client so other components can share the connection
func (r *RedisRepo) Client() *redis.Client {
	return r.client
}
