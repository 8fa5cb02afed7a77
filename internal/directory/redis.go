package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	roomKeyPrefix  = "feud:room:"
	DefaultRoomTTL = 6 * time.Hour
)

// Redis stores room codes with a TTL so abandoned rooms expire even if the
// server that created them never removes them.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultRoomTTL
	}
	return &Redis{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and verifies the server answers a ping.
func Connect(ctx context.Context, url, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func roomKey(code string) string {
	return roomKeyPrefix + normalizeCode(code)
}

func (r *Redis) Register(ctx context.Context, code, gameID string) error {
	if normalizeCode(code) == "" || gameID == "" {
		return errors.New("code and game id are required")
	}
	return r.client.Set(ctx, roomKey(code), gameID, r.ttl).Err()
}

func (r *Redis) Lookup(ctx context.Context, code string) (string, error) {
	gameID, err := r.client.Get(ctx, roomKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup room: %w", err)
	}
	return gameID, nil
}

func (r *Redis) Remove(ctx context.Context, code string) error {
	return r.client.Del(ctx, roomKey(code)).Err()
}
