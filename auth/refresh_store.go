package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"options-pricer/config"

	"github.com/go-redis/redis/v8"
)

var ErrRefreshNotFound = errors.New("refresh token not found")

// RefreshStore remembers which refresh tokens are still live.
type RefreshStore interface {
	Save(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error
	// Consume removes the token and returns its owner, or ErrRefreshNotFound.
	Consume(ctx context.Context, tokenID string) (uint, error)
}

var _ RefreshStore = (*RedisRefreshStore)(nil)

type RedisRefreshStore struct {
	rdb *redis.Client
}

// NewRedisClient connects to the Redis server named in cfg and pings it.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}

func NewRedisRefreshStore(rdb *redis.Client) *RedisRefreshStore {
	return &RedisRefreshStore{rdb: rdb}
}

func refreshKey(tokenID string) string {
	return "refresh:" + tokenID
}

func (s *RedisRefreshStore) Save(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error {
	return s.rdb.Set(ctx, refreshKey(tokenID), userID, ttl).Err()
}

func (s *RedisRefreshStore) Consume(ctx context.Context, tokenID string) (uint, error) {
	val, err := s.rdb.GetDel(ctx, refreshKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrRefreshNotFound
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt refresh entry %q: %w", val, err)
	}
	return uint(id), nil
}
