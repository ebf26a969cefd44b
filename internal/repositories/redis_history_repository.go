package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tripmate/internal/agent"
	"tripmate/pkg/utils"
)

const redisHistoryPrefix = "tripmate:history:"

// RedisHistoryRepository stores each transcript as one JSON string value.
type RedisHistoryRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisHistoryRepository keeps transcripts for ttl; zero keeps them forever.
func NewRedisHistoryRepository(client redis.UniversalClient, ttl time.Duration) *RedisHistoryRepository {
	return &RedisHistoryRepository{client: client, ttl: ttl}
}

func (r *RedisHistoryRepository) Describe(key string) string {
	return "redis:" + redisHistoryPrefix + key
}

func (r *RedisHistoryRepository) Load(ctx context.Context, key string) ([]agent.Item, error) {
	data, err := r.client.Get(ctx, redisHistoryPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", utils.ErrSessionNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrHistoryStore, err)
	}
	return decodeItems(data)
}

func (r *RedisHistoryRepository) Save(ctx context.Context, key string, items []agent.Item) error {
	data, err := encodeItems(items)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, redisHistoryPrefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrHistoryStore, err)
	}
	return nil
}
