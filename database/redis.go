package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	client *redis.Client
}

func GetRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisClient{client: client}, nil
}

func usedTokenKey(tokenHash string) string {
	return fmt.Sprintf("used_token:%s", tokenHash)
}

// MarkTokenUsed caches a consumed token hash until the token would have
// expired anyway. The database ledger stays authoritative.
func (r *RedisClient) MarkTokenUsed(ctx context.Context, tokenHash string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return r.client.Set(ctx, usedTokenKey(tokenHash), 1, ttl).Err()
}

func (r *RedisClient) IsTokenUsed(ctx context.Context, tokenHash string) (bool, error) {
	n, err := r.client.Exists(ctx, usedTokenKey(tokenHash)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
