package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, client, action string, limit time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}

	key := fmt.Sprintf("rate_limit:%s:%s", action, client)

	wasSet, err := rdb.SetNX(ctx, key, "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func ClearRateLimit(ctx context.Context, rdb *redis.Client, client, action string) error {
	if rdb == nil {
		return nil
	}
	key := fmt.Sprintf("rate_limit:%s:%s", action, client)
	_, err := rdb.Del(ctx, key).Result()
	return err
}
