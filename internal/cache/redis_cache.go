package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"yarey/backend/internal/loyalty"
)

func NewRedisClient(addr string, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

type RedisLoyaltyCache struct {
	client *redis.Client
}

func NewRedisLoyaltyCache(client *redis.Client) *RedisLoyaltyCache {
	return &RedisLoyaltyCache{client: client}
}

func (c *RedisLoyaltyCache) Get(ctx context.Context, clientID string) (*loyalty.Summary, bool, error) {
	val, err := c.client.Get(ctx, loyaltyKey(clientID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var summary loyalty.Summary
	if err := json.Unmarshal([]byte(val), &summary); err != nil {
		return nil, false, err
	}
	return &summary, true, nil
}

func (c *RedisLoyaltyCache) Set(ctx context.Context, clientID string, value *loyalty.Summary, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, loyaltyKey(clientID), payload, ttl).Err()
}

func (c *RedisLoyaltyCache) Delete(ctx context.Context, clientIDs ...string) error {
	if len(clientIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(clientIDs))
	for _, id := range clientIDs {
		keys = append(keys, loyaltyKey(id))
	}
	return c.client.Del(ctx, keys...).Err()
}
