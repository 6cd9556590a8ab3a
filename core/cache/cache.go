package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"calendar-service/core/logger"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by GetJSON when the key does not exist.
var ErrMiss = errors.New("cache: miss")

type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// Publish sends value as JSON to the pub/sub channel.
	Publish(ctx context.Context, channel string, value any) error
	Ping(ctx context.Context) error
	Close() error
}

type redisCache struct {
	client *redis.Client
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisCache(cfg RedisConfig) Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &redisCache{client: client}
}

func (c *redisCache) GetJSON(ctx context.Context, key string, dest any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		logger.Error("Cache:GetJSON", err, "key", key)
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (c *redisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		logger.Error("Cache:SetJSON", err, "key", key)
		return err
	}
	return nil
}

func (c *redisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) Publish(ctx context.Context, channel string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Publish(ctx, channel, raw).Err(); err != nil {
		logger.Error("Cache:Publish", err, "channel", channel)
		return err
	}
	return nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
