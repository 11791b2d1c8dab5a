package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

type RedisStore struct {
	C *redis.Client
}

func NewRedis() (*RedisStore, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     viper.GetString("redis.address"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis, %w", err)
	}

	return &RedisStore{C: c}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.C.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("failed to get key %s, %w", key, err)
	}

	return v, true, nil
}

func (r *RedisStore) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode key %s, %w", key, err)
	}

	return true, nil
}

func (r *RedisStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.C.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s, %w", key, err)
	}

	return nil
}

func (r *RedisStore) PutJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode key %s, %w", key, err)
	}

	return r.Put(ctx, key, string(raw), ttl)
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.C.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s, %w", key, err)
	}

	return nil
}
