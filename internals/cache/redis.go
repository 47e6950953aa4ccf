package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache membungkus redis.Client dengan pooling terpusat.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(host, port, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisCache{client: client}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	v, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("[CACHE] redis set err: %v", err)
	}
}

// Invalidate memakai SCAN (bukan KEYS) supaya tidak memblok Redis.
func (r *RedisCache) Invalidate(ctx context.Context, pattern string) {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("[CACHE] redis scan err: %v", err)
		return
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			log.Printf("[CACHE] redis del err: %v", err)
		}
	}
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
