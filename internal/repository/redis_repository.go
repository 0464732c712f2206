package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisRepository struct {
	client *redis.Client
	// cartTTL expires cart keys; zero keeps them forever.
	cartTTL time.Duration
}

func NewRedisRepository(client *redis.Client, cartTTL time.Duration) *RedisRepository {
	return &RedisRepository{
		client:  client,
		cartTTL: cartTTL,
	}
}

func (r *RedisRepository) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisRepository) Put(ctx context.Context, key string, value []byte) error {
	var ttl time.Duration
	if r.cartTTL > 0 && strings.HasPrefix(key, CartKey) {
		jitter := time.Duration(rand.Intn(5)) * time.Minute
		ttl = r.cartTTL + jitter
	}
	if err := r.client.Set(ctx, redisKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func redisKey(key string) string {
	return fmt.Sprintf("storefront:%s", key)
}
