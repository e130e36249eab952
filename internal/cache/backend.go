// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Backend.Get when the key does not exist.
var ErrMiss = errors.New("cache miss")

// Backend is the keyed storage the category cache is written to: one hash
// collection of per-category snapshots plus plain string keys.
type Backend interface {
	Put(ctx context.Context, collection, field, value string) error
	Delete(ctx context.Context, collection, field string) error
	Entries(ctx context.Context, collection string) (map[string]string, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// RedisBackend implements Backend on a Valkey hash and string keys.
type RedisBackend struct {
	client redis.UniversalClient
}

// NewRedisBackend wraps an already connected client.
func NewRedisBackend(client redis.UniversalClient) *RedisBackend {
	return &RedisBackend{client: client}
}

// Put sets a single hash field.
func (b *RedisBackend) Put(ctx context.Context, collection, field, value string) error {
	if err := b.client.HSet(ctx, collection, field, value).Err(); err != nil {
		return fmt.Errorf("hset %s %s: %w", collection, field, err)
	}
	return nil
}

// Delete removes a single hash field. Deleting a missing field is not an error.
func (b *RedisBackend) Delete(ctx context.Context, collection, field string) error {
	if err := b.client.HDel(ctx, collection, field).Err(); err != nil {
		return fmt.Errorf("hdel %s %s: %w", collection, field, err)
	}
	return nil
}

// Entries returns every field of the collection. A missing key yields an
// empty map.
func (b *RedisBackend) Entries(ctx context.Context, collection string) (map[string]string, error) {
	entries, err := b.client.HGetAll(ctx, collection).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", collection, err)
	}
	return entries, nil
}

// Get reads a string key, returning ErrMiss when it is absent.
func (b *RedisBackend) Get(ctx context.Context, key string) (string, error) {
	val, err := b.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return val, nil
}

// Set writes a string key without expiry. The hierarchy snapshot is replaced
// on every rebuild rather than aged out.
func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	if err := b.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
