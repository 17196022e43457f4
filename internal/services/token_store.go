// Package services contains the business logic of the todo-me application.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"todo-me/internal/domain"
)

// TokenStore is the shared, TTL-capable key-value store undo tokens
// live in. Implementations must make GetDel a single atomic operation:
// under concurrent access for the same key, exactly one caller gets the
// value and every other caller gets a miss. A client-side get followed
// by a client-side delete is not an acceptable implementation.
type TokenStore interface {
	// SetWithTTL stores value under key, expiring after ttl.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves the value under key without removing it.
	Get(ctx context.Context, key string) ([]byte, error)

	// GetDel atomically retrieves and removes the value under key.
	GetDel(ctx context.Context, key string) ([]byte, error)

	// Delete removes the value under key.
	Delete(ctx context.Context, key string) error

	// DeleteByPattern removes all keys matching a glob pattern and
	// returns how many were removed.
	DeleteByPattern(ctx context.Context, pattern string) (int, error)
}

// IsTokenStoreMiss reports whether err represents an absent key rather
// than a store failure.
func IsTokenStoreMiss(err error) bool {
	return domain.IsErrorType(err, domain.NotFoundError)
}

// RedisTokenStore implements TokenStore on Redis. GETDEL gives the
// atomic consume the undo engine's single-use guarantee rests on.
type RedisTokenStore struct {
	client *redis.Client
	prefix string
}

// NewRedisTokenStore creates a Redis-backed token store. All keys are
// namespaced under prefix.
func NewRedisTokenStore(client *redis.Client, prefix string) *RedisTokenStore {
	return &RedisTokenStore{
		client: client,
		prefix: prefix,
	}
}

// SetWithTTL stores value under key with the given TTL.
func (r *RedisTokenStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		return domain.NewExternalServiceError("TOKEN_STORE_UNAVAILABLE", "Failed to write token", err)
	}
	return nil
}

// Get retrieves the value under key.
func (r *RedisTokenStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NewNotFoundError("TOKEN_NOT_FOUND", "Token not found")
		}
		return nil, domain.NewExternalServiceError("TOKEN_STORE_UNAVAILABLE", "Failed to read token", err)
	}
	return value, nil
}

// GetDel atomically retrieves and removes the value under key using a
// single server-side GETDEL.
func (r *RedisTokenStore) GetDel(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.GetDel(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NewNotFoundError("TOKEN_NOT_FOUND", "Token not found")
		}
		return nil, domain.NewExternalServiceError("TOKEN_STORE_UNAVAILABLE", "Failed to consume token", err)
	}
	return value, nil
}

// Delete removes the value under key.
func (r *RedisTokenStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return domain.NewExternalServiceError("TOKEN_STORE_UNAVAILABLE", "Failed to delete token", err)
	}
	return nil
}

// DeleteByPattern removes all keys matching the glob pattern.
func (r *RedisTokenStore) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, domain.NewExternalServiceError("TOKEN_STORE_UNAVAILABLE", "Failed to scan tokens", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	deleted, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, domain.NewExternalServiceError("TOKEN_STORE_UNAVAILABLE", "Failed to delete tokens", err)
	}
	return int(deleted), nil
}
