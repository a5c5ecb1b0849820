package cacheinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-tba-cache/internal/configerr"
)

// deleteBatchSize caps the number of keys sent in a single DEL.
const deleteBatchSize = 500

// RedisConfig configures the shared cached query store.
type RedisConfig struct {
	// KeyPrefix namespaces every cache key written by this service.
	KeyPrefix string

	// TTL bounds how long a cached result survives without invalidation.
	TTL time.Duration
}

// DefaultRedisConfig returns the defaults used by the worker and API processes.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{KeyPrefix: "tba:cache:", TTL: 24 * time.Hour}
}

// Validate checks the configuration.
func (c RedisConfig) Validate() error {
	return configerr.From("", validation.ValidateStruct(&c,
		validation.Field(&c.KeyPrefix, validation.Required.Error("cannot be blank")),
		validation.Field(&c.TTL, configerr.Positive),
	))
}

// RedisService stores cached query results in Redis as JSON so every process
// sharing the instance sees the same entries and the same invalidations.
type RedisService struct {
	client redis.UniversalClient
	cfg    RedisConfig
}

// NewRedisService wraps client.
func NewRedisService(client redis.UniversalClient, cfg RedisConfig) (*RedisService, error) {
	if client == nil {
		return nil, &ConfigError{Field: "client", Message: "cannot be nil"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RedisService{client: client, cfg: cfg}, nil
}

func (s *RedisService) key(k string) string {
	return s.cfg.KeyPrefix + k
}

// GetOrFetch decodes a cached JSON value into fetchFn's result type, or runs
// fetchFn and stores its result.
func (s *RedisService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}
	resultType := reflect.TypeOf(fetchFn).Out(0)

	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	switch {
	case err == nil:
		target := reflect.New(resultType)
		if err := json.Unmarshal(raw, target.Interface()); err == nil {
			return target.Elem().Interface(), nil
		}
		// Undecodable entries are refetched and overwritten below.
	case !errors.Is(err, redis.Nil):
		return nil, fmt.Errorf("redis_cache_get_failed: %w", err)
	}

	result, err := callFetchFn(ctx, fetchFn)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return result, nil
	}
	if err := s.client.Set(ctx, s.key(key), encoded, s.cfg.TTL).Err(); err != nil {
		return nil, fmt.Errorf("redis_cache_set_failed: %w", err)
	}
	return result, nil
}

// Delete removes a single cached result.
func (s *RedisService) Delete(ctx context.Context, key string) error {
	return s.DeleteMulti(ctx, []string{key})
}

// DeleteMulti removes keys in batches; absent keys are ignored by Redis.
func (s *RedisService) DeleteMulti(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(keys))
		batch := make([]string, 0, end-start)
		for _, k := range keys[start:end] {
			batch = append(batch, s.key(k))
		}
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis_cache_delete_failed: %w", err)
		}
	}
	return nil
}
