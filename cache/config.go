package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-tba-cache/internal/cacheinfra"
	"github.com/goliatone/go-tba-cache/internal/configerr"
)

// ConfigError is returned by Validate for invalid configuration.
type ConfigError = configerr.ConfigError

// Backend selects the CacheService implementation.
type Backend string

const (
	// BackendMemory keeps results in process using sturdyc.
	BackendMemory Backend = "memory"
	// BackendRedis keeps results in Redis so every process shares them.
	BackendRedis Backend = "redis"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Backend              Backend
	Capacity             int
	NumShards            int
	TTL                  time.Duration
	EvictionPercentage   int
	EarlyRefresh         *EarlyRefreshConfig
	MissingRecordStorage bool
	EvictionInterval     time.Duration
	RedisKeyPrefix       string
}

// EarlyRefreshConfig mirrors the underlying sturdyc early refresh options.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	cfg := convertFromInternal(cacheinfra.DefaultConfig())
	cfg.Backend = BackendMemory
	cfg.RedisKeyPrefix = cacheinfra.DefaultRedisConfig().KeyPrefix
	return cfg
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.In(BackendMemory, BackendRedis).Error("must be memory or redis")),
	)
	if err := configerr.From("", err); err != nil {
		return err
	}
	if c.Backend == BackendRedis {
		return c.toRedis().Validate()
	}
	return c.toInternal().Validate()
}

// NewCacheService constructs the configured backend. client is required for
// BackendRedis and ignored otherwise.
func NewCacheService(cfg Config, client redis.UniversalClient) (CacheService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend == BackendRedis {
		return cacheinfra.NewRedisService(client, cfg.toRedis())
	}
	return cacheinfra.NewSturdycService(cfg.toInternal())
}

func (c Config) toRedis() cacheinfra.RedisConfig {
	return cacheinfra.RedisConfig{KeyPrefix: c.RedisKeyPrefix, TTL: c.TTL}
}

func (c Config) toInternal() cacheinfra.Config {
	var early *cacheinfra.EarlyRefreshConfig
	if c.EarlyRefresh != nil {
		early = &cacheinfra.EarlyRefreshConfig{
			MinAsyncRefreshTime: c.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: c.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     c.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      c.EarlyRefresh.RetryBaseDelay,
		}
	}

	return cacheinfra.Config{
		Capacity:             c.Capacity,
		NumShards:            c.NumShards,
		TTL:                  c.TTL,
		EvictionPercentage:   c.EvictionPercentage,
		EarlyRefresh:         early,
		MissingRecordStorage: c.MissingRecordStorage,
		EvictionInterval:     c.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	var early *EarlyRefreshConfig
	if cfg.EarlyRefresh != nil {
		early = &EarlyRefreshConfig{
			MinAsyncRefreshTime: cfg.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: cfg.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     cfg.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      cfg.EarlyRefresh.RetryBaseDelay,
		}
	}

	return Config{
		Capacity:             cfg.Capacity,
		NumShards:            cfg.NumShards,
		TTL:                  cfg.TTL,
		EvictionPercentage:   cfg.EvictionPercentage,
		EarlyRefresh:         early,
		MissingRecordStorage: cfg.MissingRecordStorage,
		EvictionInterval:     cfg.EvictionInterval,
	}
}
