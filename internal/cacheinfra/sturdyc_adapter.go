package cacheinfra

import (
	"context"
	"reflect"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-tba-cache/internal/configerr"
)

// ConfigError is re-exported so callers can match validation failures.
type ConfigError = configerr.ConfigError

// Config holds the configuration for the sturdyc cache adapter.
type Config struct {
	// Capacity defines the maximum number of cached query results.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	NumShards int

	// TTL is the default time-to-live for cached query results. Invalidation
	// normally removes stale entries long before this expires.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EarlyRefresh configures early refresh behavior for cached entries.
	// If nil, early refresh is disabled.
	EarlyRefresh *EarlyRefreshConfig

	// MissingRecordStorage remembers queries that returned no results.
	MissingRecordStorage bool

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration
}

// EarlyRefreshConfig configures early refresh behavior.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns a Config sized for cached API query results.
func DefaultConfig() Config {
	return Config{
		Capacity:           50000,
		NumShards:          256,
		TTL:                24 * time.Hour,
		EvictionPercentage: 10,
	}
}

// ToSturdycOptions converts the optional parts of Config to sturdyc options.
// Capacity, NumShards, TTL, and EvictionPercentage go to sturdyc.New directly.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EarlyRefresh != nil {
		options = append(options, sturdyc.WithEarlyRefreshes(
			c.EarlyRefresh.MinAsyncRefreshTime,
			c.EarlyRefresh.MaxAsyncRefreshTime,
			c.EarlyRefresh.SyncRefreshTime,
			c.EarlyRefresh.RetryBaseDelay,
		))
	}

	if c.MissingRecordStorage {
		options = append(options, sturdyc.WithMissingRecordStorage())
	}

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, configerr.Positive),
		validation.Field(&c.NumShards, configerr.Positive),
		validation.Field(&c.TTL, configerr.Positive),
		validation.Field(&c.EvictionPercentage,
			validation.By(func(value any) error {
				if p, _ := value.(int); p < 1 || p > 100 {
					return errMsg("must be between 1 and 100")
				}
				return nil
			}),
		),
	)
	if err := configerr.From("", err); err != nil {
		return err
	}

	if c.EarlyRefresh != nil {
		er := *c.EarlyRefresh
		err := validation.ValidateStruct(&er,
			validation.Field(&er.MinAsyncRefreshTime, configerr.NonNegative),
			validation.Field(&er.MaxAsyncRefreshTime, configerr.NonNegative),
			validation.Field(&er.SyncRefreshTime, configerr.NonNegative),
			validation.Field(&er.RetryBaseDelay, configerr.NonNegative),
		)
		return configerr.From("EarlyRefresh.", err)
	}
	return nil
}

type errMsg string

func (e errMsg) Error() string { return string(e) }

// SturdycService wraps a sturdyc client as an in-process cached query store.
type SturdycService struct {
	client *sturdyc.Client[any]
}

// NewSturdycService creates a new sturdyc cache service adapter.
func NewSturdycService(cfg Config) (*SturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &SturdycService{client: client}, nil
}

// validateFetchFn checks fetchFn has the signature func(context.Context) (T, error).
func validateFetchFn(fetchFn any) error {
	if fetchFn == nil {
		return &ConfigError{Field: "fetchFn", Message: "cannot be nil"}
	}

	fnType := reflect.TypeOf(fetchFn)
	if fnType.Kind() != reflect.Func {
		return &ConfigError{Field: "fetchFn", Message: "must be a function"}
	}

	if fnType.NumIn() != 1 || fnType.NumOut() != 2 {
		return &ConfigError{Field: "fetchFn", Message: "must have signature func(context.Context) (T, error)"}
	}

	contextType := reflect.TypeOf((*context.Context)(nil)).Elem()
	if !fnType.In(0).Implements(contextType) && fnType.In(0) != contextType {
		return &ConfigError{Field: "fetchFn", Message: "first parameter must be context.Context"}
	}

	errorType := reflect.TypeOf((*error)(nil)).Elem()
	if fnType.Out(1) != errorType {
		return &ConfigError{Field: "fetchFn", Message: "second return value must be error"}
	}

	return nil
}

// GetOrFetch returns the cached value for key, running fetchFn on a miss.
func (s *SturdycService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	return s.client.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return callFetchFn(ctx, fetchFn)
	})
}

// callFetchFn invokes a pre-validated func(context.Context) (T, error).
func callFetchFn(ctx context.Context, fetchFn any) (any, error) {
	if fn, ok := fetchFn.(func(context.Context) (any, error)); ok {
		return fn(ctx)
	}

	results := reflect.ValueOf(fetchFn).Call([]reflect.Value{reflect.ValueOf(ctx)})

	var result any
	if results[0].IsValid() && results[0].CanInterface() {
		result = results[0].Interface()
	}

	var err error
	if errValue := results[1]; errValue.IsValid() && !errValue.IsNil() {
		err = errValue.Interface().(error)
	}

	return result, err
}

// Delete removes a single cached query result.
func (s *SturdycService) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// DeleteMulti removes every key; absent keys are ignored.
func (s *SturdycService) DeleteMulti(ctx context.Context, keys []string) error {
	for _, key := range keys {
		s.client.Delete(key)
	}
	return nil
}

// Size returns the number of cached entries.
func (s *SturdycService) Size() int {
	return s.client.Size()
}
