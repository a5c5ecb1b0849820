package cacheinfra

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 50000 {
		t.Errorf("expected Capacity to be 50000, got %d", cfg.Capacity)
	}
	if cfg.NumShards != 256 {
		t.Errorf("expected NumShards to be 256, got %d", cfg.NumShards)
	}
	if cfg.TTL != 24*time.Hour {
		t.Errorf("expected TTL to be 24h, got %v", cfg.TTL)
	}
	if cfg.EvictionPercentage != 10 {
		t.Errorf("expected EvictionPercentage to be 10, got %d", cfg.EvictionPercentage)
	}
	if cfg.EarlyRefresh != nil {
		t.Error("expected EarlyRefresh to be disabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	base := Config{
		Capacity:           1000,
		NumShards:          16,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
		errorMsg  string
	}{
		{"valid", func(*Config) {}, "", ""},
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, "Capacity", "must be greater than 0"},
		{"zero shards", func(c *Config) { c.NumShards = 0 }, "NumShards", "must be greater than 0"},
		{"negative ttl", func(c *Config) { c.TTL = -time.Second }, "TTL", "must be greater than 0"},
		{"eviction too low", func(c *Config) { c.EvictionPercentage = 0 }, "EvictionPercentage", "must be between 1 and 100"},
		{"eviction too high", func(c *Config) { c.EvictionPercentage = 101 }, "EvictionPercentage", "must be between 1 and 100"},
		{"early refresh", func(c *Config) {
			c.EarlyRefresh = &EarlyRefreshConfig{
				MinAsyncRefreshTime: time.Second,
				MaxAsyncRefreshTime: 2 * time.Second,
				SyncRefreshTime:     3 * time.Second,
				RetryBaseDelay:      10 * time.Millisecond,
			}
		}, "", ""},
		{"negative early refresh", func(c *Config) {
			c.EarlyRefresh = &EarlyRefreshConfig{RetryBaseDelay: -time.Millisecond}
		}, "EarlyRefresh.RetryBaseDelay", "must be non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Errorf("expected no error but got: %v", err)
				}
				return
			}

			var configErr *ConfigError
			if !errors.As(err, &configErr) {
				t.Fatalf("expected ConfigError but got: %v", err)
			}
			if configErr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, configErr.Field)
			}
			if !strings.Contains(configErr.Message, tt.errorMsg) {
				t.Errorf("expected message containing %q, got %q", tt.errorMsg, configErr.Message)
			}
		})
	}
}

func TestConfig_ToSturdycOptions(t *testing.T) {
	cfg := DefaultConfig()
	if got := len(cfg.ToSturdycOptions()); got != 0 {
		t.Errorf("expected no options for defaults, got %d", got)
	}

	cfg.EarlyRefresh = &EarlyRefreshConfig{
		MinAsyncRefreshTime: time.Second,
		MaxAsyncRefreshTime: 2 * time.Second,
		SyncRefreshTime:     3 * time.Second,
		RetryBaseDelay:      time.Millisecond,
	}
	cfg.MissingRecordStorage = true
	cfg.EvictionInterval = time.Minute
	if got := len(cfg.ToSturdycOptions()); got != 3 {
		t.Errorf("expected 3 options, got %d", got)
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	want := "config error in field Capacity: must be greater than 0"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestNewSturdycService_InvalidConfig(t *testing.T) {
	service, err := NewSturdycService(Config{})
	if err == nil {
		t.Fatal("expected error for zero config")
	}
	if service != nil {
		t.Error("expected nil service on error")
	}
}

func newTestService(t *testing.T) *SturdycService {
	t.Helper()
	service, err := NewSturdycService(Config{
		Capacity:           100,
		NumShards:          2,
		TTL:                time.Minute,
		EvictionPercentage: 10,
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service
}

type teamRecord struct {
	Key      string
	Nickname string
}

func TestSturdycService_GetOrFetch(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	t.Run("miss then hit", func(t *testing.T) {
		calls := 0
		fetchFn := func(ctx context.Context) (any, error) {
			calls++
			return "Cheesy Poofs", nil
		}

		for range 2 {
			result, err := service.GetOrFetch(ctx, "team_frc254", fetchFn)
			if err != nil {
				t.Fatalf("expected no error but got: %v", err)
			}
			if result != "Cheesy Poofs" {
				t.Errorf("unexpected result %v", result)
			}
		}
		if calls != 1 {
			t.Errorf("expected 1 fetch, got %d", calls)
		}
	})

	t.Run("typed fetch function", func(t *testing.T) {
		fetchFn := func(ctx context.Context) (*teamRecord, error) {
			return &teamRecord{Key: "frc1114", Nickname: "Simbotics"}, nil
		}

		result, err := service.GetOrFetch(ctx, "team_frc1114", fetchFn)
		if err != nil {
			t.Fatalf("expected no error but got: %v", err)
		}
		team, ok := result.(*teamRecord)
		if !ok {
			t.Fatalf("expected *teamRecord, got %T", result)
		}
		if team.Nickname != "Simbotics" {
			t.Errorf("unexpected nickname %q", team.Nickname)
		}
	})

	t.Run("fetch error is not cached", func(t *testing.T) {
		calls := 0
		fetchFn := func(ctx context.Context) (any, error) {
			calls++
			return nil, errors.New("fetch failed")
		}

		for range 2 {
			if _, err := service.GetOrFetch(ctx, "error-key", fetchFn); err == nil {
				t.Error("expected error but got none")
			}
		}
		if calls != 2 {
			t.Errorf("expected 2 fetches, got %d", calls)
		}
	})

	t.Run("invalid fetch functions", func(t *testing.T) {
		invalid := []any{
			nil,
			"not-a-function",
			func() (any, error) { return nil, nil },
			func(s string) (any, error) { return nil, nil },
			func(ctx context.Context) (any, string) { return nil, "" },
		}
		for _, fn := range invalid {
			result, err := service.GetOrFetch(ctx, "invalid-key", fn)
			var configErr *ConfigError
			if !errors.As(err, &configErr) {
				t.Errorf("expected ConfigError for %T, got %v", fn, err)
				continue
			}
			if configErr.Field != "fetchFn" {
				t.Errorf("expected field fetchFn, got %q", configErr.Field)
			}
			if result != nil {
				t.Errorf("expected nil result, got %v", result)
			}
		}
	})
}

func TestSturdycService_Delete(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	calls := 0
	fetchFn := func(ctx context.Context) (any, error) {
		calls++
		return calls, nil
	}

	if _, err := service.GetOrFetch(ctx, "event_2024casj", fetchFn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.Delete(ctx, "event_2024casj"); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if err := service.Delete(ctx, "never-cached"); err != nil {
		t.Errorf("deleting an absent key should not fail: %v", err)
	}

	result, err := service.GetOrFetch(ctx, "event_2024casj", fetchFn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 2 {
		t.Errorf("expected refetched value 2, got %v", result)
	}
}

func TestSturdycService_DeleteMulti(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	keys := []string{"team_frc254", "team_frc1114", "team_list_0"}
	for _, k := range keys {
		if _, err := service.GetOrFetch(ctx, k, func(ctx context.Context) (any, error) {
			return k, nil
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if service.Size() != 3 {
		t.Fatalf("expected 3 entries, got %d", service.Size())
	}

	if err := service.DeleteMulti(ctx, []string{"team_frc254", "team_list_0", "absent"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if service.Size() != 1 {
		t.Errorf("expected 1 entry left, got %d", service.Size())
	}

	if err := service.DeleteMulti(ctx, nil); err != nil {
		t.Errorf("empty delete should succeed: %v", err)
	}
}
