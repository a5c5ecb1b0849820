package taskqueue

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-tba-cache/internal/configerr"
)

// ConfigError is returned by Validate for invalid configuration.
type ConfigError = configerr.ConfigError

// Backend selects the Queue implementation.
type Backend string

const (
	BackendLocal  Backend = "local"
	BackendInProc Backend = "inproc"
	BackendRedis  Backend = "redis"
)

// Config selects and sizes a task queue backend.
type Config struct {
	Backend        Backend
	Workers        int
	QueueSize      int
	RedisKeyPrefix string
	BlockTimeout   time.Duration
	// VisibilityTimeout is how long a Redis worker may hold a claimed task
	// before it is handed to another worker.
	VisibilityTimeout time.Duration
	Retry             RetryPolicy
}

// DefaultConfig returns the configuration used by tests and single-process setups.
func DefaultConfig() Config {
	return Config{
		Backend:           BackendLocal,
		Workers:           4,
		QueueSize:         1000,
		RedisKeyPrefix:    "tba:tasks:",
		BlockTimeout:      time.Second,
		VisibilityTimeout: DefaultVisibilityTimeout,
		Retry:             DefaultRetryPolicy(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Backend,
			validation.Required.Error("cannot be blank"),
			validation.In(BackendLocal, BackendInProc, BackendRedis).Error("must be local, inproc or redis")),
		validation.Field(&c.Workers, configerr.Positive),
		validation.Field(&c.QueueSize, configerr.Positive),
		validation.Field(&c.BlockTimeout, configerr.NonNegative),
		validation.Field(&c.VisibilityTimeout, configerr.NonNegative),
		validation.Field(&c.Retry),
	)
	if err := configerr.From("", err); err != nil {
		return err
	}
	if c.Backend == BackendRedis && c.RedisKeyPrefix == "" {
		return &ConfigError{Field: "RedisKeyPrefix", Message: "cannot be blank"}
	}
	return nil
}

// Validate checks the policy.
func (p RetryPolicy) Validate() error {
	return configerr.From("", validation.ValidateStruct(&p,
		validation.Field(&p.MaxAttempts, configerr.Positive),
		validation.Field(&p.InitialDelay, configerr.NonNegative),
		validation.Field(&p.MaxDelay, configerr.NonNegative),
		validation.Field(&p.Multiplier, configerr.NonNegative),
	))
}

// New builds the configured backend. client is required for BackendRedis. An
// InProc queue is returned unstarted.
func New(cfg Config, client redis.UniversalClient, opts ...Option) (Queue, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts = append([]Option{WithRetryPolicy(cfg.Retry)}, opts...)
	switch cfg.Backend {
	case BackendInProc:
		return NewInProc(cfg.Workers, cfg.QueueSize, opts...), nil
	case BackendRedis:
		if client == nil {
			return nil, &ConfigError{Field: "client", Message: "cannot be nil"}
		}
		opts = append(opts, WithVisibilityTimeout(cfg.VisibilityTimeout))
		return NewRedis(client, cfg.RedisKeyPrefix, cfg.BlockTimeout, opts...), nil
	default:
		return NewLocal(opts...), nil
	}
}
