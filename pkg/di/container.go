package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-tba-cache/cache"
	"github.com/goliatone/go-tba-cache/datastore"
	"github.com/goliatone/go-tba-cache/fanout"
	"github.com/goliatone/go-tba-cache/internal/configerr"
	"github.com/goliatone/go-tba-cache/manipulator"
	"github.com/goliatone/go-tba-cache/model"
	"github.com/goliatone/go-tba-cache/taskqueue"
)

// Config groups the configuration of every component the container builds.
type Config struct {
	Cache cache.Config
	Tasks taskqueue.Config
}

// DefaultConfig returns an in-process cache with a recording task queue.
func DefaultConfig() Config {
	return Config{Cache: cache.DefaultConfig(), Tasks: taskqueue.DefaultConfig()}
}

// Validate checks both sections, reporting the first failure with its section
// as a field prefix.
func (c Config) Validate() error {
	if err := prefixed("Cache.", c.Cache.Validate()); err != nil {
		return err
	}
	return prefixed("Tasks.", c.Tasks.Validate())
}

func prefixed(prefix string, err error) error {
	if ce, ok := err.(*configerr.ConfigError); ok {
		return &configerr.ConfigError{Field: prefix + ce.Field, Message: ce.Message}
	}
	return err
}

// Option customises the collaborators NewContainer uses.
type Option func(*Container)

// WithStore replaces the default in-memory document store.
func WithStore(store datastore.Store) Option {
	return func(c *Container) { c.store = store }
}

// WithRedis provides the client used by redis cache and task backends.
func WithRedis(client redis.UniversalClient) Option {
	return func(c *Container) { c.redis = client }
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics registers task queue counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Container) { c.metrics = reg }
}

// Container wires configuration, cache, storage, task queue and one manipulator
// per writable kind. Manipulators register their task handlers on the shared
// queue, so a worker process building the same container can execute tasks
// deferred by any other process.
type Container struct {
	config        Config
	logger        *slog.Logger
	redis         redis.UniversalClient
	metrics       prometheus.Registerer
	store         datastore.Store
	cacheService  cache.CacheService
	caches        *cache.Registry
	keySerializer cache.KeySerializer
	queue         taskqueue.Queue
	resolvers     *fanout.Resolvers

	teams         *manipulator.Manipulator[*model.Team]
	robots        *manipulator.Manipulator[*model.Robot]
	events        *manipulator.Manipulator[*model.Event]
	eventDetails  *manipulator.Manipulator[*model.EventDetails]
	eventTeams    *manipulator.Manipulator[*model.EventTeam]
	matches       *manipulator.Manipulator[*model.Match]
	awards        *manipulator.Manipulator[*model.Award]
	medias        *manipulator.Manipulator[*model.Media]
	districts     *manipulator.Manipulator[*model.District]
	districtTeams *manipulator.Manipulator[*model.DistrictTeam]
	insights      *manipulator.Manipulator[*model.Insight]
}

// NewContainer builds every component from config.
func NewContainer(config Config, opts ...Option) (*Container, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Container{config: config, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = datastore.NewMemoryStore()
	}

	cacheService, err := cache.NewCacheService(config.Cache, c.redis)
	if err != nil {
		return nil, err
	}
	c.cacheService = cacheService
	c.caches = cache.NewRegistry(cacheService)
	c.caches.Register(cache.DefaultNamespace, cacheService)
	c.keySerializer = cache.NewDefaultKeySerializer()

	queueOpts := []taskqueue.Option{taskqueue.WithLogger(c.logger)}
	if c.metrics != nil {
		queueOpts = append(queueOpts, taskqueue.WithMetrics(taskqueue.NewMetrics(c.metrics)))
	}
	c.queue, err = taskqueue.New(config.Tasks, c.redis, queueOpts...)
	if err != nil {
		return nil, err
	}
	c.resolvers = fanout.NewResolvers(c.store)

	c.teams = NewManipulator(c, model.TeamSchema)
	c.robots = NewManipulator(c, model.RobotSchema)
	c.events = NewManipulator(c, model.EventSchema)
	c.eventDetails = NewManipulator(c, model.EventDetailsSchema)
	c.eventTeams = NewManipulator(c, model.EventTeamSchema)
	c.matches = NewManipulator(c, model.MatchSchema)
	c.awards = NewManipulator(c, model.AwardSchema)
	c.medias = NewManipulator(c, model.MediaSchema)
	c.districts = NewManipulator(c, model.DistrictSchema)
	c.districtTeams = NewManipulator(c, model.DistrictTeamSchema)
	c.insights = NewManipulator(c, model.InsightSchema)
	return c, nil
}

// NewContainerWithDefaults builds a container from DefaultConfig.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(DefaultConfig(), opts...)
}

// NewManipulator wires a manipulator for schema to the container's store, queue,
// caches and resolvers. Go methods cannot take type parameters, so this is a
// package-level function.
func NewManipulator[E model.Entity](c *Container, schema model.Schema[E], opts ...manipulator.Option[E]) *manipulator.Manipulator[E] {
	base := []manipulator.Option[E]{
		manipulator.WithLogger[E](c.logger),
		manipulator.WithCaches[E](c.caches),
	}
	return manipulator.New(schema, c.resolvers.MustFor(schema.Kind), c.queue, c.store, append(base, opts...)...)
}

// Start launches in-process workers when the queue runs them.
func (c *Container) Start(ctx context.Context) error {
	if p, ok := c.queue.(*taskqueue.InProc); ok {
		return p.Start(ctx)
	}
	return nil
}

// Stop drains in-process workers.
func (c *Container) Stop(timeout time.Duration) error {
	if p, ok := c.queue.(*taskqueue.InProc); ok {
		return p.Stop(timeout)
	}
	return nil
}

// Config returns the configuration the container was built from.
func (c *Container) Config() Config { return c.config }

// Logger returns the logger shared by the components.
func (c *Container) Logger() *slog.Logger { return c.logger }

// Store returns the document store.
func (c *Container) Store() datastore.Store { return c.store }

// CacheService returns the cached query result store.
func (c *Container) CacheService() cache.CacheService { return c.cacheService }

// Caches returns the namespace registry invalidations are applied to.
func (c *Container) Caches() *cache.Registry { return c.caches }

// KeySerializer returns the key serializer shared with query keys.
func (c *Container) KeySerializer() cache.KeySerializer { return c.keySerializer }

// Queue returns the task queue.
func (c *Container) Queue() taskqueue.Queue { return c.queue }

// Resolvers returns the fan-out resolvers bound to the store.
func (c *Container) Resolvers() *fanout.Resolvers { return c.resolvers }

func (c *Container) Teams() *manipulator.Manipulator[*model.Team]    { return c.teams }
func (c *Container) Robots() *manipulator.Manipulator[*model.Robot]  { return c.robots }
func (c *Container) Events() *manipulator.Manipulator[*model.Event]  { return c.events }
func (c *Container) Matches() *manipulator.Manipulator[*model.Match] { return c.matches }
func (c *Container) Awards() *manipulator.Manipulator[*model.Award]  { return c.awards }
func (c *Container) Medias() *manipulator.Manipulator[*model.Media]  { return c.medias }
func (c *Container) Insights() *manipulator.Manipulator[*model.Insight] {
	return c.insights
}
func (c *Container) EventDetails() *manipulator.Manipulator[*model.EventDetails] {
	return c.eventDetails
}
func (c *Container) EventTeams() *manipulator.Manipulator[*model.EventTeam] {
	return c.eventTeams
}
func (c *Container) Districts() *manipulator.Manipulator[*model.District] {
	return c.districts
}
func (c *Container) DistrictTeams() *manipulator.Manipulator[*model.DistrictTeam] {
	return c.districtTeams
}
