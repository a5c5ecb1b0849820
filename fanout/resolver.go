package fanout

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-tba-cache/datastore"
	"github.com/goliatone/go-tba-cache/model"
	"github.com/goliatone/go-tba-cache/query"
)

// Lookup is the read surface resolvers use for indirect dependents.
// datastore.Store satisfies it.
type Lookup interface {
	GetMulti(ctx context.Context, kind model.Kind, keys []string) ([]*datastore.Document, error)
	QueryKeys(ctx context.Context, kind model.Kind, field string, values []string) ([]string, error)
}

// Resolver computes the invalidations for one kind's affected references.
type Resolver interface {
	CacheKeysAndQueries(ctx context.Context, refs model.Refs) ([]query.Invalidation, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, refs model.Refs) ([]query.Invalidation, error)

func (f ResolverFunc) CacheKeysAndQueries(ctx context.Context, refs model.Refs) ([]query.Invalidation, error) {
	return f(ctx, refs)
}

// UpdatedFunc is the shape of every per-kind resolver in this package.
type UpdatedFunc func(ctx context.Context, lookup Lookup, refs model.Refs) ([]query.Invalidation, error)

var handlers = map[model.Kind]UpdatedFunc{
	model.KindAward:        AwardUpdated,
	model.KindEvent:        EventUpdated,
	model.KindEventDetails: EventDetailsUpdated,
	model.KindMatch:        MatchUpdated,
	model.KindMedia:        MediaUpdated,
	model.KindRobot:        RobotUpdated,
	model.KindTeam:         TeamUpdated,
	model.KindEventTeam:    EventTeamUpdated,
	model.KindDistrictTeam: DistrictTeamUpdated,
	model.KindDistrict:     DistrictUpdated,
	model.KindInsight:      InsightUpdated,
}

// Resolvers binds the per-kind handlers to a Lookup.
type Resolvers struct {
	lookup Lookup
}

// NewResolvers creates resolvers reading secondary data from lookup.
func NewResolvers(lookup Lookup) *Resolvers {
	return &Resolvers{lookup: lookup}
}

// For returns the resolver of kind, or false if the kind has none.
func (r *Resolvers) For(kind model.Kind) (Resolver, bool) {
	fn, ok := handlers[kind]
	if !ok {
		return nil, false
	}
	return ResolverFunc(func(ctx context.Context, refs model.Refs) ([]query.Invalidation, error) {
		return fn(ctx, r.lookup, refs)
	}), true
}

// MustFor is For that panics on a kind without a resolver.
func (r *Resolvers) MustFor(kind model.Kind) Resolver {
	res, ok := r.For(kind)
	if !ok {
		panic(fmt.Sprintf("fanout: no resolver for kind %s", kind))
	}
	return res
}

func lookupFailed(err error, kind model.Kind, field string) error {
	return goerrors.WrapRetryable(err, goerrors.CategoryExternal,
		fmt.Sprintf("fanout: lookup %s by %s", kind, field))
}

// queryKeys runs a key lookup, skipping the read when there is nothing to match.
func queryKeys(ctx context.Context, lookup Lookup, kind model.Kind, field string, values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	keys, err := lookup.QueryKeys(ctx, kind, field, values)
	if err != nil {
		return nil, lookupFailed(err, kind, field)
	}
	return keys, nil
}
