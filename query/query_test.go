package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-tba-cache/cache"
	"github.com/goliatone/go-tba-cache/pkg/testsupport"
)

func TestCacheKeyFormat(t *testing.T) {
	assert.Equal(t, "team_year_awards_frc254_2024:5:3", TeamYearAwards.CacheKey("frc254", 2024))
	assert.Equal(t, "event_awards_2024casj:6:3", EventAwards.CacheKey("2024casj"))
	assert.Equal(t, "team_list_year_2024_0:3:3", TeamListYear.CacheKey(2024, 0))
	assert.Equal(t, "event_none:7:3", Event.CacheKey(nil))
}

func TestCacheKeyPanicsOnArity(t *testing.T) {
	assert.Panics(t, func() { Team.CacheKey() })
	assert.Panics(t, func() { TeamYearAwards.CacheKey("frc254") })
}

func TestAllTypesAreDistinct(t *testing.T) {
	names := map[string]struct{}{}
	for _, q := range All() {
		_, dup := names[q.Name]
		assert.False(t, dup, "duplicate query name %s", q.Name)
		names[q.Name] = struct{}{}
		assert.Positive(t, q.Version, q.Name)
		assert.NotEmpty(t, q.Params, q.Name)
		assert.Equal(t, cache.DefaultNamespace, q.CacheNamespace())
	}
}

func TestGroupDeduplicates(t *testing.T) {
	invs := []Invalidation{
		Team.Invalidate("frc2"),
		Team.Invalidate("frc1"),
		Team.Invalidate("frc2"),
		EventList.Invalidate(2024),
	}

	grouped := Group(invs)
	require.Len(t, grouped, 2)
	assert.Equal(t, []string{Team.CacheKey("frc1"), Team.CacheKey("frc2")}, grouped[Team])
	assert.Equal(t, []string{EventList.CacheKey(2024)}, grouped[EventList])

	assert.Len(t, Keys(invs), 3)
	assert.Empty(t, Group(nil))
}

func TestCustomNamespace(t *testing.T) {
	q := &Type{Name: "api_status", Params: []string{"scope"}, Version: 1, Namespace: "status"}
	assert.Equal(t, "status", q.CacheNamespace())
	assert.Equal(t, "api_status", q.String())
}

func TestFetchReadsThroughNamespace(t *testing.T) {
	ctx := context.Background()
	svc := testsupport.NewRecordingCache()
	caches := cache.NewRegistry(nil)
	caches.Register(cache.DefaultNamespace, svc)

	fetch := func(context.Context) (string, error) { return "The Cheesy Poofs", nil }
	got, err := Fetch[string](ctx, caches, Team, []any{"frc254"}, fetch)
	require.NoError(t, err)
	assert.Equal(t, "The Cheesy Poofs", got)

	got, err = Fetch[string](ctx, caches, Team, []any{"frc254"}, fetch)
	require.NoError(t, err)
	assert.Equal(t, "The Cheesy Poofs", got)
	assert.Equal(t, 1, svc.Fetches())
	assert.True(t, svc.Has(Team.CacheKey("frc254")))
}

func TestFetchUnknownNamespace(t *testing.T) {
	q := &Type{Name: "api_status", Params: []string{"scope"}, Version: 1, Namespace: "status"}
	_, err := Fetch[int](context.Background(), cache.NewRegistry(nil), q, []any{"all"},
		func(context.Context) (int, error) { return 1, nil })
	assert.Error(t, err)
}

func TestFetchPropagatesFetchError(t *testing.T) {
	caches := cache.NewRegistry(testsupport.NewRecordingCache())
	boom := errors.New("boom")
	_, err := Fetch[string](context.Background(), caches, Team, []any{"frc1"},
		func(context.Context) (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}
