package di

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-tba-cache/datastore"
	"github.com/goliatone/go-tba-cache/manipulator"
	"github.com/goliatone/go-tba-cache/model"
	"github.com/goliatone/go-tba-cache/pkg/testsupport"
	"github.com/goliatone/go-tba-cache/query"
	"github.com/goliatone/go-tba-cache/taskqueue"
)

func newSeasonContainer(t *testing.T) (*Container, *taskqueue.Local) {
	t.Helper()

	store := datastore.NewMemoryStore()
	testsupport.LoadSeason(t, store, "../testsupport/testdata/season.json")

	container, err := NewContainerWithDefaults(WithStore(store))
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	local, ok := container.Queue().(*taskqueue.Local)
	if !ok {
		t.Fatalf("expected local queue, got %T", container.Queue())
	}
	return container, local
}

// cachedTeam reads a team through the same cache keys the resolvers invalidate.
func cachedTeam(ctx context.Context, c *Container, key string, fetches *int32) (*model.Team, error) {
	teams := datastore.NewCollection(c.Store(), model.TeamSchema)
	return query.Fetch[*model.Team](ctx, c.Caches(), query.Team, []any{key}, func(ctx context.Context) (*model.Team, error) {
		atomic.AddInt32(fetches, 1)
		return teams.Get(ctx, key)
	})
}

func TestEndToEndWriteInvalidatesReadThroughCache(t *testing.T) {
	ctx := context.Background()
	container, local := newSeasonContainer(t)

	var fetches int32
	team, err := cachedTeam(ctx, container, "frc1124", &fetches)
	if err != nil {
		t.Fatalf("cachedTeam() failed: %v", err)
	}
	if *team.Nickname != "UberBots" {
		t.Fatalf("unexpected nickname %q", *team.Nickname)
	}
	if _, err := cachedTeam(ctx, container, "frc1124", &fetches); err != nil {
		t.Fatalf("cachedTeam() failed: %v", err)
	}
	if fetches != 1 {
		t.Fatalf("expected the second read to hit the cache, got %d fetches", fetches)
	}

	update := &model.Team{Key: "frc1124", TeamNumber: 1124, Nickname: testsupport.Ptr("Uber")}
	if _, err := container.Teams().CreateOrUpdateOne(ctx, update); err != nil {
		t.Fatalf("CreateOrUpdateOne() failed: %v", err)
	}

	// Still cached until the deferred task runs.
	if _, err := cachedTeam(ctx, container, "frc1124", &fetches); err != nil {
		t.Fatalf("cachedTeam() failed: %v", err)
	}
	if fetches != 1 {
		t.Errorf("expected cache to be untouched before the task ran, got %d fetches", fetches)
	}

	if err := local.Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	team, err = cachedTeam(ctx, container, "frc1124", &fetches)
	if err != nil {
		t.Fatalf("cachedTeam() failed: %v", err)
	}
	if fetches != 2 {
		t.Errorf("expected a refetch after invalidation, got %d fetches", fetches)
	}
	if *team.Nickname != "Uber" {
		t.Errorf("expected refreshed nickname, got %q", *team.Nickname)
	}
	if team.RookieYear == nil || *team.RookieYear != 2003 {
		t.Errorf("expected rookie year to survive the merge, got %v", team.RookieYear)
	}
}

func TestEndToEndIntPropScenario(t *testing.T) {
	ctx := context.Background()
	container, local := newSeasonContainer(t)
	teams := datastore.NewCollection(container.Store(), model.TeamSchema)

	write := func(rookie *int) {
		t.Helper()
		if _, err := container.Teams().CreateOrUpdateOne(ctx, &model.Team{Key: "frc9000", TeamNumber: 9000, RookieYear: rookie}); err != nil {
			t.Fatalf("CreateOrUpdateOne() failed: %v", err)
		}
	}
	stored := func() int {
		t.Helper()
		team, err := teams.Get(ctx, "frc9000")
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		return *team.RookieYear
	}
	clearTasks := func() []taskqueue.Task {
		return local.Tasks(manipulator.CacheClearingQueue)
	}

	write(testsupport.Ptr(42))
	if got := stored(); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if n := len(clearTasks()); n != 1 {
		t.Fatalf("expected 1 invalidation task, got %d", n)
	}

	write(nil)
	if got := stored(); got != 42 {
		t.Errorf("expected nil to keep 42, got %d", got)
	}
	if n := len(clearTasks()); n != 1 {
		t.Errorf("expected no task for a no-op write, got %d", n)
	}

	write(testsupport.Ptr(1337))
	if got := stored(); got != 1337 {
		t.Errorf("expected 1337, got %d", got)
	}
	if n := len(clearTasks()); n != 2 {
		t.Errorf("expected exactly one new invalidation task, got %d", n)
	}

	if err := local.Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
}

func TestDistrictWriteInvalidatesEventQueries(t *testing.T) {
	ctx := context.Background()
	container, local := newSeasonContainer(t)

	svc := container.CacheService()
	keys := []string{
		query.District.CacheKey("2024ne"),
		query.DistrictsInYear.CacheKey(2024),
		query.Event.CacheKey("2024ctwat"),
		query.Event.CacheKey("2024mabos"),
		query.EventList.CacheKey(2024),
		query.TeamDistricts.CacheKey("frc1124"),
		query.TeamEvents.CacheKey("frc1124"),
	}
	for _, key := range keys {
		if _, err := svc.GetOrFetch(ctx, key, func(context.Context) (string, error) { return "cached", nil }); err != nil {
			t.Fatalf("GetOrFetch(%s) failed: %v", key, err)
		}
	}

	district := testsupport.District(2024, "ne")
	district.DisplayName = testsupport.Ptr("NE FIRST")
	if _, err := container.Districts().CreateOrUpdateOne(ctx, district); err != nil {
		t.Fatalf("CreateOrUpdateOne() failed: %v", err)
	}
	if err := local.Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	for _, key := range keys {
		var refetched bool
		if _, err := svc.GetOrFetch(ctx, key, func(context.Context) (string, error) {
			refetched = true
			return "fresh", nil
		}); err != nil {
			t.Fatalf("GetOrFetch(%s) failed: %v", key, err)
		}
		if !refetched {
			t.Errorf("expected %s to be invalidated", key)
		}
	}
}

func TestPostUpdateHooksRunFromDeferredTask(t *testing.T) {
	ctx := context.Background()
	container, local := newSeasonContainer(t)

	var got []manipulator.UpdatedEntity[*model.Match]
	container.Matches().RegisterPostUpdateHook(func(_ context.Context, updated []manipulator.UpdatedEntity[*model.Match]) error {
		got = append(got, updated...)
		return nil
	})

	match := testsupport.Match("2024necmp", 1, "frc1", "frc2")
	if _, err := container.Matches().CreateOrUpdateOne(ctx, match); err != nil {
		t.Fatalf("CreateOrUpdateOne() failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatal("hooks must not run on the write path")
	}
	if err := local.Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 hooked entity, got %d", len(got))
	}
	if !got[0].IsNew || got[0].Entity.Key != match.Key {
		t.Errorf("unexpected hook payload %+v", got[0])
	}
}

func TestDeleteKeysSkipsMissing(t *testing.T) {
	ctx := context.Background()
	container, local := newSeasonContainer(t)

	if err := container.EventTeams().DeleteKeys(ctx, []string{"2024necmp_frc1", "2024necmp_frc9999"}); err != nil {
		t.Fatalf("DeleteKeys() failed: %v", err)
	}
	tasks := local.Tasks(manipulator.CacheClearingQueue)
	if len(tasks) != 1 {
		t.Fatalf("expected 1 invalidation task, got %d", len(tasks))
	}

	_, err := datastore.NewCollection(container.Store(), model.EventTeamSchema).Get(ctx, "2024necmp_frc1")
	if !errors.Is(err, datastore.ErrNotFound) {
		t.Errorf("expected the event team to be gone, got %v", err)
	}

	if err := container.EventTeams().DeleteKeys(ctx, []string{"2024necmp_frc9999"}); err != nil {
		t.Fatalf("DeleteKeys() failed: %v", err)
	}
	if n := len(local.Tasks(manipulator.CacheClearingQueue)); n != 1 {
		t.Errorf("expected no task for missing keys, got %d", n)
	}
	if err := local.Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
}
