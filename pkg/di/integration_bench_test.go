package di

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-tba-cache/datastore"
	"github.com/goliatone/go-tba-cache/model"
	"github.com/goliatone/go-tba-cache/pkg/testsupport"
	"github.com/goliatone/go-tba-cache/query"
	"github.com/goliatone/go-tba-cache/taskqueue"
)

func TestConcurrentWritesWithInProcQueue(t *testing.T) {
	config := DefaultConfig()
	config.Tasks.Backend = taskqueue.BackendInProc
	config.Tasks.Workers = 4

	container, err := NewContainer(config)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := container.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	svc := container.CacheService()
	const numTeams = 50
	for i := 1; i <= numTeams; i++ {
		key := query.Team.CacheKey(fmt.Sprintf("frc%d", i))
		if _, err := svc.GetOrFetch(ctx, key, func(context.Context) (string, error) { return "cached", nil }); err != nil {
			t.Fatalf("GetOrFetch() failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, numTeams)
	for i := 1; i <= numTeams; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			team := testsupport.Team(n)
			team.Nickname = testsupport.Ptr(fmt.Sprintf("Team %d", n))
			if _, err := container.Teams().CreateOrUpdateOne(ctx, team); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent write failed: %v", err)
	}

	container.Queue().(*taskqueue.InProc).Wait()
	if err := container.Stop(time.Second); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	for i := 1; i <= numTeams; i++ {
		key := query.Team.CacheKey(fmt.Sprintf("frc%d", i))
		var refetched bool
		_, _ = svc.GetOrFetch(ctx, key, func(context.Context) (string, error) {
			refetched = true
			return "fresh", nil
		})
		if !refetched {
			t.Errorf("expected %s to be invalidated", key)
		}
	}
}

func BenchmarkCreateOrUpdateBatch(b *testing.B) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		b.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	local := container.Queue().(*taskqueue.Local)
	ctx := context.Background()

	batch := make([]*model.Team, 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := range batch {
			batch[j] = testsupport.Team(j + 1)
			batch[j].City = testsupport.Ptr(fmt.Sprintf("city-%d", i))
		}
		if _, err := container.Teams().CreateOrUpdate(ctx, batch); err != nil {
			b.Fatalf("CreateOrUpdate() failed: %v", err)
		}
		local.Reset()
	}
}

func BenchmarkDistrictFanOut(b *testing.B) {
	store := datastore.NewMemoryStore()
	testsupport.LoadSeason(b, store, "../testsupport/testdata/season.json")
	container, err := NewContainerWithDefaults(WithStore(store))
	if err != nil {
		b.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	refs := model.NewRefs()
	refs.Add("key", "2024ne")
	refs.AddInts("year", 2024)
	refs.Add("abbreviation", "ne")
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := container.Districts().CacheKeysAndQueries(ctx, refs); err != nil {
			b.Fatalf("CacheKeysAndQueries() failed: %v", err)
		}
	}
}
