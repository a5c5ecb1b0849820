package taskqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisQueue(t *testing.T, opts ...Option) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "test:", 50*time.Millisecond, opts...), mr
}

func TestRedisDeferAndProcess(t *testing.T) {
	ctx := context.Background()
	q, mr := newRedisQueue(t)

	var got string
	q.Register("echo", func(_ context.Context, task Task) error {
		return task.Decode(&got)
	})

	require.NoError(t, q.Defer(ctx, mustTask(t, "echo", "hello", OnQueue("cache-clearing"))))
	assert.True(t, mr.Exists("test:queue:cache-clearing"))

	n, err := q.Len(ctx, "cache-clearing")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, err := q.ProcessOne(ctx, "cache-clearing")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", got)

	ok, err = q.ProcessOne(ctx, "cache-clearing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRetryGoesThroughDelayedSet(t *testing.T) {
	ctx := context.Background()
	q, _ := newRedisQueue(t, WithRetryPolicy(RetryPolicy{MaxAttempts: 3, InitialDelay: time.Second, Multiplier: 2}))
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return now }

	var attempts []int
	q.Register("flaky", func(_ context.Context, task Task) error {
		attempts = append(attempts, task.Attempt)
		if task.Attempt == 0 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, q.Defer(ctx, mustTask(t, "flaky", nil)))
	_, err := q.ProcessOne(ctx, DefaultQueue)
	require.Error(t, err)

	n, err := q.Len(ctx, DefaultQueue)
	require.NoError(t, err)
	assert.Zero(t, n)

	moved, err := q.PromoteDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, moved, "backoff has not elapsed")

	now = now.Add(2 * time.Second)
	moved, err = q.PromoteDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	ok, err := q.ProcessOne(ctx, DefaultQueue)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int{0, 1}, attempts)
}

func TestRedisDeadLetter(t *testing.T) {
	ctx := context.Background()
	q, _ := newRedisQueue(t, WithRetryPolicy(RetryPolicy{MaxAttempts: 1}))

	boom := errors.New("permanent")
	q.Register("broken", func(context.Context, Task) error { return boom })

	task := mustTask(t, "broken", "payload", OnQueue("post-update-hooks"))
	require.NoError(t, q.Defer(ctx, task))
	_, err := q.ProcessOne(ctx, "post-update-hooks")
	assert.ErrorIs(t, err, boom)

	dead, err := q.Dead(ctx, "post-update-hooks")
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, task.ID, dead[0].ID)
}

func TestRedisConsumeUntilCancelled(t *testing.T) {
	q, _ := newRedisQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan string, 2)
	q.Register("note", func(_ context.Context, task Task) error {
		var s string
		if err := task.Decode(&s); err != nil {
			return err
		}
		done <- s
		return nil
	})

	require.NoError(t, q.Defer(ctx, mustTask(t, "note", "a", OnQueue("one"))))
	require.NoError(t, q.Defer(ctx, mustTask(t, "note", "b", OnQueue("two"))))

	errc := make(chan error, 1)
	go func() { errc <- q.Consume(ctx, "one", "two") }()

	got := map[string]bool{}
	for len(got) < 2 {
		select {
		case s := <-done:
			got[s] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for tasks")
		}
	}
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Consume did not return after cancel")
	}
}

func TestRedisReleasesTaskWhenWorkerStops(t *testing.T) {
	q, mr := newRedisQueue(t)
	ctx, cancel := context.WithCancel(context.Background())

	var attempts []int
	q.Register("slow", func(ctx context.Context, task Task) error {
		attempts = append(attempts, task.Attempt)
		if len(attempts) == 1 {
			cancel()
			return ctx.Err()
		}
		return nil
	})

	task := mustTask(t, "slow", "team_frc254", OnQueue("cache-clearing"))
	require.NoError(t, q.Defer(context.Background(), task))

	ok, err := q.ProcessOne(ctx, "cache-clearing")
	assert.True(t, ok)
	assert.ErrorIs(t, err, context.Canceled)

	bg := context.Background()
	n, err := q.Len(bg, "cache-clearing")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "task is back on its queue")
	claimed, err := q.Claimed(bg, "cache-clearing")
	require.NoError(t, err)
	assert.Zero(t, claimed)
	assert.False(t, mr.Exists("test:delayed"))
	assert.False(t, mr.Exists("test:dead:cache-clearing"))
	assert.False(t, mr.Exists("test:claims"))

	ok, err = q.ProcessOne(bg, "cache-clearing")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int{0, 0}, attempts, "a released task keeps its attempt count")
}

func TestRedisSettlesSuccessAfterCancel(t *testing.T) {
	q, _ := newRedisQueue(t)
	ctx, cancel := context.WithCancel(context.Background())

	q.Register("ok", func(context.Context, Task) error {
		cancel()
		return nil
	})
	require.NoError(t, q.Defer(context.Background(), mustTask(t, "ok", nil)))

	ok, err := q.ProcessOne(ctx, DefaultQueue)
	require.NoError(t, err)
	assert.True(t, ok)

	bg := context.Background()
	n, err := q.Len(bg, DefaultQueue)
	require.NoError(t, err)
	assert.Zero(t, n)
	claimed, err := q.Claimed(bg, DefaultQueue)
	require.NoError(t, err)
	assert.Zero(t, claimed)
}

func TestRedisRequeuesStaleClaims(t *testing.T) {
	ctx := context.Background()
	q, mr := newRedisQueue(t, WithVisibilityTimeout(time.Minute))
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return now }

	var ran []string
	q.Register("note", func(_ context.Context, task Task) error {
		var s string
		if err := task.Decode(&s); err != nil {
			return err
		}
		ran = append(ran, s)
		return nil
	})

	require.NoError(t, q.Defer(ctx, mustTask(t, "note", "crashed")))
	// A worker that claims and then dies leaves the task in processing.
	_, err := q.claim(ctx, DefaultQueue, 0)
	require.NoError(t, err)

	moved, err := q.PromoteDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, moved, "visibility timeout has not elapsed")

	// An entry without a claim time, as left by a worker that died before stamping.
	now = now.Add(30 * time.Second)
	orphan, err := Marshal(mustTask(t, "note", "unstamped"))
	require.NoError(t, err)
	_, err = mr.RPush("test:processing:"+DefaultQueue, string(orphan))
	require.NoError(t, err)

	moved, err = q.PromoteDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, moved, "unstamped entry is stamped first")

	now = now.Add(31 * time.Second)
	moved, err = q.PromoteDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, moved, "only the first claim has expired")

	now = now.Add(30 * time.Second)
	moved, err = q.PromoteDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	claimed, err := q.Claimed(ctx, DefaultQueue)
	require.NoError(t, err)
	assert.Zero(t, claimed)
	assert.False(t, mr.Exists("test:claims"))

	for {
		ok, err := q.ProcessOne(ctx, DefaultQueue)
		require.NoError(t, err)
		if !ok {
			break
		}
	}
	assert.Equal(t, []string{"crashed", "unstamped"}, ran)
}

func TestRedisDeadLettersUndecodableTask(t *testing.T) {
	ctx := context.Background()
	q, mr := newRedisQueue(t)

	_, err := mr.RPush("test:queue:"+DefaultQueue, "not msgpack")
	require.NoError(t, err)

	ok, err := q.ProcessOne(ctx, DefaultQueue)
	assert.True(t, ok)
	assert.Error(t, err)

	list, err := mr.List("test:dead:" + DefaultQueue)
	require.NoError(t, err)
	assert.Equal(t, []string{"not msgpack"}, list)

	dead, err := q.Dead(ctx, DefaultQueue)
	require.NoError(t, err)
	assert.Empty(t, dead)

	claimed, err := q.Claimed(ctx, DefaultQueue)
	require.NoError(t, err)
	assert.Zero(t, claimed)
}
