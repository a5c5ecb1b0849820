package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const promoteBatch = 100

// moveIfRemoved pushes ARGV[1] onto KEYS[2] only if it was still present in
// KEYS[1]. KEYS[1] is a sorted set when ARGV[2] is "zset", a list otherwise.
// KEYS[3] is the claims hash, cleared for the member.
var moveIfRemoved = redis.NewScript(`
local removed
if ARGV[2] == "zset" then
	removed = redis.call("ZREM", KEYS[1], ARGV[1])
else
	removed = redis.call("LREM", KEYS[1], 1, ARGV[1])
end
if removed == 0 then
	return 0
end
redis.call("RPUSH", KEYS[2], ARGV[1])
redis.call("HDEL", KEYS[3], ARGV[1])
return 1
`)

// Redis stores queued tasks in Redis lists so separate worker processes can
// consume them.
//
// A worker claims a task by moving it atomically into the queue's processing
// list and removes it from there only once the outcome is recorded: success,
// a retry in the delayed sorted set, a dead-letter entry, or a release back
// onto the queue when the worker is shutting down. Tasks left in a processing
// list by a crashed worker are requeued by PromoteDue after the visibility
// timeout.
type Redis struct {
	client       redis.UniversalClient
	registry     *Registry
	opts         options
	prefix       string
	blockTimeout time.Duration
	now          func() time.Time
}

var _ Queue = (*Redis)(nil)

// NewRedis creates a queue over client. Keys are prefixed with prefix.
func NewRedis(client redis.UniversalClient, prefix string, blockTimeout time.Duration, opts ...Option) *Redis {
	if blockTimeout <= 0 {
		blockTimeout = time.Second
	}
	return &Redis{
		client:       client,
		registry:     NewRegistry(),
		opts:         applyOptions(opts),
		prefix:       prefix,
		blockTimeout: blockTimeout,
		now:          time.Now,
	}
}

// Register binds name to h.
func (r *Redis) Register(name string, h Handler) {
	r.registry.Register(name, h)
}

func (r *Redis) listKey(queue string) string       { return r.prefix + "queue:" + queue }
func (r *Redis) processingKey(queue string) string { return r.prefix + "processing:" + queue }
func (r *Redis) deadKey(queue string) string       { return r.prefix + "dead:" + queue }
func (r *Redis) delayedKey() string                { return r.prefix + "delayed" }
func (r *Redis) claimsKey() string                 { return r.prefix + "claims" }
func (r *Redis) queuesKey() string                 { return r.prefix + "queues" }

// Defer appends task to its queue list.
func (r *Redis) Defer(ctx context.Context, task Task) error {
	if task.Queue == "" {
		task.Queue = DefaultQueue
	}
	raw, err := Marshal(task)
	if err != nil {
		return fmt.Errorf("taskqueue: encode task %s: %w", task.Name, err)
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SAdd(ctx, r.queuesKey(), task.Queue)
		p.RPush(ctx, r.listKey(task.Queue), raw)
		return nil
	})
	if err != nil {
		return fmt.Errorf("taskqueue: push %s: %w", task.Queue, err)
	}
	r.opts.metrics.enqueued(task)
	return nil
}

// Len returns the number of tasks waiting on queue.
func (r *Redis) Len(ctx context.Context, queue string) (int64, error) {
	return r.client.LLen(ctx, r.listKey(queue)).Result()
}

// Claimed returns the number of tasks of queue held by workers.
func (r *Redis) Claimed(ctx context.Context, queue string) (int64, error) {
	return r.client.LLen(ctx, r.processingKey(queue)).Result()
}

// Dead returns the decodable tasks in queue's dead-letter list.
func (r *Redis) Dead(ctx context.Context, queue string) ([]Task, error) {
	raws, err := r.client.LRange(ctx, r.deadKey(queue), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Task, 0, len(raws))
	for _, raw := range raws {
		var t Task
		if err := Unmarshal([]byte(raw), &t); err != nil {
			r.opts.logger.Warn("skipping undecodable dead task", "queue", queue, "error", err)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Consume processes tasks from queues until ctx is cancelled. Queues are
// polled in rotation; when all are empty it blocks on one of them for up to
// the block timeout.
func (r *Redis) Consume(ctx context.Context, queues ...string) error {
	if len(queues) == 0 {
		queues = []string{DefaultQueue}
	}
	var lastSweep time.Time
	for turn := 0; ; turn++ {
		if ctx.Err() != nil {
			return nil
		}
		if now := r.now(); now.Sub(lastSweep) >= r.blockTimeout {
			lastSweep = now
			if _, err := r.PromoteDue(ctx); err != nil && ctx.Err() == nil {
				r.opts.logger.Warn("promote delayed tasks failed", "error", err)
			}
		}

		claimed := false
		for i := range queues {
			queue := queues[(turn+i)%len(queues)]
			raw, err := r.claim(ctx, queue, 0)
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("taskqueue: claim %s: %w", queue, err)
			}
			claimed = true
			r.process(ctx, queue, raw)
		}
		if claimed {
			continue
		}

		queue := queues[turn%len(queues)]
		raw, err := r.claim(ctx, queue, r.blockTimeout)
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("taskqueue: claim %s: %w", queue, err)
		}
		r.process(ctx, queue, raw)
	}
}

// ProcessOne claims and runs a single task from queue. It reports false when
// the queue was empty.
func (r *Redis) ProcessOne(ctx context.Context, queue string) (bool, error) {
	raw, err := r.claim(ctx, queue, 0)
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, r.process(ctx, queue, raw)
}

// PromoteDue moves retries whose backoff has elapsed, and claimed tasks whose
// visibility timeout has elapsed, back onto their queues. It returns how many
// tasks were moved.
func (r *Redis) PromoteDue(ctx context.Context) (int, error) {
	due, err := r.client.ZRangeByScore(ctx, r.delayedKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(r.now().UnixMilli(), 10),
		Count: promoteBatch,
	}).Result()
	if err != nil {
		return 0, err
	}
	moved := 0
	for _, member := range due {
		var t Task
		if err := Unmarshal([]byte(member), &t); err != nil {
			r.opts.logger.Error("dropping undecodable delayed task", "error", err)
			r.client.ZRem(ctx, r.delayedKey(), member)
			continue
		}
		keys := []string{r.delayedKey(), r.listKey(t.Queue), r.claimsKey()}
		n, err := moveIfRemoved.Run(ctx, r.client, keys, member, "zset").Int()
		if err != nil {
			return moved, err
		}
		moved += n
	}

	stale, err := r.requeueStale(ctx)
	return moved + stale, err
}

// requeueStale returns tasks claimed longer than the visibility timeout ago to
// their queues. Entries with no claim time, left by a worker that stopped
// between claiming and stamping, are stamped now and requeued on a later pass.
func (r *Redis) requeueStale(ctx context.Context) (int, error) {
	queues, err := r.client.SMembers(ctx, r.queuesKey()).Result()
	if err != nil {
		return 0, err
	}
	now := r.now().UnixMilli()
	limit := r.opts.visibility.Milliseconds()
	moved := 0
	for _, queue := range queues {
		raws, err := r.client.LRange(ctx, r.processingKey(queue), 0, -1).Result()
		if err != nil {
			return moved, err
		}
		for _, raw := range raws {
			claimedAt, err := r.client.HGet(ctx, r.claimsKey(), raw).Int64()
			if errors.Is(err, redis.Nil) {
				if err := r.client.HSetNX(ctx, r.claimsKey(), raw, now).Err(); err != nil {
					return moved, err
				}
				continue
			}
			if err != nil {
				return moved, err
			}
			if now-claimedAt < limit {
				continue
			}
			keys := []string{r.processingKey(queue), r.listKey(queue), r.claimsKey()}
			n, err := moveIfRemoved.Run(ctx, r.client, keys, raw, "list").Int()
			if err != nil {
				return moved, err
			}
			if n > 0 {
				r.opts.logger.Warn("requeued stale task", "queue", queue, "claimed_ms_ago", now-claimedAt)
			}
			moved += n
		}
	}
	return moved, nil
}

// claim moves the head of queue into its processing list and stamps the claim
// time. A positive block waits up to that long for a task.
func (r *Redis) claim(ctx context.Context, queue string, block time.Duration) ([]byte, error) {
	src, dst := r.listKey(queue), r.processingKey(queue)
	var cmd *redis.StringCmd
	if block > 0 {
		cmd = r.client.BLMove(ctx, src, dst, "LEFT", "RIGHT", block)
	} else {
		cmd = r.client.LMove(ctx, src, dst, "LEFT", "RIGHT")
	}
	raw, err := cmd.Bytes()
	if err != nil {
		return nil, err
	}
	bg := context.WithoutCancel(ctx)
	if err := r.client.HSet(bg, r.claimsKey(), string(raw), r.now().UnixMilli()).Err(); err != nil {
		r.opts.logger.Warn("stamp claimed task failed", "queue", queue, "error", err)
	}
	return raw, nil
}

// process runs a claimed task and settles it. Settlement ignores ctx
// cancellation so a worker stopping mid-task never loses the task.
func (r *Redis) process(ctx context.Context, queue string, raw []byte) error {
	bg := context.WithoutCancel(ctx)

	var task Task
	if err := Unmarshal(raw, &task); err != nil {
		r.opts.logger.Error("dead-lettering undecodable task", "queue", queue, "error", err)
		if serr := r.settle(bg, queue, raw, func(p redis.Pipeliner) {
			p.RPush(bg, r.deadKey(queue), raw)
		}); serr != nil {
			return errors.Join(err, serr)
		}
		return err
	}

	result, err := execute(ctx, r.registry, r.opts, task)
	var record func(p redis.Pipeliner)
	switch result {
	case outcomeRetry:
		encoded, encErr := Marshal(task.retry())
		if encErr != nil {
			return errors.Join(err, encErr)
		}
		due := r.now().Add(r.opts.policy.Backoff(task.Attempt)).UnixMilli()
		record = func(p redis.Pipeliner) {
			p.ZAdd(bg, r.delayedKey(), redis.Z{Score: float64(due), Member: encoded})
		}
	case outcomeDead:
		record = func(p redis.Pipeliner) {
			p.RPush(bg, r.deadKey(queue), raw)
		}
	case outcomeInterrupted:
		record = func(p redis.Pipeliner) {
			p.LPush(bg, r.listKey(queue), raw)
		}
	}
	if serr := r.settle(bg, queue, raw, record); serr != nil {
		return errors.Join(err, fmt.Errorf("taskqueue: settle %s: %w", task.Name, serr))
	}
	return err
}

// settle records the outcome and releases the claim in one transaction.
func (r *Redis) settle(ctx context.Context, queue string, raw []byte, record func(redis.Pipeliner)) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if record != nil {
			record(p)
		}
		p.LRem(ctx, r.processingKey(queue), 1, raw)
		p.HDel(ctx, r.claimsKey(), string(raw))
		return nil
	})
	return err
}
