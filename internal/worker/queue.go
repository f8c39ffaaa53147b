package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueEmpty is returned by Pop when nothing arrived before the timeout.
var ErrQueueEmpty = errors.New("queue empty")

// Queue is a set of FIFO lists of encoded jobs.
type Queue interface {
	Push(ctx context.Context, key string, data []byte) error
	// Pop blocks up to timeout for an element of any of keys, checked in order.
	Pop(ctx context.Context, timeout time.Duration, keys ...string) (string, []byte, error)
	Len(ctx context.Context, key string) (int64, error)
}

// NewQueue returns a Redis backed queue, or an in-process one when rdb is nil.
func NewQueue(rdb *redis.Client) Queue {
	if rdb == nil {
		return NewMemoryQueue()
	}
	return &redisQueue{rdb: rdb}
}

// ── Redis ─────────────────────────────────────────────────────────────────────

// redisQueue pushes with LPUSH and pops with BRPOP, which keeps FIFO order.
type redisQueue struct{ rdb *redis.Client }

func (q *redisQueue) Push(ctx context.Context, key string, data []byte) error {
	return q.rdb.LPush(ctx, key, data).Err()
}

func (q *redisQueue) Pop(ctx context.Context, timeout time.Duration, keys ...string) (string, []byte, error) {
	res, err := q.rdb.BRPop(ctx, timeout, keys...).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil, ErrQueueEmpty
	}
	if err != nil {
		return "", nil, err
	}
	if len(res) < 2 {
		return "", nil, ErrQueueEmpty
	}
	return res[0], []byte(res[1]), nil
}

func (q *redisQueue) Len(ctx context.Context, key string) (int64, error) {
	return q.rdb.LLen(ctx, key).Result()
}

// ── Memory ────────────────────────────────────────────────────────────────────

// MemoryQueue is the in-process Queue used when Redis is not configured.
// Jobs do not survive a restart.
type MemoryQueue struct {
	mu     sync.Mutex
	lists  map[string][][]byte
	signal chan struct{}
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{lists: map[string][][]byte{}, signal: make(chan struct{}, 1)}
}

func (q *MemoryQueue) Push(_ context.Context, key string, data []byte) error {
	q.mu.Lock()
	q.lists[key] = append(q.lists[key], data)
	q.mu.Unlock()
	q.notify()
	return nil
}

func (q *MemoryQueue) Pop(ctx context.Context, timeout time.Duration, keys ...string) (string, []byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		if key, data, ok := q.take(keys); ok {
			return key, data, nil
		}
		select {
		case <-q.signal:
		case <-timer.C:
			return "", nil, ErrQueueEmpty
		case <-ctx.Done():
			return "", nil, ctx.Err()
		}
	}
}

func (q *MemoryQueue) Len(_ context.Context, key string) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.lists[key])), nil
}

func (q *MemoryQueue) take(keys []string) (string, []byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, k := range keys {
		if l := q.lists[k]; len(l) > 0 {
			q.lists[k] = l[1:]
			if q.pending() {
				q.notify()
			}
			return k, l[0], true
		}
	}
	return "", nil, false
}

// pending must be called with mu held.
func (q *MemoryQueue) pending() bool {
	for _, l := range q.lists {
		if len(l) > 0 {
			return true
		}
	}
	return false
}

func (q *MemoryQueue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}
