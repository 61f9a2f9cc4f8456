package service

import (
	"context"
	"time"

	"elan/internal/journey/metrics"
	dErrors "elan/pkg/domain-errors"
	platformsync "elan/pkg/platform/sync"
)

// StoreTx provides a transactional boundary for journey mutations. The key
// names the journey whose read-modify-write must be serialized.
type StoreTx interface {
	RunInTx(ctx context.Context, key string, fn func(ctx context.Context, store Store) error) error
}

// defaultTxTimeout is the maximum duration for a journey transaction.
const defaultTxTimeout = 5 * time.Second

// ShardedTx serializes transactions per journey over an in-memory store.
type ShardedTx struct {
	mu      *platformsync.KeyedMutex
	store   Store
	timeout time.Duration
	metrics *metrics.Metrics
}

func NewShardedTx(store Store, m *metrics.Metrics) *ShardedTx {
	return &ShardedTx{
		mu:      platformsync.NewKeyedMutex(0),
		store:   store,
		timeout: defaultTxTimeout,
		metrics: m,
	}
}

func (t *ShardedTx) RunInTx(ctx context.Context, key string, fn func(ctx context.Context, store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	lockStart := time.Now()
	t.mu.Lock(key)
	if t.metrics != nil {
		t.metrics.ShardLockWait.Observe(time.Since(lockStart).Seconds())
	}
	defer t.mu.Unlock(key)

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx, t.store)
}
