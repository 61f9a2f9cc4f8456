package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	journeyservice "elan/internal/journey/service"
	journeystore "elan/internal/journey/store"
	dErrors "elan/pkg/domain-errors"
)

const defaultJourneyTxTimeout = 5 * time.Second

// journeyPostgresTx runs journey mutations in one database transaction. The
// journey row is locked by the first read, so the key needs no local mutex.
type journeyPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newJourneyPostgresTx(db *sql.DB) *journeyPostgresTx {
	return &journeyPostgresTx{db: db}
}

func (t *journeyPostgresTx) RunInTx(ctx context.Context, _ string, fn func(ctx context.Context, store journeyservice.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultJourneyTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(fmt.Errorf("begin journey tx: %w", err), dErrors.CodeInternal, "failed to start transaction")
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is no-op; error already captured
	}()

	if err := fn(ctx, journeystore.NewPostgresTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(fmt.Errorf("commit journey tx: %w", err), dErrors.CodeInternal, "failed to commit transaction")
	}
	return nil
}
