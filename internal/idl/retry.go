package idl

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cloudflare/backoff"
	"github.com/lib/pq"
)

// Transient Postgres error codes the retry loop below treats as
// "try again shortly", adapted from the teacher's pkg/db/db.go.
const (
	lockNotAvailableErrorCode  pq.ErrorCode = "55P03"
	serializationFailErrorCode pq.ErrorCode = "40001"
	maxBackoffDuration                      = 1 * time.Minute
	backoffInterval                         = 1 * time.Second
)

func isTransientPgError(err error) bool {
	pqErr := &pq.Error{}
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == lockNotAvailableErrorCode || pqErr.Code == serializationFailErrorCode
}

// withRetryableTx runs f in a *sql.Tx, retrying with exponential backoff
// (with jitter) on lock/serialization contention. This is plumbing-level
// retry distinct from the command-stream's `try_again` loop in
// internal/ctl/driver.go: it absorbs brief Postgres contention within one
// transaction attempt rather than discarding the whole attempt.
func withRetryableTx(ctx context.Context, conn *sql.DB, f func(context.Context, *sql.Tx) error) error {
	b := backoff.New(maxBackoffDuration, backoffInterval)

	for {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}

		err = f(ctx, tx)
		if err == nil {
			return tx.Commit()
		}

		if rbErr := tx.Rollback(); rbErr != nil {
			return rbErr
		}

		if isTransientPgError(err) {
			if sleepErr := sleepCtx(ctx, b.Duration()); sleepErr != nil {
				return sleepErr
			}
			continue
		}

		return err
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
