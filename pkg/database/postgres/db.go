package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/code-payments/code-vault/pkg/retry"
	"github.com/code-payments/code-vault/pkg/retry/backoff"
)

const (
	maxSerializationRetries = 10
	serializationBackoff    = 5 * time.Millisecond
	maxSerializationBackoff = 250 * time.Millisecond
)

// ExecuteRetryable retries fn while it fails with a serialization failure.
func ExecuteRetryable(fn func() error) error {
	_, err := retry.Retry(
		fn,
		retry.Limit(maxSerializationRetries),
		retry.RetriableIf(IsSerializationFailure),
		retry.BackoffWithJitter(backoff.BinaryExponential(serializationBackoff), maxSerializationBackoff, 0.1),
	)
	return err
}

// ExecuteInTx runs fn inside a new transaction at the requested isolation
// level. The transaction commits when fn returns nil and rolls back otherwise.
func ExecuteInTx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(tx *sqlx.Tx) error) error {
	if isolation == sql.LevelDefault {
		isolation = sql.LevelReadCommitted // Postgres default
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return errors.Wrap(err, "error beginning tx")
	}

	if err := fn(tx); err != nil {
		// Always roll back so sql.DB releases the connection.
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return errors.Wrapf(err, "rollback failed: %v", rollbackErr)
		}
		return err
	}

	return tx.Commit()
}
