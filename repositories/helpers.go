package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx so repository methods
// can join a transaction owned by the caller.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Transactor runs fn inside a single database transaction. fn's error rolls
// the transaction back; a nil return commits it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error
}

type sqlTransactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) Transactor {
	return &sqlTransactor{db: db}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) (txErr error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				txErr = fmt.Errorf("%w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = mapCommitError(cErr)
		}
	}()
	return fn(tx)
}

// mapCommitError surfaces constraint and serialization failures detected at
// commit time as the overlap sentinel; anything else is wrapped.
func mapCommitError(err error) error {
	if isOverlapViolation(err) {
		return ErrReservationOverlap
	}
	return fmt.Errorf("failed to commit transaction: %w", err)
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

const (
	pqUniqueViolation       = "23505"
	pqForeignKeyViolation   = "23503"
	pqExclusionViolation    = "23P01"
	pqSerializationFailure  = "40001"
	reservationsOverlapName = "reservations_no_overlap"
)

func pqCode(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

func isOverlapViolation(err error) bool {
	pqErr, ok := pqCode(err)
	if !ok {
		return false
	}
	switch pqErr.Code {
	case pqExclusionViolation:
		return pqErr.Constraint == reservationsOverlapName
	case pqSerializationFailure:
		return true
	case pqUniqueViolation:
		return pqErr.Table == "reservations"
	}
	return false
}
