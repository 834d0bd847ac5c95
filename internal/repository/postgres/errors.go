package postgres

import (
	"errors"
	"fmt"

	"wallet_ledger/internal/custom_err"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgLockNotAvailable    = "55P03"
	pgQueryCanceled       = "57014"
	pgDeadlockDetected    = "40P01"
	pgSerializationFail   = "40001"
)

// mapError переводит ошибки pgx в ошибки custom_err.
// notFound возвращается для pgx.ErrNoRows.
func mapError(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) && notFound != nil {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, custom_err.ErrDuplicateRequest, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w: нарушен внешний ключ %s", op, custom_err.ErrConflict, pgErr.ConstraintName)
		case pgCheckViolation:
			return fmt.Errorf("%s: %w: нарушено ограничение %s", op, custom_err.ErrValidation, pgErr.ConstraintName)
		case pgLockNotAvailable, pgQueryCanceled, pgDeadlockDetected, pgSerializationFail:
			return fmt.Errorf("%s: %w", op, custom_err.ErrLockTimeout)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, custom_err.ErrInternal, err)
}
