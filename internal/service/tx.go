package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet_ledger/internal/custom_err"
	"wallet_ledger/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type TxManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// runInTx открывает транзакцию, ограничивает ожидание блокировок и
// фиксирует ее, если fn вернула nil. Любая ошибка откатывает все изменения
// и возвращается вызывающему как есть.
func runInTx(ctx context.Context, txm TxManager, lockTimeout time.Duration, fn func(tx pgx.Tx) error) (err error) {
	const op = "service.runInTx"

	tx, err := txm.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: ошибка начала транзакции: %w: %w", op, custom_err.ErrInternal, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if lockTimeout > 0 {
		if _, err = tx.Exec(ctx, repository.SetLockTimeoutQuery, fmt.Sprintf("%dms", lockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("%s: ошибка установки lock_timeout: %w: %w", op, custom_err.ErrInternal, err)
		}
	}

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: ошибка фиксации транзакции: %w", op, commitError(err))
	}
	return nil
}

// commitError отделяет конфликты сериализации, которые шлюз может
// повторить, от прочих сбоев фиксации.
func commitError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
		return fmt.Errorf("%w: %w", custom_err.ErrLockTimeout, err)
	}
	return fmt.Errorf("%w: %w", custom_err.ErrInternal, err)
}
