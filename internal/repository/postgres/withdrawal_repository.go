package postgres

import (
	"context"

	"wallet_ledger/internal/custom_err"
	"wallet_ledger/internal/models"
	"wallet_ledger/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ repository.Withdrawal = (*WithdrawalRepository)(nil)

type WithdrawalRepository struct {
	db *pgxpool.Pool
}

func NewWithdrawalRepository(db *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) CreateTx(ctx context.Context, tx pgx.Tx, w *models.Withdrawal) error {
	const op = "repository.Withdrawal.CreateTx"
	if w.ID == "" {
		w.ID = NewID()
	}
	err := tx.QueryRow(ctx, repository.CreateWithdrawalQuery, w.ID, w.WalletID, w.Amount, w.Status).
		Scan(&w.CreatedAt, &w.UpdatedAt)
	return mapError(op, err, nil)
}

func (r *WithdrawalRepository) GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*models.Withdrawal, error) {
	const op = "repository.Withdrawal.GetByIDForUpdateTx"
	var w models.Withdrawal
	err := tx.QueryRow(ctx, repository.GetWithdrawalForUpdateQuery, id).
		Scan(&w.ID, &w.WalletID, &w.Amount, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, mapError(op, err, custom_err.ErrWithdrawalNotFound)
	}
	return &w, nil
}

func (r *WithdrawalRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id, status string) error {
	const op = "repository.Withdrawal.UpdateStatusTx"
	cmdTag, err := tx.Exec(ctx, repository.UpdateWithdrawalStatusQuery, status, id)
	if err != nil {
		return mapError(op, err, nil)
	}
	if cmdTag.RowsAffected() == 0 {
		return custom_err.ErrWithdrawalNotFound
	}
	return nil
}

// SumPendingTx вызывается под блокировкой кошелька, поэтому новых PENDING
// выводов параллельно не появится.
func (r *WithdrawalRepository) SumPendingTx(ctx context.Context, tx pgx.Tx, walletID string) (int64, error) {
	const op = "repository.Withdrawal.SumPendingTx"
	var total int64
	err := tx.QueryRow(ctx, repository.SumPendingWithdrawalsQuery, walletID, models.WithdrawalStatusPending).Scan(&total)
	if err != nil {
		return 0, mapError(op, err, nil)
	}
	return total, nil
}
