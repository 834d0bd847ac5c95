package postgres

import (
	"context"

	"wallet_ledger/internal/custom_err"
	"wallet_ledger/internal/models"
	"wallet_ledger/internal/repository"

	"github.com/jackc/pgx/v5"
)

// GetByIDForUpdateTx читает кошелек с блокировкой строки до конца транзакции.
func (r *WalletRepository) GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*models.Wallet, error) {
	const op = "repository.Wallet.GetByIDForUpdateTx"
	wallet, err := scanWallet(tx.QueryRow(ctx, repository.GetWalletForUpdateQuery, id))
	if err != nil {
		return nil, mapError(op, err, custom_err.ErrWalletNotFound)
	}
	return wallet, nil
}

// UpdateBalanceTx безусловно записывает баланс. Вызывающий код обязан
// предварительно заблокировать строку через GetByIDForUpdateTx.
func (r *WalletRepository) UpdateBalanceTx(ctx context.Context, tx pgx.Tx, id string, balance int64) error {
	const op = "repository.Wallet.UpdateBalanceTx"
	cmdTag, err := tx.Exec(ctx, repository.UpdateWalletBalanceQuery, balance, id)
	if err != nil {
		return mapError(op, err, nil)
	}
	if cmdTag.RowsAffected() == 0 {
		return custom_err.ErrWalletNotFound
	}
	return nil
}
