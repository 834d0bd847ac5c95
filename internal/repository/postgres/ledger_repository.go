package postgres

import (
	"context"

	"wallet_ledger/internal/custom_err"
	"wallet_ledger/internal/models"
	"wallet_ledger/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ repository.Ledger = (*LedgerRepository)(nil)

// LedgerRepository хранит журнал wallet_transactions. Строки только добавляются.
type LedgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func scanWalletTransaction(row pgx.Row) (models.WalletTransaction, error) {
	var trx models.WalletTransaction
	err := row.Scan(&trx.ID, &trx.WalletID, &trx.Amount, &trx.Type, &trx.PaymentRef, &trx.TrxID, &trx.CreatedAt)
	return trx, err
}

func (r *LedgerRepository) CreateTx(ctx context.Context, tx pgx.Tx, trx *models.WalletTransaction) error {
	const op = "repository.Ledger.CreateTx"
	if trx.ID == "" {
		trx.ID = NewID()
	}
	err := tx.QueryRow(ctx, repository.CreateWalletTransactionQuery,
		trx.ID, trx.WalletID, trx.Amount, trx.Type, trx.PaymentRef, trx.TrxID,
	).Scan(&trx.CreatedAt)
	return mapError(op, err, nil)
}

func (r *LedgerRepository) GetByPaymentRefTx(ctx context.Context, tx pgx.Tx, paymentRef string) (*models.WalletTransaction, error) {
	const op = "repository.Ledger.GetByPaymentRefTx"
	trx, err := scanWalletTransaction(tx.QueryRow(ctx, repository.GetWalletTransactionByPaymentRefQuery, paymentRef))
	if err != nil {
		return nil, mapError(op, err, custom_err.ErrTransactionNotFound)
	}
	return &trx, nil
}

func (r *LedgerRepository) ExistsByPaymentRefTx(ctx context.Context, tx pgx.Tx, paymentRef string) (bool, error) {
	const op = "repository.Ledger.ExistsByPaymentRefTx"
	var exists bool
	if err := tx.QueryRow(ctx, repository.CheckWalletTransactionExistsQuery, paymentRef).Scan(&exists); err != nil {
		return false, mapError(op, err, nil)
	}
	return exists, nil
}

func (r *LedgerRepository) ListByWallet(ctx context.Context, walletID string, offset, limit int) ([]models.WalletTransaction, int64, error) {
	const op = "repository.Ledger.ListByWallet"

	var total int64
	if err := r.db.QueryRow(ctx, repository.CountWalletTransactionsQuery, walletID).Scan(&total); err != nil {
		return nil, 0, mapError(op, err, nil)
	}

	rows, err := r.db.Query(ctx, repository.ListWalletTransactionsQuery, walletID, limit, offset)
	if err != nil {
		return nil, 0, mapError(op, err, nil)
	}
	trxs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.WalletTransaction, error) {
		return scanWalletTransaction(row)
	})
	if err != nil {
		return nil, 0, mapError(op, err, nil)
	}
	return trxs, total, nil
}
