package postgres

import (
	"context"
	"strings"

	"wallet_ledger/internal/custom_err"
	"wallet_ledger/internal/models"
	"wallet_ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ repository.Wallet = (*WalletRepository)(nil)

// NewID возвращает идентификатор фиксированной длины: uuid без дефисов.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

type WalletRepository struct {
	db *pgxpool.Pool
}

func NewWalletRepository(db *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{db: db}
}

func scanWallet(row pgx.Row) (*models.Wallet, error) {
	var wallet models.Wallet
	err := row.Scan(&wallet.ID, &wallet.UserID, &wallet.Balance, &wallet.CreatedAt, &wallet.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *WalletRepository) Create(ctx context.Context, userID string) (*models.Wallet, error) {
	const op = "repository.Wallet.Create"
	wallet, err := scanWallet(r.db.QueryRow(ctx, repository.CreateWalletQuery, NewID(), userID))
	if err != nil {
		return nil, mapError(op, err, nil)
	}
	return wallet, nil
}

func (r *WalletRepository) CreateTx(ctx context.Context, tx pgx.Tx, userID string) (*models.Wallet, error) {
	const op = "repository.Wallet.CreateTx"
	wallet, err := scanWallet(tx.QueryRow(ctx, repository.CreateWalletQuery, NewID(), userID))
	if err != nil {
		return nil, mapError(op, err, nil)
	}
	return wallet, nil
}

func (r *WalletRepository) GetByID(ctx context.Context, id string) (*models.Wallet, error) {
	const op = "repository.Wallet.GetByID"
	wallet, err := scanWallet(r.db.QueryRow(ctx, repository.GetWalletByIDQuery, id))
	if err != nil {
		return nil, mapError(op, err, custom_err.ErrWalletNotFound)
	}
	return wallet, nil
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	const op = "repository.Wallet.GetByUserID"
	wallet, err := scanWallet(r.db.QueryRow(ctx, repository.GetWalletByUserIDQuery, userID))
	if err != nil {
		return nil, mapError(op, err, custom_err.ErrWalletNotFound)
	}
	return wallet, nil
}

func (r *WalletRepository) List(ctx context.Context, offset, limit int) ([]models.Wallet, int64, error) {
	const op = "repository.Wallet.List"

	var total int64
	if err := r.db.QueryRow(ctx, repository.CountWalletsQuery).Scan(&total); err != nil {
		return nil, 0, mapError(op, err, nil)
	}

	rows, err := r.db.Query(ctx, repository.ListWalletsQuery, limit, offset)
	if err != nil {
		return nil, 0, mapError(op, err, nil)
	}
	wallets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Wallet, error) {
		w, err := scanWallet(row)
		if err != nil {
			return models.Wallet{}, err
		}
		return *w, nil
	})
	if err != nil {
		return nil, 0, mapError(op, err, nil)
	}
	return wallets, total, nil
}

func (r *WalletRepository) Delete(ctx context.Context, id string) error {
	const op = "repository.Wallet.Delete"
	cmdTag, err := r.db.Exec(ctx, repository.DeleteWalletQuery, id)
	if err != nil {
		return mapError(op, err, nil)
	}
	if cmdTag.RowsAffected() == 0 {
		return custom_err.ErrWalletNotFound
	}
	return nil
}
