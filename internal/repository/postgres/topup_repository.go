package postgres

import (
	"context"

	"wallet_ledger/internal/models"
	"wallet_ledger/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ repository.Topup = (*TopupRepository)(nil)

type TopupRepository struct {
	db *pgxpool.Pool
}

func NewTopupRepository(db *pgxpool.Pool) *TopupRepository {
	return &TopupRepository{db: db}
}

func (r *TopupRepository) CreateTx(ctx context.Context, tx pgx.Tx, topup *models.Topup) error {
	const op = "repository.Topup.CreateTx"
	if topup.ID == "" {
		topup.ID = NewID()
	}
	err := tx.QueryRow(ctx, repository.CreateTopupQuery,
		topup.ID, topup.UserID, topup.Amount, topup.Reference, topup.Status,
	).Scan(&topup.CreatedAt)
	return mapError(op, err, nil)
}

func (r *TopupRepository) ExistsByReferenceTx(ctx context.Context, tx pgx.Tx, reference string) (bool, error) {
	const op = "repository.Topup.ExistsByReferenceTx"
	var exists bool
	if err := tx.QueryRow(ctx, repository.CheckTopupReferenceExistsQuery, reference).Scan(&exists); err != nil {
		return false, mapError(op, err, nil)
	}
	return exists, nil
}
