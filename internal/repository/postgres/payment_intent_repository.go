package postgres

import (
	"context"

	"wallet_ledger/internal/custom_err"
	"wallet_ledger/internal/models"
	"wallet_ledger/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ repository.PaymentIntent = (*PaymentIntentRepository)(nil)

type PaymentIntentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentIntentRepository(db *pgxpool.Pool) *PaymentIntentRepository {
	return &PaymentIntentRepository{db: db}
}

func (r *PaymentIntentRepository) Create(ctx context.Context, intent *models.PaymentIntent) error {
	const op = "repository.PaymentIntent.Create"
	err := r.db.QueryRow(ctx, repository.CreatePaymentIntentQuery, intent.ExternalID, intent.WalletID, intent.Amount).
		Scan(&intent.CreatedAt)
	return mapError(op, err, nil)
}

func (r *PaymentIntentRepository) GetByExternalIDTx(ctx context.Context, tx pgx.Tx, externalID string) (*models.PaymentIntent, error) {
	const op = "repository.PaymentIntent.GetByExternalIDTx"
	var intent models.PaymentIntent
	err := tx.QueryRow(ctx, repository.GetPaymentIntentQuery, externalID).
		Scan(&intent.ExternalID, &intent.WalletID, &intent.Amount, &intent.CreatedAt)
	if err != nil {
		return nil, mapError(op, err, custom_err.ErrNotFound)
	}
	return &intent, nil
}
