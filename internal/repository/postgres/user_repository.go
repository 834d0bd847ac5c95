package postgres

import (
	"context"

	"wallet_ledger/internal/models"
	"wallet_ledger/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ repository.User = (*UserRepository)(nil)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateTx(ctx context.Context, tx pgx.Tx, user *models.User) error {
	const op = "repository.User.CreateTx"
	if user.ID == "" {
		user.ID = NewID()
	}
	err := tx.QueryRow(ctx, repository.CreateUserQuery,
		user.ID, user.Name, user.Email, user.PhoneNumber, user.PasswordHash,
	).Scan(&user.CreatedAt)
	return mapError(op, err, nil)
}

func (r *UserRepository) ContactsTaken(ctx context.Context, email, phone string) (bool, bool, error) {
	const op = "repository.User.ContactsTaken"
	var emailTaken, phoneTaken bool
	if err := r.db.QueryRow(ctx, repository.CheckUserContactsTakenQuery, email, phone).Scan(&emailTaken, &phoneTaken); err != nil {
		return false, false, mapError(op, err, nil)
	}
	return emailTaken, phoneTaken, nil
}
