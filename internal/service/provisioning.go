package service

import (
	"context"
	"fmt"

	"wallet_ledger/internal/models"

	"github.com/jackc/pgx/v5"
)

// CreateInTransaction создает кошелек внутри транзакции вызывающего кода:
// если она откатится, кошелька не будет.
func (s *WalletService) CreateInTransaction(ctx context.Context, tx pgx.Tx, userID string) (*models.Wallet, error) {
	const op = "service.CreateInTransaction"
	wallet, err := s.repos.Wallets.CreateTx(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return wallet, nil
}
