package repository

import (
	"context"

	"wallet_ledger/internal/models"

	"github.com/jackc/pgx/v5"
)

// Методы с суффиксом Tx выполняются внутри транзакции вызывающего кода
// и никогда не фиксируют и не откатывают ее сами.

type Wallet interface {
	Create(ctx context.Context, userID string) (*models.Wallet, error)
	CreateTx(ctx context.Context, tx pgx.Tx, userID string) (*models.Wallet, error)
	GetByID(ctx context.Context, id string) (*models.Wallet, error)
	GetByUserID(ctx context.Context, userID string) (*models.Wallet, error)
	GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*models.Wallet, error)
	UpdateBalanceTx(ctx context.Context, tx pgx.Tx, id string, balance int64) error
	List(ctx context.Context, offset, limit int) ([]models.Wallet, int64, error)
	Delete(ctx context.Context, id string) error
}

type Ledger interface {
	CreateTx(ctx context.Context, tx pgx.Tx, trx *models.WalletTransaction) error
	GetByPaymentRefTx(ctx context.Context, tx pgx.Tx, paymentRef string) (*models.WalletTransaction, error)
	ExistsByPaymentRefTx(ctx context.Context, tx pgx.Tx, paymentRef string) (bool, error)
	ListByWallet(ctx context.Context, walletID string, offset, limit int) ([]models.WalletTransaction, int64, error)
}

type Topup interface {
	CreateTx(ctx context.Context, tx pgx.Tx, topup *models.Topup) error
	ExistsByReferenceTx(ctx context.Context, tx pgx.Tx, reference string) (bool, error)
}

type Withdrawal interface {
	CreateTx(ctx context.Context, tx pgx.Tx, w *models.Withdrawal) error
	GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*models.Withdrawal, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id, status string) error
	SumPendingTx(ctx context.Context, tx pgx.Tx, walletID string) (int64, error)
}

type PaymentIntent interface {
	Create(ctx context.Context, intent *models.PaymentIntent) error
	GetByExternalIDTx(ctx context.Context, tx pgx.Tx, externalID string) (*models.PaymentIntent, error)
}

type User interface {
	CreateTx(ctx context.Context, tx pgx.Tx, user *models.User) error
	ContactsTaken(ctx context.Context, email, phone string) (emailTaken, phoneTaken bool, err error)
}

// OutboxShard: доля событий одного воркера. Все события кошелька попадают
// в один шард, поэтому порядок публикации по кошельку сохраняется.
type OutboxShard struct {
	Index int
	Count int
}

type Outbox interface {
	AppendTx(ctx context.Context, tx pgx.Tx, event *models.BalanceEvent) error
	ClaimShardTx(ctx context.Context, tx pgx.Tx, shard OutboxShard) (bool, error)
	FetchUnpublishedTx(ctx context.Context, tx pgx.Tx, shard OutboxShard, limit int) ([]models.BalanceEvent, error)
	MarkPublishedTx(ctx context.Context, tx pgx.Tx, ids []int64) error
}
