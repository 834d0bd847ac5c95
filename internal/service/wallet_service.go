package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wallet_ledger/internal/config"
	"wallet_ledger/internal/custom_err"
	"wallet_ledger/internal/models"
	"wallet_ledger/internal/repository"
	"wallet_ledger/pkg/logger"

	"github.com/jackc/pgx/v5"
)

// WalletServicer описывает, что должен уметь сервис кошелька.
type WalletServicer interface {
	Create(ctx context.Context, userID string) (*models.Wallet, error)
	FindByID(ctx context.Context, id string) (*models.Wallet, error)
	FindByUserID(ctx context.Context, userID string) (*models.Wallet, error)
	List(ctx context.Context, page, limit int) (*models.WalletPage, error)
	ListTransactions(ctx context.Context, walletID string, page, limit int) (*models.WalletTransactionPage, error)
	Delete(ctx context.Context, id string) error
	CreateTopupIntent(ctx context.Context, req models.TopupIntentRequest) (*models.PaymentIntent, error)
	RequestWithdrawal(ctx context.Context, req models.WithdrawalRequest) (*models.WithdrawalReceipt, error)
}

// Reconciler применяет подтвержденные шлюзом события к балансу.
type Reconciler interface {
	ReconcileTopup(ctx context.Context, cb models.TopupCallback) (*models.BalanceResult, error)
	ReconcileWithdrawal(ctx context.Context, cb models.DisbursementCallback) (*models.BalanceResult, error)
}

type UserServicer interface {
	RegisterUser(ctx context.Context, req models.RegisterUserRequest) (*models.RegisteredUser, error)
}

var (
	_ WalletServicer = (*WalletService)(nil)
	_ Reconciler     = (*WalletService)(nil)
	_ UserServicer   = (*WalletService)(nil)
)

const maxPageLimit = 100

type Repositories struct {
	Wallets     repository.Wallet
	Ledger      repository.Ledger
	Topups      repository.Topup
	Withdrawals repository.Withdrawal
	Intents     repository.PaymentIntent
	Users       repository.User
	Outbox      repository.Outbox
}

type Options struct {
	LockTimeout      time.Duration
	WithdrawalPolicy string
	TopupPrefix      string
}

func DefaultOptions() Options {
	return Options{
		LockTimeout:      5 * time.Second,
		WithdrawalPolicy: config.PolicyDebitOnSuccess,
		TopupPrefix:      "topup",
	}
}

type WalletService struct {
	repos     Repositories
	txManager TxManager
	cache     WalletCache
	metrics   *Metrics
	log       *slog.Logger
	opts      Options
}

// NewWalletService принимает интерфейсы репозиториев. cache и metrics
// могут быть nil.
func NewWalletService(repos Repositories, txManager TxManager, cache WalletCache, metrics *Metrics, log *slog.Logger, opts Options) *WalletService {
	if cache == nil {
		cache = noopCache{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &WalletService{
		repos:     repos,
		txManager: txManager,
		cache:     cache,
		metrics:   metrics,
		log:       log,
		opts:      opts,
	}
}

func (s *WalletService) Create(ctx context.Context, userID string) (*models.Wallet, error) {
	const op = "service.Create"
	wallet, err := s.repos.Wallets.Create(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return wallet, nil
}

func (s *WalletService) FindByID(ctx context.Context, id string) (*models.Wallet, error) {
	const op = "service.FindByID"

	cached, ticket := s.cachedWallet(ctx, op, s.cache.GetByID, id)
	if cached != nil {
		return cached, nil
	}

	wallet, err := s.repos.Wallets.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.fillCache(ctx, op, ticket, wallet)
	return wallet, nil
}

func (s *WalletService) FindByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	const op = "service.FindByUserID"

	cached, ticket := s.cachedWallet(ctx, op, s.cache.GetByUserID, userID)
	if cached != nil {
		return cached, nil
	}

	wallet, err := s.repos.Wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.fillCache(ctx, op, ticket, wallet)
	return wallet, nil
}

func (s *WalletService) List(ctx context.Context, page, limit int) (*models.WalletPage, error) {
	const op = "service.List"

	offset, err := pageOffset(page, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	wallets, total, err := s.repos.Wallets.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if wallets == nil {
		wallets = []models.Wallet{}
	}

	return &models.WalletPage{
		Wallets:    wallets,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (s *WalletService) ListTransactions(ctx context.Context, walletID string, page, limit int) (*models.WalletTransactionPage, error) {
	const op = "service.ListTransactions"

	offset, err := pageOffset(page, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.FindByID(ctx, walletID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	trxs, total, err := s.repos.Ledger.ListByWallet(ctx, walletID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if trxs == nil {
		trxs = []models.WalletTransaction{}
	}

	return &models.WalletTransactionPage{
		Transactions: trxs,
		Total:        total,
		Page:         page,
		Limit:        limit,
		TotalPages:   totalPages(total, limit),
	}, nil
}

func (s *WalletService) Delete(ctx context.Context, id string) error {
	const op = "service.Delete"

	wallet, err := s.repos.Wallets.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repos.Wallets.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, op, wallet)
	return nil
}

// applyBalanceChange: единственное место, где меняется balance.
// wallet должен быть заблокирован в tx через GetByIDForUpdateTx.
func (s *WalletService) applyBalanceChange(ctx context.Context, tx pgx.Tx, wallet *models.Wallet, delta int64, trxType models.TransactionType, paymentRef string) (int64, error) {
	const op = "service.applyBalanceChange"

	newBalance := wallet.Balance + delta
	if newBalance < 0 {
		return 0, fmt.Errorf("%s: %w", op, custom_err.ErrInsufficientFunds)
	}
	if delta > 0 && newBalance < wallet.Balance {
		return 0, fmt.Errorf("%s: %w: переполнение баланса", op, custom_err.ErrValidation)
	}

	event := &models.BalanceEvent{
		WalletID:   wallet.ID,
		Type:       trxType,
		Amount:     delta,
		Balance:    newBalance,
		PaymentRef: paymentRef,
	}
	if err := s.repos.Outbox.AppendTx(ctx, tx, event); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repos.Wallets.UpdateBalanceTx(ctx, tx, wallet.ID, newBalance); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	wallet.Balance = newBalance
	return newBalance, nil
}

func pageOffset(page, limit int) (int, error) {
	if page < 1 {
		return 0, fmt.Errorf("%w: page должен быть >= 1", custom_err.ErrValidation)
	}
	if limit < 1 || limit > maxPageLimit {
		return 0, fmt.Errorf("%w: limit должен быть от 1 до %d", custom_err.ErrValidation, maxPageLimit)
	}
	return (page - 1) * limit, nil
}

func totalPages(total int64, limit int) int {
	return int((total + int64(limit) - 1) / int64(limit))
}
