package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"wallet_ledger/internal/custom_err"
	"wallet_ledger/internal/models"
	"wallet_ledger/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	_ repository.Wallet        = (*mockWalletRepo)(nil)
	_ repository.Ledger        = (*mockLedgerRepo)(nil)
	_ repository.Topup         = (*mockTopupRepo)(nil)
	_ repository.Withdrawal    = (*mockWithdrawalRepo)(nil)
	_ repository.PaymentIntent = (*mockIntentRepo)(nil)
	_ repository.User          = (*mockUserRepo)(nil)
	_ repository.Outbox        = (*mockOutboxRepo)(nil)
	_ WalletCache              = (*mockCache)(nil)
	_ EventPublisher           = (*mockPublisher)(nil)
	_ TxManager                = (*fakeTxManager)(nil)
)

// fakeTx подменяет только то, что вызывает runInTx. Остальные методы
// встроенного интерфейса паникуют, если их кто-то вызовет.
var errIntentNotFound = fmt.Errorf("repository.PaymentIntent.GetByExternalIDTx: %w", custom_err.ErrNotFound)

type fakeTx struct {
	pgx.Tx
	mu         sync.Mutex
	execs      []string
	committed  bool
	rolledBack bool
	commitErr  error
	onClose    func(committed bool)
}

func (t *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.execs = append(t.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Commit(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	t.close(true)
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	t.close(false)
	return nil
}

func (t *fakeTx) close(committed bool) {
	if t.onClose != nil {
		t.onClose(committed)
		t.onClose = nil
	}
}

func (t *fakeTx) state() (committed, rolledBack bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.committed, t.rolledBack
}

type fakeTxManager struct {
	mu        sync.Mutex
	txs       []*fakeTx
	beginErr  error
	commitErr error
}

func (m *fakeTxManager) Begin(context.Context) (pgx.Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	tx := &fakeTx{commitErr: m.commitErr}
	m.txs = append(m.txs, tx)
	return tx, nil
}

func (m *fakeTxManager) last() *fakeTx {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.txs) == 0 {
		return nil
	}
	return m.txs[len(m.txs)-1]
}

type mockWalletRepo struct {
	CreateFunc             func(ctx context.Context, userID string) (*models.Wallet, error)
	CreateTxFunc           func(ctx context.Context, tx pgx.Tx, userID string) (*models.Wallet, error)
	GetByIDFunc            func(ctx context.Context, id string) (*models.Wallet, error)
	GetByUserIDFunc        func(ctx context.Context, userID string) (*models.Wallet, error)
	GetByIDForUpdateTxFunc func(ctx context.Context, tx pgx.Tx, id string) (*models.Wallet, error)
	UpdateBalanceTxFunc    func(ctx context.Context, tx pgx.Tx, id string, balance int64) error
	ListFunc               func(ctx context.Context, offset, limit int) ([]models.Wallet, int64, error)
	DeleteFunc             func(ctx context.Context, id string) error
}

func (m *mockWalletRepo) Create(ctx context.Context, userID string) (*models.Wallet, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID)
	}
	return nil, errors.New("CreateFunc not implemented")
}

func (m *mockWalletRepo) CreateTx(ctx context.Context, tx pgx.Tx, userID string) (*models.Wallet, error) {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, userID)
	}
	return nil, errors.New("CreateTxFunc not implemented")
}

func (m *mockWalletRepo) GetByID(ctx context.Context, id string) (*models.Wallet, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, errors.New("GetByIDFunc not implemented")
}

func (m *mockWalletRepo) GetByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	return nil, errors.New("GetByUserIDFunc not implemented")
}

func (m *mockWalletRepo) GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*models.Wallet, error) {
	if m.GetByIDForUpdateTxFunc != nil {
		return m.GetByIDForUpdateTxFunc(ctx, tx, id)
	}
	return nil, errors.New("GetByIDForUpdateTxFunc not implemented")
}

func (m *mockWalletRepo) UpdateBalanceTx(ctx context.Context, tx pgx.Tx, id string, balance int64) error {
	if m.UpdateBalanceTxFunc != nil {
		return m.UpdateBalanceTxFunc(ctx, tx, id, balance)
	}
	return nil
}

func (m *mockWalletRepo) List(ctx context.Context, offset, limit int) ([]models.Wallet, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockWalletRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type mockLedgerRepo struct {
	CreateTxFunc             func(ctx context.Context, tx pgx.Tx, trx *models.WalletTransaction) error
	GetByPaymentRefTxFunc    func(ctx context.Context, tx pgx.Tx, paymentRef string) (*models.WalletTransaction, error)
	ExistsByPaymentRefTxFunc func(ctx context.Context, tx pgx.Tx, paymentRef string) (bool, error)
	ListByWalletFunc         func(ctx context.Context, walletID string, offset, limit int) ([]models.WalletTransaction, int64, error)
}

func (m *mockLedgerRepo) CreateTx(ctx context.Context, tx pgx.Tx, trx *models.WalletTransaction) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, trx)
	}
	return nil
}

func (m *mockLedgerRepo) GetByPaymentRefTx(ctx context.Context, tx pgx.Tx, paymentRef string) (*models.WalletTransaction, error) {
	if m.GetByPaymentRefTxFunc != nil {
		return m.GetByPaymentRefTxFunc(ctx, tx, paymentRef)
	}
	return nil, errors.New("GetByPaymentRefTxFunc not implemented")
}

func (m *mockLedgerRepo) ExistsByPaymentRefTx(ctx context.Context, tx pgx.Tx, paymentRef string) (bool, error) {
	if m.ExistsByPaymentRefTxFunc != nil {
		return m.ExistsByPaymentRefTxFunc(ctx, tx, paymentRef)
	}
	return false, nil
}

func (m *mockLedgerRepo) ListByWallet(ctx context.Context, walletID string, offset, limit int) ([]models.WalletTransaction, int64, error) {
	if m.ListByWalletFunc != nil {
		return m.ListByWalletFunc(ctx, walletID, offset, limit)
	}
	return nil, 0, nil
}

type mockTopupRepo struct {
	CreateTxFunc            func(ctx context.Context, tx pgx.Tx, topup *models.Topup) error
	ExistsByReferenceTxFunc func(ctx context.Context, tx pgx.Tx, reference string) (bool, error)
}

func (m *mockTopupRepo) CreateTx(ctx context.Context, tx pgx.Tx, topup *models.Topup) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, topup)
	}
	topup.ID = "topup-row-id"
	return nil
}

func (m *mockTopupRepo) ExistsByReferenceTx(ctx context.Context, tx pgx.Tx, reference string) (bool, error) {
	if m.ExistsByReferenceTxFunc != nil {
		return m.ExistsByReferenceTxFunc(ctx, tx, reference)
	}
	return false, nil
}

type mockWithdrawalRepo struct {
	CreateTxFunc           func(ctx context.Context, tx pgx.Tx, w *models.Withdrawal) error
	GetByIDForUpdateTxFunc func(ctx context.Context, tx pgx.Tx, id string) (*models.Withdrawal, error)
	UpdateStatusTxFunc     func(ctx context.Context, tx pgx.Tx, id, status string) error
	SumPendingTxFunc       func(ctx context.Context, tx pgx.Tx, walletID string) (int64, error)
}

func (m *mockWithdrawalRepo) CreateTx(ctx context.Context, tx pgx.Tx, w *models.Withdrawal) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, w)
	}
	w.ID = "withdrawal-row-id"
	return nil
}

func (m *mockWithdrawalRepo) GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*models.Withdrawal, error) {
	if m.GetByIDForUpdateTxFunc != nil {
		return m.GetByIDForUpdateTxFunc(ctx, tx, id)
	}
	return nil, errors.New("GetByIDForUpdateTxFunc not implemented")
}

func (m *mockWithdrawalRepo) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id, status string) error {
	if m.UpdateStatusTxFunc != nil {
		return m.UpdateStatusTxFunc(ctx, tx, id, status)
	}
	return nil
}

func (m *mockWithdrawalRepo) SumPendingTx(ctx context.Context, tx pgx.Tx, walletID string) (int64, error) {
	if m.SumPendingTxFunc != nil {
		return m.SumPendingTxFunc(ctx, tx, walletID)
	}
	return 0, nil
}

type mockIntentRepo struct {
	CreateFunc            func(ctx context.Context, intent *models.PaymentIntent) error
	GetByExternalIDTxFunc func(ctx context.Context, tx pgx.Tx, externalID string) (*models.PaymentIntent, error)
}

func (m *mockIntentRepo) Create(ctx context.Context, intent *models.PaymentIntent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, intent)
	}
	return nil
}

func (m *mockIntentRepo) GetByExternalIDTx(ctx context.Context, tx pgx.Tx, externalID string) (*models.PaymentIntent, error) {
	if m.GetByExternalIDTxFunc != nil {
		return m.GetByExternalIDTxFunc(ctx, tx, externalID)
	}
	return nil, errIntentNotFound
}

type mockUserRepo struct {
	CreateTxFunc      func(ctx context.Context, tx pgx.Tx, user *models.User) error
	ContactsTakenFunc func(ctx context.Context, email, phone string) (bool, bool, error)
}

func (m *mockUserRepo) CreateTx(ctx context.Context, tx pgx.Tx, user *models.User) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, user)
	}
	user.ID = "user-row-id"
	return nil
}

func (m *mockUserRepo) ContactsTaken(ctx context.Context, email, phone string) (bool, bool, error) {
	if m.ContactsTakenFunc != nil {
		return m.ContactsTakenFunc(ctx, email, phone)
	}
	return false, false, nil
}

type mockOutboxRepo struct {
	mu                     sync.Mutex
	appended               []models.BalanceEvent
	AppendTxFunc           func(ctx context.Context, tx pgx.Tx, event *models.BalanceEvent) error
	ClaimShardTxFunc       func(ctx context.Context, tx pgx.Tx, shard repository.OutboxShard) (bool, error)
	FetchUnpublishedTxFunc func(ctx context.Context, tx pgx.Tx, shard repository.OutboxShard, limit int) ([]models.BalanceEvent, error)
	MarkPublishedTxFunc    func(ctx context.Context, tx pgx.Tx, ids []int64) error
}

func (m *mockOutboxRepo) AppendTx(ctx context.Context, tx pgx.Tx, event *models.BalanceEvent) error {
	if m.AppendTxFunc != nil {
		return m.AppendTxFunc(ctx, tx, event)
	}
	m.mu.Lock()
	m.appended = append(m.appended, *event)
	m.mu.Unlock()
	return nil
}

func (m *mockOutboxRepo) ClaimShardTx(ctx context.Context, tx pgx.Tx, shard repository.OutboxShard) (bool, error) {
	if m.ClaimShardTxFunc != nil {
		return m.ClaimShardTxFunc(ctx, tx, shard)
	}
	return true, nil
}

func (m *mockOutboxRepo) FetchUnpublishedTx(ctx context.Context, tx pgx.Tx, shard repository.OutboxShard, limit int) ([]models.BalanceEvent, error) {
	if m.FetchUnpublishedTxFunc != nil {
		return m.FetchUnpublishedTxFunc(ctx, tx, shard, limit)
	}
	return nil, nil
}

func (m *mockOutboxRepo) MarkPublishedTx(ctx context.Context, tx pgx.Tx, ids []int64) error {
	if m.MarkPublishedTxFunc != nil {
		return m.MarkPublishedTxFunc(ctx, tx, ids)
	}
	return nil
}

func (m *mockOutboxRepo) events() []models.BalanceEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.BalanceEvent(nil), m.appended...)
}

// mockCache повторяет поведение RedisWalletCache: Invalidate сдвигает
// поколение, и Fill по старому билету игнорируется.
type mockCache struct {
	mu          sync.Mutex
	byID        map[string]models.Wallet
	byUser      map[string]models.Wallet
	generations map[string]int64
	getErr      error
	invalidated []string
}

func newMockCache() *mockCache {
	return &mockCache{
		byID:        map[string]models.Wallet{},
		byUser:      map[string]models.Wallet{},
		generations: map[string]int64{},
	}
}

func (c *mockCache) lookup(entries map[string]models.Wallet, key, ticketKey string) (*models.Wallet, CacheTicket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, CacheTicket{}, c.getErr
	}
	ticket := CacheTicket{Key: ticketKey, Generation: c.generations[ticketKey]}
	w, ok := entries[key]
	if !ok {
		return nil, ticket, nil
	}
	return &w, ticket, nil
}

func (c *mockCache) GetByID(_ context.Context, id string) (*models.Wallet, CacheTicket, error) {
	return c.lookup(c.byID, id, "id:"+id)
}

func (c *mockCache) GetByUserID(_ context.Context, userID string) (*models.Wallet, CacheTicket, error) {
	return c.lookup(c.byUser, userID, "user:"+userID)
}

func (c *mockCache) Fill(_ context.Context, ticket CacheTicket, w *models.Wallet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[ticket.Key] != ticket.Generation {
		return nil
	}
	switch {
	case strings.HasPrefix(ticket.Key, "id:"):
		c.byID[w.ID] = *w
	case strings.HasPrefix(ticket.Key, "user:"):
		c.byUser[w.UserID] = *w
	}
	return nil
}

func (c *mockCache) Invalidate(_ context.Context, w *models.Wallet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byID, w.ID)
	delete(c.byUser, w.UserID)
	c.generations["id:"+w.ID]++
	c.generations["user:"+w.UserID]++
	c.invalidated = append(c.invalidated, w.ID)
	return nil
}

type mockPublisher struct {
	mu          sync.Mutex
	calls       int
	published   []models.BalanceEvent
	PublishFunc func(ctx context.Context, events []models.BalanceEvent) error
}

func (p *mockPublisher) Publish(ctx context.Context, events []models.BalanceEvent) error {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.PublishFunc != nil {
		if err := p.PublishFunc(ctx, events); err != nil {
			return err
		}
	}
	p.mu.Lock()
	p.published = append(p.published, events...)
	p.mu.Unlock()
	return nil
}

type testDeps struct {
	wallets     *mockWalletRepo
	ledger      *mockLedgerRepo
	topups      *mockTopupRepo
	withdrawals *mockWithdrawalRepo
	intents     *mockIntentRepo
	users       *mockUserRepo
	outbox      *mockOutboxRepo
	cache       *mockCache
	txm         *fakeTxManager
}

func newTestDeps() *testDeps {
	return &testDeps{
		wallets:     &mockWalletRepo{},
		ledger:      &mockLedgerRepo{},
		topups:      &mockTopupRepo{},
		withdrawals: &mockWithdrawalRepo{},
		intents:     &mockIntentRepo{},
		users:       &mockUserRepo{},
		outbox:      &mockOutboxRepo{},
		cache:       newMockCache(),
		txm:         &fakeTxManager{},
	}
}

func (d *testDeps) repositories() Repositories {
	return Repositories{
		Wallets:     d.wallets,
		Ledger:      d.ledger,
		Topups:      d.topups,
		Withdrawals: d.withdrawals,
		Intents:     d.intents,
		Users:       d.users,
		Outbox:      d.outbox,
	}
}

func (d *testDeps) service(opts Options) *WalletService {
	return NewWalletService(d.repositories(), d.txm, d.cache, nil, nil, opts)
}
