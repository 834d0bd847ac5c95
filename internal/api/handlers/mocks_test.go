package handlers

import (
	"context"

	"wallet_ledger/internal/models"
	"wallet_ledger/internal/service"
)

// Эти строки проверят во время компиляции, что моки подходят под интерфейсы.
var (
	_ service.WalletServicer = (*mockWalletService)(nil)
	_ service.Reconciler     = (*mockReconciler)(nil)
	_ service.UserServicer   = (*mockUserService)(nil)
)

type mockWalletService struct {
	CreateFunc            func(ctx context.Context, userID string) (*models.Wallet, error)
	FindByIDFunc          func(ctx context.Context, id string) (*models.Wallet, error)
	FindByUserIDFunc      func(ctx context.Context, userID string) (*models.Wallet, error)
	ListFunc              func(ctx context.Context, page, limit int) (*models.WalletPage, error)
	ListTransactionsFunc  func(ctx context.Context, walletID string, page, limit int) (*models.WalletTransactionPage, error)
	DeleteFunc            func(ctx context.Context, id string) error
	CreateTopupIntentFunc func(ctx context.Context, req models.TopupIntentRequest) (*models.PaymentIntent, error)
	RequestWithdrawalFunc func(ctx context.Context, req models.WithdrawalRequest) (*models.WithdrawalReceipt, error)
}

func (m *mockWalletService) Create(ctx context.Context, userID string) (*models.Wallet, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockWalletService) FindByID(ctx context.Context, id string) (*models.Wallet, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockWalletService) FindByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockWalletService) List(ctx context.Context, page, limit int) (*models.WalletPage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, page, limit)
	}
	return nil, nil
}

func (m *mockWalletService) ListTransactions(ctx context.Context, walletID string, page, limit int) (*models.WalletTransactionPage, error) {
	if m.ListTransactionsFunc != nil {
		return m.ListTransactionsFunc(ctx, walletID, page, limit)
	}
	return nil, nil
}

func (m *mockWalletService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockWalletService) CreateTopupIntent(ctx context.Context, req models.TopupIntentRequest) (*models.PaymentIntent, error) {
	if m.CreateTopupIntentFunc != nil {
		return m.CreateTopupIntentFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockWalletService) RequestWithdrawal(ctx context.Context, req models.WithdrawalRequest) (*models.WithdrawalReceipt, error) {
	if m.RequestWithdrawalFunc != nil {
		return m.RequestWithdrawalFunc(ctx, req)
	}
	return nil, nil
}

type mockReconciler struct {
	ReconcileTopupFunc      func(ctx context.Context, cb models.TopupCallback) (*models.BalanceResult, error)
	ReconcileWithdrawalFunc func(ctx context.Context, cb models.DisbursementCallback) (*models.BalanceResult, error)
}

func (m *mockReconciler) ReconcileTopup(ctx context.Context, cb models.TopupCallback) (*models.BalanceResult, error) {
	if m.ReconcileTopupFunc != nil {
		return m.ReconcileTopupFunc(ctx, cb)
	}
	return nil, nil
}

func (m *mockReconciler) ReconcileWithdrawal(ctx context.Context, cb models.DisbursementCallback) (*models.BalanceResult, error) {
	if m.ReconcileWithdrawalFunc != nil {
		return m.ReconcileWithdrawalFunc(ctx, cb)
	}
	return nil, nil
}

type mockUserService struct {
	RegisterUserFunc func(ctx context.Context, req models.RegisterUserRequest) (*models.RegisteredUser, error)
}

func (m *mockUserService) RegisterUser(ctx context.Context, req models.RegisterUserRequest) (*models.RegisteredUser, error) {
	if m.RegisterUserFunc != nil {
		return m.RegisterUserFunc(ctx, req)
	}
	return nil, nil
}
