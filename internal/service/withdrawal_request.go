package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"wallet_ledger/internal/config"
	"wallet_ledger/internal/custom_err"
	"wallet_ledger/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RequestWithdrawal создает вывод в статусе PENDING и строку журнала,
// по которой потом придет колбэк шлюза.
func (s *WalletService) RequestWithdrawal(ctx context.Context, req models.WithdrawalRequest) (*models.WithdrawalReceipt, error) {
	const op = "service.RequestWithdrawal"
	start := time.Now()

	if err := models.Validate(req); err != nil {
		s.metrics.observeReconciliation(flowWithdrawalRequest, err, start)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	externalID := req.ExternalID
	if externalID == "" {
		externalID = fmt.Sprintf("disb-%s-%s", req.WalletID, newReference())
	}

	var (
		wallet     *models.Wallet
		withdrawal *models.Withdrawal
	)
	err := runInTx(ctx, s.txManager, s.opts.LockTimeout, func(tx pgx.Tx) error {
		var err error
		wallet, err = s.repos.Wallets.GetByIDForUpdateTx(ctx, tx, req.WalletID)
		if err != nil {
			return err
		}
		available, err := s.availableForWithdrawal(ctx, tx, wallet)
		if err != nil {
			return err
		}
		if available < req.Amount {
			return fmt.Errorf("%w: доступно %d, запрошено %d", custom_err.ErrInsufficientFunds, available, req.Amount)
		}

		withdrawal = &models.Withdrawal{
			WalletID: wallet.ID,
			Amount:   req.Amount,
			Status:   models.WithdrawalStatusPending,
		}
		if err := s.repos.Withdrawals.CreateTx(ctx, tx, withdrawal); err != nil {
			return err
		}

		trx := &models.WalletTransaction{
			WalletID:   wallet.ID,
			Amount:     req.Amount,
			Type:       models.WithdrawalTransaction,
			PaymentRef: externalID,
			TrxID:      withdrawal.ID,
		}
		if err := s.repos.Ledger.CreateTx(ctx, tx, trx); err != nil {
			return err
		}

		if s.opts.WithdrawalPolicy == config.PolicyDebitOnRequestRefundOnFailure {
			_, err = s.applyBalanceChange(ctx, tx, wallet, -req.Amount, models.WithdrawalTransaction, externalID)
			return err
		}
		return nil
	})
	s.metrics.observeReconciliation(flowWithdrawalRequest, err, start)
	if err != nil {
		s.logFailure(op, err, slog.String("wallet_id", req.WalletID), slog.String("external_id", externalID))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, op, wallet)
	s.log.Info("вывод создан",
		slog.String("op", op),
		slog.String("wallet_id", wallet.ID),
		slog.String("withdrawal_id", withdrawal.ID),
		slog.String("external_id", externalID),
		slog.Int64("amount", req.Amount),
	)
	return &models.WithdrawalReceipt{
		Withdrawal: *withdrawal,
		ExternalID: externalID,
		Balance:    wallet.Balance,
	}, nil
}

// availableForWithdrawal: при списании по успеху PENDING выводы еще сидят
// в балансе, их нужно вычесть. При списании по запросу они уже вычтены.
func (s *WalletService) availableForWithdrawal(ctx context.Context, tx pgx.Tx, wallet *models.Wallet) (int64, error) {
	if s.opts.WithdrawalPolicy == config.PolicyDebitOnRequestRefundOnFailure {
		return wallet.Balance, nil
	}
	reserved, err := s.repos.Withdrawals.SumPendingTx(ctx, tx, wallet.ID)
	if err != nil {
		return 0, err
	}
	return wallet.Balance - reserved, nil
}

func newReference() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
