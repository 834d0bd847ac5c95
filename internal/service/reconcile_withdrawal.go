package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wallet_ledger/internal/config"
	"wallet_ledger/internal/custom_err"
	"wallet_ledger/internal/models"

	"github.com/jackc/pgx/v5"
)

// ReconcileWithdrawal применяет статус вывода, пришедший от шлюза.
// Эффект на баланс зависит от политики списания.
func (s *WalletService) ReconcileWithdrawal(ctx context.Context, cb models.DisbursementCallback) (*models.BalanceResult, error) {
	const op = "service.ReconcileWithdrawal"
	start := time.Now()

	if err := models.Validate(cb); err != nil {
		s.metrics.observeReconciliation(flowWithdrawal, err, start)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		wallet  *models.Wallet
		changed bool
	)
	err := runInTx(ctx, s.txManager, s.opts.LockTimeout, func(tx pgx.Tx) error {
		trx, err := s.repos.Ledger.GetByPaymentRefTx(ctx, tx, cb.ExternalID)
		if err != nil {
			return err
		}
		if trx.Type != models.WithdrawalTransaction {
			return fmt.Errorf("%w: %s не является выводом", custom_err.ErrTransactionNotFound, cb.ExternalID)
		}
		if trx.Amount != cb.Amount {
			return fmt.Errorf("%w: сумма %d не совпадает с журналом %d", custom_err.ErrValidation, cb.Amount, trx.Amount)
		}

		wallet, err = s.repos.Wallets.GetByIDForUpdateTx(ctx, tx, trx.WalletID)
		if err != nil {
			return err
		}

		withdrawal, err := s.repos.Withdrawals.GetByIDForUpdateTx(ctx, tx, trx.TrxID)
		if err != nil {
			return err
		}

		if withdrawal.Status == cb.Status {
			return nil
		}
		if models.IsTerminalWithdrawalStatus(withdrawal.Status) {
			return fmt.Errorf("%w: вывод %s уже в статусе %s, получен %s",
				custom_err.ErrInvalidStatus, withdrawal.ID, withdrawal.Status, cb.Status)
		}

		if err := s.repos.Withdrawals.UpdateStatusTx(ctx, tx, withdrawal.ID, cb.Status); err != nil {
			return err
		}

		delta := s.withdrawalDelta(cb.Status, trx.Amount)
		if delta == 0 {
			return nil
		}
		if _, err := s.applyBalanceChange(ctx, tx, wallet, delta, models.WithdrawalTransaction, cb.ExternalID); err != nil {
			return err
		}
		changed = true
		return nil
	})
	s.metrics.observeReconciliation(flowWithdrawal, err, start)
	if err != nil {
		s.logFailure(op, err, slog.String("external_id", cb.ExternalID), slog.String("status", cb.Status))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if changed {
		s.invalidate(ctx, op, wallet)
	}
	s.log.Info("статус вывода применен",
		slog.String("op", op),
		slog.String("wallet_id", wallet.ID),
		slog.String("external_id", cb.ExternalID),
		slog.String("status", cb.Status),
		slog.Bool("balance_changed", changed),
		slog.Int64("balance", wallet.Balance),
	)
	return &models.BalanceResult{WalletID: wallet.ID, Balance: wallet.Balance}, nil
}

func (s *WalletService) withdrawalDelta(status string, amount int64) int64 {
	switch s.opts.WithdrawalPolicy {
	case config.PolicyDebitOnRequestRefundOnFailure:
		if status == models.WithdrawalStatusFailed {
			return amount
		}
	default:
		if status == models.WithdrawalStatusCompleted {
			return -amount
		}
	}
	return 0
}
