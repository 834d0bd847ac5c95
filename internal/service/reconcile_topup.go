package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"wallet_ledger/internal/custom_err"
	"wallet_ledger/internal/models"

	"github.com/jackc/pgx/v5"
)

// ReconcileTopup зачисляет подтвержденное пополнение. Повторная доставка
// того же события возвращает custom_err.ErrDuplicateRequest и баланс не меняет.
func (s *WalletService) ReconcileTopup(ctx context.Context, cb models.TopupCallback) (*models.BalanceResult, error) {
	const op = "service.ReconcileTopup"
	start := time.Now()

	if err := models.Validate(cb); err != nil {
		s.metrics.observeReconciliation(flowTopup, err, start)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var wallet *models.Wallet
	err := runInTx(ctx, s.txManager, s.opts.LockTimeout, func(tx pgx.Tx) error {
		walletID, err := s.resolveTopupWallet(ctx, tx, cb)
		if err != nil {
			return err
		}

		wallet, err = s.repos.Wallets.GetByIDForUpdateTx(ctx, tx, walletID)
		if err != nil {
			return err
		}

		applied, err := s.repos.Ledger.ExistsByPaymentRefTx(ctx, tx, cb.ExternalID)
		if err != nil {
			return err
		}
		if applied {
			return fmt.Errorf("%w: external_id %s уже учтен", custom_err.ErrDuplicateRequest, cb.ExternalID)
		}
		seen, err := s.repos.Topups.ExistsByReferenceTx(ctx, tx, cb.GatewayTrxID)
		if err != nil {
			return err
		}
		if seen {
			return fmt.Errorf("%w: транзакция шлюза %s уже учтена", custom_err.ErrDuplicateRequest, cb.GatewayTrxID)
		}

		topup := &models.Topup{
			UserID:    wallet.UserID,
			Amount:    cb.Amount,
			Reference: cb.GatewayTrxID,
			Status:    models.TopupStatusCompleted,
		}
		if err := s.repos.Topups.CreateTx(ctx, tx, topup); err != nil {
			return err
		}

		trx := &models.WalletTransaction{
			WalletID:   wallet.ID,
			Amount:     cb.Amount,
			Type:       models.TopupTransaction,
			PaymentRef: cb.ExternalID,
			TrxID:      topup.ID,
		}
		if err := s.repos.Ledger.CreateTx(ctx, tx, trx); err != nil {
			return err
		}

		_, err = s.applyBalanceChange(ctx, tx, wallet, cb.Amount, models.TopupTransaction, cb.ExternalID)
		return err
	})
	s.metrics.observeReconciliation(flowTopup, err, start)
	if err != nil {
		s.logFailure(op, err, slog.String("external_id", cb.ExternalID), slog.String("gateway_trx_id", cb.GatewayTrxID))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, op, wallet)
	s.log.Info("пополнение зачислено",
		slog.String("op", op),
		slog.String("wallet_id", wallet.ID),
		slog.String("external_id", cb.ExternalID),
		slog.Int64("amount", cb.Amount),
		slog.Int64("balance", wallet.Balance),
	)
	return &models.BalanceResult{WalletID: wallet.ID, Balance: wallet.Balance}, nil
}

// resolveTopupWallet ищет кошелек по намерению платежа, а для старых
// external_id без намерения берет второй сегмент через '-'.
func (s *WalletService) resolveTopupWallet(ctx context.Context, tx pgx.Tx, cb models.TopupCallback) (string, error) {
	intent, err := s.repos.Intents.GetByExternalIDTx(ctx, tx, cb.ExternalID)
	switch {
	case err == nil:
		if intent.Amount != cb.Amount {
			return "", fmt.Errorf("%w: сумма %d не совпадает с намерением %d", custom_err.ErrValidation, cb.Amount, intent.Amount)
		}
		return intent.WalletID, nil
	case errors.Is(err, custom_err.ErrNotFound):
		return walletIDFromExternalID(cb.ExternalID)
	default:
		return "", err
	}
}

func walletIDFromExternalID(externalID string) (string, error) {
	parts := strings.Split(externalID, "-")
	if len(parts) < 2 || parts[1] == "" {
		return "", fmt.Errorf("%w: в external_id %q нет идентификатора кошелька", custom_err.ErrValidation, externalID)
	}
	return parts[1], nil
}

// logFailure пишет отказы, ожидаемые от шлюза, на уровне Info, остальные как Error.
func (s *WalletService) logFailure(op string, err error, attrs ...slog.Attr) {
	args := []any{slog.String("op", op), slog.String("error", err.Error())}
	for _, a := range attrs {
		args = append(args, a)
	}
	switch {
	case errors.Is(err, custom_err.ErrDuplicateRequest):
		s.log.Info("событие уже применено", args...)
	case errors.Is(err, custom_err.ErrValidation), errors.Is(err, custom_err.ErrNotFound),
		errors.Is(err, custom_err.ErrInsufficientFunds), errors.Is(err, custom_err.ErrInvalidStatus):
		s.log.Warn("событие отклонено", args...)
	default:
		s.log.Error("ошибка сверки", args...)
	}
}
