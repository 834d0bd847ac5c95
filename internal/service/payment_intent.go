package service

import (
	"context"
	"fmt"

	"wallet_ledger/internal/models"
)

// CreateTopupIntent выдает external_id для шлюза и запоминает, к какому
// кошельку он относится.
func (s *WalletService) CreateTopupIntent(ctx context.Context, req models.TopupIntentRequest) (*models.PaymentIntent, error) {
	const op = "service.CreateTopupIntent"

	if err := models.Validate(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.repos.Wallets.GetByID(ctx, req.WalletID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	intent := &models.PaymentIntent{
		ExternalID: fmt.Sprintf("%s-%s-%s", s.opts.TopupPrefix, req.WalletID, newReference()),
		WalletID:   req.WalletID,
		Amount:     req.Amount,
	}
	if err := s.repos.Intents.Create(ctx, intent); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return intent, nil
}
