package service

import (
	"context"
	"log/slog"

	"wallet_ledger/internal/models"
)

// CacheTicket фиксирует поколение ключа в момент промаха. Invalidate
// увеличивает поколение, и Fill с таким билетом уже ничего не запишет.
type CacheTicket struct {
	Key        string
	Generation int64
}

// WalletCache: кэш чтения кошельков. Промах возвращает nil и билет для Fill.
type WalletCache interface {
	GetByID(ctx context.Context, id string) (*models.Wallet, CacheTicket, error)
	GetByUserID(ctx context.Context, userID string) (*models.Wallet, CacheTicket, error)
	Fill(ctx context.Context, ticket CacheTicket, wallet *models.Wallet) error
	Invalidate(ctx context.Context, wallet *models.Wallet) error
}

type noopCache struct{}

func (noopCache) GetByID(context.Context, string) (*models.Wallet, CacheTicket, error) {
	return nil, CacheTicket{}, nil
}

func (noopCache) GetByUserID(context.Context, string) (*models.Wallet, CacheTicket, error) {
	return nil, CacheTicket{}, nil
}

func (noopCache) Fill(context.Context, CacheTicket, *models.Wallet) error { return nil }

func (noopCache) Invalidate(context.Context, *models.Wallet) error { return nil }

type cacheLookup func(context.Context, string) (*models.Wallet, CacheTicket, error)

// cachedWallet не возвращает ошибок: при сбое кэша чтение идет в БД.
// Билет возвращается только при чистом промахе.
func (s *WalletService) cachedWallet(ctx context.Context, op string, get cacheLookup, key string) (*models.Wallet, *CacheTicket) {
	wallet, ticket, err := get(ctx, key)
	switch {
	case err != nil:
		s.log.Warn("ошибка чтения из кэша", slog.String("op", op), slog.String("key", key), slog.String("error", err.Error()))
		s.metrics.cacheLookup(cacheResultError)
		return nil, nil
	case wallet == nil:
		s.metrics.cacheLookup(cacheResultMiss)
		return nil, &ticket
	default:
		s.metrics.cacheLookup(cacheResultHit)
		return wallet, nil
	}
}

func (s *WalletService) fillCache(ctx context.Context, op string, ticket *CacheTicket, wallet *models.Wallet) {
	if ticket == nil {
		return
	}
	if err := s.cache.Fill(ctx, *ticket, wallet); err != nil {
		s.log.Warn("ошибка записи в кэш", slog.String("op", op), slog.String("wallet_id", wallet.ID), slog.String("error", err.Error()))
	}
}

// invalidate вызывается только после фиксации транзакции.
func (s *WalletService) invalidate(ctx context.Context, op string, wallet *models.Wallet) {
	if err := s.cache.Invalidate(context.WithoutCancel(ctx), wallet); err != nil {
		s.log.Warn("ошибка инвалидации кэша", slog.String("op", op), slog.String("wallet_id", wallet.ID), slog.String("error", err.Error()))
	}
}
