package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wallet_ledger/internal/models"
	"wallet_ledger/internal/repository"
	"wallet_ledger/pkg/logger"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"
)

// EventPublisher доставляет события баланса во внешний брокер.
type EventPublisher interface {
	Publish(ctx context.Context, events []models.BalanceEvent) error
}

type RelayOptions struct {
	Workers      int
	Interval     time.Duration
	BatchSize    int
	MaxAttempts  int
	RetryBackoff time.Duration
}

func DefaultRelayOptions() RelayOptions {
	return RelayOptions{
		Workers:      2,
		Interval:     1 * time.Second,
		BatchSize:    500,
		MaxAttempts:  3,
		RetryBackoff: 1 * time.Second,
	}
}

// OutboxRelay переносит строки balance_events в брокер. Доставка
// at-least-once: событие помечается опубликованным только после успешной
// отправки. Воркер i публикует только шард i из Workers, так что события
// одного кошелька уходят по порядку. Workers должен совпадать во всех
// экземплярах сервиса.
type OutboxRelay struct {
	outbox    repository.Outbox
	txManager TxManager
	publisher EventPublisher
	metrics   *Metrics
	log       *slog.Logger
	opts      RelayOptions
}

func NewOutboxRelay(outbox repository.Outbox, txManager TxManager, publisher EventPublisher, metrics *Metrics, log *slog.Logger, opts RelayOptions) *OutboxRelay {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultRelayOptions().BatchSize
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultRelayOptions().Interval
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &OutboxRelay{
		outbox:    outbox,
		txManager: txManager,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		opts:      opts,
	}
}

// Run блокируется до отмены ctx.
func (r *OutboxRelay) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < r.opts.Workers; i++ {
		shard := repository.OutboxShard{Index: i, Count: r.opts.Workers}
		g.Go(func() error {
			r.worker(ctx, shard)
			return nil
		})
	}
	return g.Wait()
}

func (r *OutboxRelay) worker(ctx context.Context, shard repository.OutboxShard) {
	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		totalPublished := 0
		for {
			n, err := r.Flush(ctx, shard)
			totalPublished += n
			if err != nil {
				if ctx.Err() == nil {
					r.log.Error("ошибка публикации событий",
						slog.Int("shard", shard.Index), slog.String("error", err.Error()))
				}
				break
			}
			if n < r.opts.BatchSize {
				break
			}
		}

		if totalPublished > 0 {
			r.log.Info("события опубликованы", slog.Int("shard", shard.Index), slog.Int("count", totalPublished))
		}
	}
}

// Flush публикует одну пачку событий шарда и возвращает их количество.
// Если шард занят другим воркером, возвращает 0.
func (r *OutboxRelay) Flush(ctx context.Context, shard repository.OutboxShard) (int, error) {
	const op = "service.OutboxRelay.Flush"

	published := 0
	err := runInTx(ctx, r.txManager, 0, func(tx pgx.Tx) error {
		claimed, err := r.outbox.ClaimShardTx(ctx, tx, shard)
		if err != nil {
			return err
		}
		if !claimed {
			return nil
		}

		events, err := r.outbox.FetchUnpublishedTx(ctx, tx, shard, r.opts.BatchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		if err := r.publishWithRetry(ctx, events); err != nil {
			return err
		}

		ids := make([]int64, len(events))
		for i, e := range events {
			ids[i] = e.ID
		}
		if err := r.outbox.MarkPublishedTx(ctx, tx, ids); err != nil {
			return err
		}
		published = len(events)
		return nil
	})
	if err != nil {
		r.metrics.relayFailed()
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if published > 0 {
		r.metrics.relayFlushed(published)
	}
	return published, nil
}

func (r *OutboxRelay) publishWithRetry(ctx context.Context, events []models.BalanceEvent) error {
	var err error
	for attempt := 0; attempt < r.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			r.metrics.relayRetried()
			backoff := time.Duration(1<<(attempt-1)) * r.opts.RetryBackoff
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
		if err = r.publisher.Publish(ctx, events); err == nil {
			return nil
		}
		r.log.Warn("публикация не удалась",
			slog.Int("attempt", attempt+1), slog.Int("events", len(events)), slog.String("error", err.Error()))
	}
	return fmt.Errorf("исчерпаны попытки публикации: %w", err)
}
