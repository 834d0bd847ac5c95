package postgres

import (
	"context"

	"wallet_ledger/internal/models"
	"wallet_ledger/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ repository.Outbox = (*OutboxRepository)(nil)

// OutboxRepository: таблица balance_events, заполняемая в той же
// транзакции, что и изменение баланса.
type OutboxRepository struct {
	db *pgxpool.Pool
}

func NewOutboxRepository(db *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) AppendTx(ctx context.Context, tx pgx.Tx, event *models.BalanceEvent) error {
	const op = "repository.Outbox.AppendTx"
	err := tx.QueryRow(ctx, repository.AppendBalanceEventQuery,
		event.WalletID, event.Type, event.Amount, event.Balance, event.PaymentRef,
	).Scan(&event.ID, &event.CreatedAt)
	return mapError(op, err, nil)
}

// outboxLockClass: первый ключ advisory-блокировки, второй ключ номер шарда.
const outboxLockClass int32 = 0x6f757462

// ClaimShardTx возвращает false, если шард уже публикует другой воркер.
// Блокировка снимается вместе с транзакцией.
func (r *OutboxRepository) ClaimShardTx(ctx context.Context, tx pgx.Tx, shard repository.OutboxShard) (bool, error) {
	const op = "repository.Outbox.ClaimShardTx"
	var claimed bool
	if err := tx.QueryRow(ctx, repository.ClaimOutboxShardQuery, outboxLockClass, int32(shard.Index)).Scan(&claimed); err != nil {
		return false, mapError(op, err, nil)
	}
	return claimed, nil
}

// FetchUnpublishedTx возвращает самые ранние неопубликованные события шарда
// в порядке id.
func (r *OutboxRepository) FetchUnpublishedTx(ctx context.Context, tx pgx.Tx, shard repository.OutboxShard, limit int) ([]models.BalanceEvent, error) {
	const op = "repository.Outbox.FetchUnpublishedTx"
	if shard.Count < 1 {
		shard = repository.OutboxShard{Index: 0, Count: 1}
	}
	rows, err := tx.Query(ctx, repository.FetchUnpublishedBalanceEventsQuery, limit, shard.Count, shard.Index)
	if err != nil {
		return nil, mapError(op, err, nil)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.BalanceEvent, error) {
		var e models.BalanceEvent
		err := row.Scan(&e.ID, &e.WalletID, &e.Type, &e.Amount, &e.Balance, &e.PaymentRef, &e.CreatedAt)
		return e, err
	})
	if err != nil {
		return nil, mapError(op, err, nil)
	}
	return events, nil
}

func (r *OutboxRepository) MarkPublishedTx(ctx context.Context, tx pgx.Tx, ids []int64) error {
	const op = "repository.Outbox.MarkPublishedTx"
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, repository.MarkBalanceEventsPublishedQuery, ids)
	return mapError(op, err, nil)
}
