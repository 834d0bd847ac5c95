// Package cache хранит снимки кошельков в Redis для быстрых чтений.
// Источник истины всегда PostgreSQL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"wallet_ledger/internal/models"
	"wallet_ledger/internal/service"

	"github.com/redis/go-redis/v9"
)

var _ service.WalletCache = (*RedisWalletCache)(nil)

// fillScript пишет снимок, только если поколение ключа совпадает с билетом.
// KEYS[1] значение, KEYS[2] поколение; ARGV: поколение, снимок, ttl в мс.
var fillScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

type RedisWalletCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisWalletCache(client redis.Cmdable, ttl time.Duration) *RedisWalletCache {
	return &RedisWalletCache{client: client, ttl: ttl}
}

// Фигурные скобки держат значение и поколение в одном слоте кластера.
func walletKey(id string) string {
	return fmt.Sprintf("wallet:{%s}", id)
}

func userWalletKey(userID string) string {
	return fmt.Sprintf("user:{%s}:wallet", userID)
}

func generationKey(key string) string {
	return key + ":gen"
}

func (c *RedisWalletCache) GetByID(ctx context.Context, id string) (*models.Wallet, service.CacheTicket, error) {
	return c.get(ctx, walletKey(id))
}

func (c *RedisWalletCache) GetByUserID(ctx context.Context, userID string) (*models.Wallet, service.CacheTicket, error) {
	return c.get(ctx, userWalletKey(userID))
}

// get читает снимок и поколение одной командой MGET.
func (c *RedisWalletCache) get(ctx context.Context, key string) (*models.Wallet, service.CacheTicket, error) {
	const op = "cache.RedisWalletCache.get"

	values, err := c.client.MGet(ctx, key, generationKey(key)).Result()
	if err != nil {
		return nil, service.CacheTicket{}, fmt.Errorf("%s: %w", op, err)
	}

	ticket := service.CacheTicket{Key: key}
	if raw, ok := values[1].(string); ok {
		ticket.Generation, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, service.CacheTicket{}, fmt.Errorf("%s: поколение %s: %w", op, key, err)
		}
	}

	raw, ok := values[0].(string)
	if !ok {
		return nil, ticket, nil
	}
	var wallet models.Wallet
	if err := json.Unmarshal([]byte(raw), &wallet); err != nil {
		return nil, service.CacheTicket{}, fmt.Errorf("%s: поврежденная запись %s: %w", op, key, err)
	}
	return &wallet, ticket, nil
}

// Fill пишет снимок под ключом из билета, если после промаха не было Invalidate.
func (c *RedisWalletCache) Fill(ctx context.Context, ticket service.CacheTicket, wallet *models.Wallet) error {
	const op = "cache.RedisWalletCache.Fill"

	data, err := json.Marshal(wallet)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	keys := []string{ticket.Key, generationKey(ticket.Key)}
	if err := fillScript.Run(ctx, c.client, keys, ticket.Generation, data, c.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate удаляет снимки и сдвигает поколения, чтобы запоздавший Fill
// не вернул в кэш баланс, прочитанный до фиксации.
func (c *RedisWalletCache) Invalidate(ctx context.Context, wallet *models.Wallet) error {
	const op = "cache.RedisWalletCache.Invalidate"

	keys := []string{walletKey(wallet.ID)}
	if wallet.UserID != "" {
		keys = append(keys, userWalletKey(wallet.UserID))
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Del(ctx, key)
			pipe.Incr(ctx, generationKey(key))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
