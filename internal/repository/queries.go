package repository

const (
	SetLockTimeoutQuery = `SELECT set_config('lock_timeout', $1, true)`

	CreateWalletQuery = `
        INSERT INTO wallets (id, user_id, balance, created_at, updated_at)
        VALUES ($1, $2, 0, NOW(), NOW())
        RETURNING id, user_id, balance, created_at, updated_at
    `

	GetWalletByIDQuery = `
        SELECT id, user_id, balance, created_at, updated_at
        FROM wallets
        WHERE id = $1
    `

	GetWalletByUserIDQuery = `
        SELECT id, user_id, balance, created_at, updated_at
        FROM wallets
        WHERE user_id = $1
    `

	GetWalletForUpdateQuery = `
    SELECT id, user_id, balance, created_at, updated_at
    FROM wallets
    WHERE id = $1
    FOR UPDATE
	`

	UpdateWalletBalanceQuery = `
    UPDATE wallets
    SET
        balance = $1,
        updated_at = NOW()
    WHERE id = $2
	`

	ListWalletsQuery = `
        SELECT id, user_id, balance, created_at, updated_at
        FROM wallets
        ORDER BY id
        LIMIT $1 OFFSET $2
    `

	CountWalletsQuery = `SELECT COUNT(*) FROM wallets`

	DeleteWalletQuery = `DELETE FROM wallets WHERE id = $1`

	CreateWalletTransactionQuery = `
		INSERT INTO wallet_transactions (id, wallet_id, amount, type, payment_ref, trx_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`

	GetWalletTransactionByPaymentRefQuery = `
	SELECT id, wallet_id, amount, type, payment_ref, trx_id, created_at
	FROM wallet_transactions
	WHERE payment_ref = $1
	FOR UPDATE
	`

	CheckWalletTransactionExistsQuery = `
	SELECT
	EXISTS(SELECT 1 FROM wallet_transactions
	WHERE payment_ref = $1)
	`

	ListWalletTransactionsQuery = `
        SELECT id, wallet_id, amount, type, payment_ref, trx_id, created_at
        FROM wallet_transactions
        WHERE wallet_id = $1
        ORDER BY created_at DESC, id
        LIMIT $2 OFFSET $3
    `

	CountWalletTransactionsQuery = `SELECT COUNT(*) FROM wallet_transactions WHERE wallet_id = $1`

	CreateTopupQuery = `
		INSERT INTO topups (id, user_id, amount, reference, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	CheckTopupReferenceExistsQuery = `
	SELECT
	EXISTS(SELECT 1 FROM topups
	WHERE reference = $1)
	`

	CreateWithdrawalQuery = `
		INSERT INTO withdrawals (id, wallet_id, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	GetWithdrawalForUpdateQuery = `
    SELECT id, wallet_id, amount, status, created_at, updated_at
    FROM withdrawals
    WHERE id = $1
    FOR UPDATE
	`

	UpdateWithdrawalStatusQuery = `
    UPDATE withdrawals
    SET
        status = $1,
        updated_at = NOW()
    WHERE id = $2
	`

	// SumPendingWithdrawalsQuery считает средства, уже обещанные шлюзу.
	SumPendingWithdrawalsQuery = `
    SELECT COALESCE(SUM(amount), 0)
    FROM withdrawals
    WHERE wallet_id = $1 AND status = $2
	`

	CreatePaymentIntentQuery = `
		INSERT INTO payment_intents (external_id, wallet_id, amount, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`

	GetPaymentIntentQuery = `
        SELECT external_id, wallet_id, amount, created_at
        FROM payment_intents
        WHERE external_id = $1
    `

	CreateUserQuery = `
		INSERT INTO users (id, name, email, phone_number, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	CheckUserContactsTakenQuery = `
	SELECT
	EXISTS(SELECT 1 FROM users WHERE email = $1),
	EXISTS(SELECT 1 FROM users WHERE phone_number = $2)
	`

	AppendBalanceEventQuery = `
		INSERT INTO balance_events (wallet_id, type, amount, balance, payment_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	// ClaimOutboxShardQuery берет транзакционную advisory-блокировку шарда:
	// один шард публикует не больше одного воркера во всех экземплярах.
	ClaimOutboxShardQuery = `
	SELECT pg_try_advisory_xact_lock($1, $2)
	`

	FetchUnpublishedBalanceEventsQuery = `
    SELECT id, wallet_id, type, amount, balance, payment_ref, created_at
    FROM balance_events
    WHERE published_at IS NULL
      AND (hashtext(wallet_id) & 2147483647) % $2 = $3
    ORDER BY id
    LIMIT $1
    FOR UPDATE
	`

	MarkBalanceEventsPublishedQuery = `
    UPDATE balance_events
    SET published_at = NOW()
    WHERE id = ANY($1)
	`
)
