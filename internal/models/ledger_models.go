package models

import "time"

type TransactionType string

const (
	TopupTransaction      TransactionType = "TOPUP"
	WithdrawalTransaction TransactionType = "WITHDRAWAL"
)

func (tt TransactionType) IsValid() bool {
	switch tt {
	case TopupTransaction, WithdrawalTransaction:
		return true
	}
	return false
}

const (
	TopupStatusCompleted = "COMPLETED"

	WithdrawalStatusPending   = "PENDING"
	WithdrawalStatusCompleted = "COMPLETED"
	WithdrawalStatusFailed    = "FAILED"
)

// IsTerminalWithdrawalStatus: после этих статусов шлюз больше не меняет вывод.
func IsTerminalWithdrawalStatus(status string) bool {
	return status == WithdrawalStatusCompleted || status == WithdrawalStatusFailed
}

// WalletTransaction: строка журнала, одна на каждое подтвержденное событие.
type WalletTransaction struct {
	ID         string          `json:"id" db:"id"`
	WalletID   string          `json:"wallet_id" db:"wallet_id"`
	Amount     int64           `json:"amount" db:"amount"`
	Type       TransactionType `json:"type" db:"type"`
	PaymentRef string          `json:"payment_ref" db:"payment_ref"`
	TrxID      string          `json:"trx_id" db:"trx_id"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

type WalletTransactionPage struct {
	Transactions []WalletTransaction `json:"transactions"`
	Total        int64               `json:"total"`
	Page         int                 `json:"page"`
	Limit        int                 `json:"limit"`
	TotalPages   int                 `json:"totalPages"`
}

type Topup struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Amount    int64     `json:"amount" db:"amount"`
	Reference string    `json:"reference" db:"reference"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Withdrawal struct {
	ID        string    `json:"id" db:"id"`
	WalletID  string    `json:"wallet_id" db:"wallet_id"`
	Amount    int64     `json:"amount" db:"amount"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PaymentIntent связывает external_id, выданный шлюзу, с кошельком.
type PaymentIntent struct {
	ExternalID string    `json:"external_id" db:"external_id"`
	WalletID   string    `json:"wallet_id" db:"wallet_id"`
	Amount     int64     `json:"amount" db:"amount"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type BalanceEvent struct {
	ID         int64           `json:"id" db:"id"`
	WalletID   string          `json:"wallet_id" db:"wallet_id"`
	Type       TransactionType `json:"type" db:"type"`
	Amount     int64           `json:"amount" db:"amount"`
	Balance    int64           `json:"balance" db:"balance"`
	PaymentRef string          `json:"payment_ref" db:"payment_ref"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// WithdrawalReceipt возвращается клиенту при создании вывода: ExternalID
// передается шлюзу и затем приходит обратно в колбэке.
type WithdrawalReceipt struct {
	Withdrawal Withdrawal `json:"withdrawal"`
	ExternalID string     `json:"external_id"`
	Balance    int64      `json:"balance"`
}
