package models

// TopupCallback: подтвержденное шлюзом пополнение.
// ExternalID имеет вид <prefix>-<wallet_id>[-...].
type TopupCallback struct {
	ExternalID   string `json:"external_id" validate:"required,max=255"`
	Amount       int64  `json:"amount" validate:"gt=0"`
	GatewayTrxID string `json:"id" validate:"required,max=255"`
	Status       string `json:"status" validate:"required,oneof=PAID SETTLED COMPLETED"`
}

// DisbursementCallback: обновление статуса вывода от шлюза.
type DisbursementCallback struct {
	ExternalID string `json:"external_id" validate:"required,max=255"`
	Amount     int64  `json:"amount" validate:"gt=0"`
	Status     string `json:"status" validate:"required,oneof=PENDING COMPLETED FAILED"`
}

type WithdrawalRequest struct {
	WalletID   string `json:"wallet_id" validate:"required,len=32,hexadecimal"`
	Amount     int64  `json:"amount" validate:"gt=0"`
	ExternalID string `json:"external_id,omitempty" validate:"omitempty,max=255"`
}

type TopupIntentRequest struct {
	WalletID string `json:"wallet_id" validate:"required,len=32,hexadecimal"`
	Amount   int64  `json:"amount" validate:"gt=0"`
}

type RegisterUserRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}
