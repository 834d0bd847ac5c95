package custom_err

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("запись не найдена")
	ErrConflict          = errors.New("конфликт уникальности")
	ErrValidation        = errors.New("некорректные данные запроса")
	ErrInternal          = errors.New("внутренняя ошибка хранилища")
	ErrInsufficientFunds = errors.New("недостаточно средств на счете")
	ErrInvalidStatus     = errors.New("недопустимый переход статуса")

	ErrWalletNotFound      = fmt.Errorf("кошелек: %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("транзакция кошелька: %w", ErrNotFound)
	ErrWithdrawalNotFound  = fmt.Errorf("вывод средств: %w", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("пользователь: %w", ErrNotFound)

	// ErrDuplicateRequest: событие шлюза уже применено.
	ErrDuplicateRequest = fmt.Errorf("повторяющийся запрос: %w", ErrConflict)
	ErrLockTimeout      = fmt.Errorf("истекло ожидание блокировки: %w", ErrInternal)
)

// IsRetryable сообщает, имеет ли смысл повторная доставка того же события.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLockTimeout)
}
