package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"wallet_ledger/internal/custom_err"
	"wallet_ledger/pkg/response"
)

// writeServiceError переводит ошибку сервиса в HTTP-ответ.
// Повторяемые ошибки отдаются как 503, чтобы шлюз доставил событие снова.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, custom_err.ErrValidation):
		log.Warn("некорректный запрос", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusBadRequest, "invalid_request", "Invalid request payload")
	case errors.Is(err, custom_err.ErrWalletNotFound):
		log.Info("кошелек не найден", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusNotFound, "not_found", "Wallet not found")
	case errors.Is(err, custom_err.ErrTransactionNotFound):
		log.Info("транзакция не найдена", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusNotFound, "not_found", "Transaction not found")
	case errors.Is(err, custom_err.ErrNotFound):
		log.Info("запись не найдена", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusNotFound, "not_found", "Resource not found")
	case errors.Is(err, custom_err.ErrInsufficientFunds):
		log.Warn("недостаточно средств", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusConflict, "insufficient_funds", "Insufficient funds in the wallet")
	case errors.Is(err, custom_err.ErrInvalidStatus):
		log.Warn("недопустимый статус", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusConflict, "invalid_status", "Status transition is not allowed")
	case errors.Is(err, custom_err.ErrConflict):
		log.Info("конфликт", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusConflict, "conflict", "Resource already exists")
	case custom_err.IsRetryable(err):
		log.Warn("временная ошибка", slog.String("op", op), slog.String("error", err.Error()))
		w.Header().Set("Retry-After", "1")
		response.WriteJSONError(w, log, http.StatusServiceUnavailable, "retry_later", "Temporary failure, retry later")
	default:
		log.Error("внутренняя ошибка", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusInternalServerError, "internal_error", "An internal error occurred")
	}
}
