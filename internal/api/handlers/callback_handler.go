package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"wallet_ledger/internal/api/middlew"
	"wallet_ledger/internal/custom_err"
	"wallet_ledger/internal/models"
	"wallet_ledger/internal/service"
	"wallet_ledger/pkg/response"
)

const (
	callbackApplied        = "applied"
	callbackAlreadyApplied = "already_applied"
)

type CallbackResponse struct {
	Status   string `json:"status"`
	WalletID string `json:"wallet_id,omitempty"`
	Balance  *int64 `json:"balance,omitempty"`
}

// CallbackHandler принимает вебхуки платежного шлюза.
type CallbackHandler struct {
	service service.Reconciler
}

func NewCallbackHandler(service service.Reconciler) *CallbackHandler {
	return &CallbackHandler{service: service}
}

func (h *CallbackHandler) Topup(w http.ResponseWriter, r *http.Request) {
	const op = "handler.Topup"
	log := middlew.GetLogger(r.Context())

	defer r.Body.Close()

	var cb models.TopupCallback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		log.Warn("ошибка декодирования JSON", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}

	result, err := h.service.ReconcileTopup(r.Context(), cb)
	if err != nil {
		if errors.Is(err, custom_err.ErrDuplicateRequest) {
			log.Info("повторный колбэк пополнения", slog.String("op", op), slog.String("external_id", cb.ExternalID))
			response.WriteJSONSuccess(w, log, http.StatusOK, CallbackResponse{Status: callbackAlreadyApplied})
			return
		}
		writeServiceError(w, log, op, err)
		return
	}

	response.WriteJSONSuccess(w, log, http.StatusOK, CallbackResponse{
		Status:   callbackApplied,
		WalletID: result.WalletID,
		Balance:  &result.Balance,
	})
}

func (h *CallbackHandler) Disbursement(w http.ResponseWriter, r *http.Request) {
	const op = "handler.Disbursement"
	log := middlew.GetLogger(r.Context())

	defer r.Body.Close()

	var cb models.DisbursementCallback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		log.Warn("ошибка декодирования JSON", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}

	result, err := h.service.ReconcileWithdrawal(r.Context(), cb)
	if err != nil {
		writeServiceError(w, log, op, err)
		return
	}

	response.WriteJSONSuccess(w, log, http.StatusOK, CallbackResponse{
		Status:   callbackApplied,
		WalletID: result.WalletID,
		Balance:  &result.Balance,
	})
}
