package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"wallet_ledger/internal/api/middlew"
	"wallet_ledger/internal/models"
	"wallet_ledger/internal/service"
	"wallet_ledger/pkg/response"

	"github.com/go-chi/chi/v5"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

type WalletHandler struct {
	service service.WalletServicer
}

func NewWalletHandler(service service.WalletServicer) *WalletHandler {
	return &WalletHandler{
		service: service,
	}
}

func (h *WalletHandler) GetWalletByID(w http.ResponseWriter, r *http.Request) {
	const op = "handler.GetWalletByID"
	log := middlew.GetLogger(r.Context())

	id := chi.URLParam(r, "walletID")
	wallet, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, log, op, err)
		return
	}

	response.WriteJSONSuccess(w, log, http.StatusOK, wallet)
}

func (h *WalletHandler) GetWalletByUserID(w http.ResponseWriter, r *http.Request) {
	const op = "handler.GetWalletByUserID"
	log := middlew.GetLogger(r.Context())

	wallet, err := h.service.FindByUserID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, log, op, err)
		return
	}

	response.WriteJSONSuccess(w, log, http.StatusOK, wallet)
}

func (h *WalletHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	const op = "handler.ListWallets"
	log := middlew.GetLogger(r.Context())

	page, limit, ok := pagination(w, r, log, op)
	if !ok {
		return
	}

	result, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		writeServiceError(w, log, op, err)
		return
	}

	response.WriteJSONSuccess(w, log, http.StatusOK, result)
}

func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	const op = "handler.ListTransactions"
	log := middlew.GetLogger(r.Context())

	page, limit, ok := pagination(w, r, log, op)
	if !ok {
		return
	}

	result, err := h.service.ListTransactions(r.Context(), chi.URLParam(r, "walletID"), page, limit)
	if err != nil {
		writeServiceError(w, log, op, err)
		return
	}

	response.WriteJSONSuccess(w, log, http.StatusOK, result)
}

func (h *WalletHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	const op = "handler.RequestWithdrawal"
	log := middlew.GetLogger(r.Context())

	defer r.Body.Close()

	var req models.WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("ошибка декодирования JSON", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}
	req.WalletID = chi.URLParam(r, "walletID")

	receipt, err := h.service.RequestWithdrawal(r.Context(), req)
	if err != nil {
		writeServiceError(w, log, op, err)
		return
	}

	response.WriteJSONSuccess(w, log, http.StatusCreated, receipt)
}

func (h *WalletHandler) CreateTopupIntent(w http.ResponseWriter, r *http.Request) {
	const op = "handler.CreateTopupIntent"
	log := middlew.GetLogger(r.Context())

	defer r.Body.Close()

	var req models.TopupIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("ошибка декодирования JSON", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}
	req.WalletID = chi.URLParam(r, "walletID")

	intent, err := h.service.CreateTopupIntent(r.Context(), req)
	if err != nil {
		writeServiceError(w, log, op, err)
		return
	}

	response.WriteJSONSuccess(w, log, http.StatusCreated, intent)
}

func (h *WalletHandler) DeleteWallet(w http.ResponseWriter, r *http.Request) {
	const op = "handler.DeleteWallet"
	log := middlew.GetLogger(r.Context())

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "walletID")); err != nil {
		writeServiceError(w, log, op, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pagination читает page и limit; границы проверяет сервис.
func pagination(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string) (int, int, bool) {
	page, err := queryInt(r, "page", defaultPage)
	if err != nil {
		log.Warn("невалидный page", slog.String("op", op), slog.String("page", r.URL.Query().Get("page")))
		response.WriteJSONError(w, log, http.StatusBadRequest, "invalid_request", "page must be an integer")
		return 0, 0, false
	}
	limit, err := queryInt(r, "limit", defaultLimit)
	if err != nil {
		log.Warn("невалидный limit", slog.String("op", op), slog.String("limit", r.URL.Query().Get("limit")))
		response.WriteJSONError(w, log, http.StatusBadRequest, "invalid_request", "limit must be an integer")
		return 0, 0, false
	}
	return page, limit, true
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
