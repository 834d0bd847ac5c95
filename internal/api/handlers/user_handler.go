package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"wallet_ledger/internal/api/middlew"
	"wallet_ledger/internal/models"
	"wallet_ledger/internal/service"
	"wallet_ledger/pkg/response"
)

type UserHandler struct {
	service service.UserServicer
}

func NewUserHandler(service service.UserServicer) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	const op = "handler.Register"
	log := middlew.GetLogger(r.Context())

	defer r.Body.Close()

	var req models.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("ошибка декодирования JSON", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}

	registered, err := h.service.RegisterUser(r.Context(), req)
	if err != nil {
		writeServiceError(w, log, op, err)
		return
	}

	response.WriteJSONSuccess(w, log, http.StatusCreated, registered)
}
