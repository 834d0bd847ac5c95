package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"wallet_ledger/internal/api/middlew"
	"wallet_ledger/pkg/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	log := middlew.GetLogger(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		log.Error("база данных недоступна", slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusServiceUnavailable, "unavailable", "Database is unavailable")
		return
	}
	response.WriteJSONSuccess(w, log, http.StatusOK, map[string]string{"status": "ok"})
}
