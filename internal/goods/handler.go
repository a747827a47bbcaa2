package goods

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nomadexpress/backoffice/internal/platform/httpx"
)

// Store abstracts the repository for handler tests.
type Store interface {
	GetGood(ctx context.Context, id int64) (*Good, error)
	ListByMerchant(ctx context.Context, merchantID int64) ([]Good, error)
}

// Handler serves goods endpoints.
type Handler struct {
	logger *slog.Logger
	store  Store
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, store Store) *Handler {
	return &Handler{logger: logger, store: store}
}

// MountRoutes registers goods routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	merchantID, err := strconv.ParseInt(r.URL.Query().Get("merchant_id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "merchant_id is required")
		return
	}
	goods, err := h.store.ListByMerchant(r.Context(), merchantID)
	if err != nil {
		h.logger.Error("list goods", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, goods)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid good id")
		return
	}
	good, err := h.store.GetGood(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, good)
}
