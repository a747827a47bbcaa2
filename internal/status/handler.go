package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nomadexpress/backoffice/internal/platform/httpx"
)

// Lister abstracts the repository for handler tests.
type Lister interface {
	List(ctx context.Context) ([]Status, error)
}

// Handler serves the status reference endpoints.
type Handler struct {
	logger *slog.Logger
	store  Lister
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, store Lister) *Handler {
	return &Handler{logger: logger, store: store}
}

// MountRoutes registers status routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("list statuses", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, statuses)
}
