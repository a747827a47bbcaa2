package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nomadexpress/backoffice/internal/platform/httpx"
)

// Handler serves authentication and roster endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountAuthRoutes registers the login endpoint.
func (h *Handler) MountAuthRoutes(r chi.Router) {
	r.Post("/login", h.login)
}

// MountRoutes registers user roster endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/drivers", h.drivers)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "username and password are required")
		return
	}

	result, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.Fail(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, result)
}

func (h *Handler) drivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.service.Drivers(r.Context())
	if err != nil {
		h.logger.Error("list drivers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, drivers)
}

// RequireAuth guards routes behind a valid bearer token.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			httpx.Fail(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if _, err := h.service.VerifyToken(token); err != nil {
			httpx.Fail(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
