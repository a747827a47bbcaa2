package deliveries

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nomadexpress/backoffice/internal/platform/httpx"
)

// Handler serves delivery endpoints.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	validate       *validator.Validate
	maxUploadBytes int64
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, maxUploadBytes int64) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		maxUploadBytes: maxUploadBytes,
	}
}

// MountRoutes registers delivery routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Get("/by-id/{deliveryId}", h.getByTrackingCode)
	r.Put("/{id}/complete", h.complete)
	r.Get("/driver/{id}/status/{status}", h.driverStatusList)
	r.Get("/driver/{id}/done", h.driverDoneToday)
	r.Get("/merchant/{id}", h.merchantList)
	r.Get("/merchant/{id}/status/{status}", h.merchantStatusList)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "merchant_id and at least one item are required")
		return
	}
	delivery, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create delivery", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, delivery)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid delivery id")
		return
	}
	delivery, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, delivery)
}

func (h *Handler) getByTrackingCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "deliveryId")
	delivery, err := h.service.GetByTrackingCode(r.Context(), code)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, delivery)
}

// complete accepts a multipart form with a status field, an optional
// driver_comment and an optional image file.
func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid delivery id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	statusRaw := r.FormValue("status")
	if statusRaw == "" {
		httpx.Fail(w, http.StatusBadRequest, "status is required")
		return
	}
	status, err := strconv.Atoi(statusRaw)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "status must be numeric")
		return
	}

	req := CompleteRequest{
		Status:        status,
		DriverComment: r.FormValue("driver_comment"),
	}

	if file, header, err := r.FormFile("image"); err == nil {
		data, readErr := io.ReadAll(file)
		_ = file.Close()
		if readErr != nil {
			httpx.Fail(w, http.StatusBadRequest, "unreadable image upload")
			return
		}
		req.Image = &ImageAttachment{Filename: header.Filename, Data: data}
	}

	result, err := h.service.Complete(r.Context(), id, req)
	if err != nil {
		h.logger.Error("complete delivery", slog.Int64("delivery_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, result)
}

func (h *Handler) driverStatusList(w http.ResponseWriter, r *http.Request) {
	driverID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid driver id")
		return
	}
	status, err := strconv.Atoi(chi.URLParam(r, "status"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "status must be numeric")
		return
	}
	deliveries, err := h.service.DriverStatusList(r.Context(), driverID, status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, deliveries)
}

func (h *Handler) driverDoneToday(w http.ResponseWriter, r *http.Request) {
	driverID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid driver id")
		return
	}
	deliveries, err := h.service.DriverDoneToday(r.Context(), driverID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, deliveries)
}

func (h *Handler) merchantList(w http.ResponseWriter, r *http.Request) {
	merchantID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid merchant id")
		return
	}
	deliveries, err := h.service.MerchantList(r.Context(), merchantID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, deliveries)
}

func (h *Handler) merchantStatusList(w http.ResponseWriter, r *http.Request) {
	merchantID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid merchant id")
		return
	}
	status, err := strconv.Atoi(chi.URLParam(r, "status"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "status must be numeric")
		return
	}
	deliveries, err := h.service.MerchantStatusList(r.Context(), merchantID, status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, deliveries)
}
