package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nomadexpress/backoffice/internal/platform/httpx"
)

// Handler serves reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers reporting routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/report", h.daily)
	r.Get("/status-summary", h.statusSummary)
	r.Get("/driver-status-counts", h.driverCreatedCounts)
	r.Get("/counts", h.merchantCounts)
	r.Get("/payroll", h.payroll)
	r.Get("/payroll/export", h.payrollExport)
}

func optionalDriverID(r *http.Request) (*int64, error) {
	raw := r.URL.Query().Get("driver_id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid driver_id")
	}
	return &id, nil
}

func dateRange(r *http.Request) (string, string, bool) {
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")
	return start, end, start != "" && end != ""
}

func (h *Handler) daily(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, ok := dateRange(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}
	driverID, err := optionalDriverID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := h.service.Daily(r.Context(), driverID, startDate, endDate)
	if err != nil {
		h.logger.Error("daily report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, rows)
}

func (h *Handler) statusSummary(w http.ResponseWriter, r *http.Request) {
	driverID, err := strconv.ParseInt(r.URL.Query().Get("driver_id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "driver_id is required")
		return
	}
	counts, err := h.service.DriverStatusSummary(r.Context(), driverID)
	if err != nil {
		h.logger.Error("status summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, counts)
}

func (h *Handler) driverCreatedCounts(w http.ResponseWriter, r *http.Request) {
	driverID, err := strconv.ParseInt(r.URL.Query().Get("driver_id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "driver_id is required")
		return
	}
	counts, err := h.service.DriverCreatedCounts(r.Context(), driverID)
	if err != nil {
		h.logger.Error("driver created counts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, counts)
}

func (h *Handler) merchantCounts(w http.ResponseWriter, r *http.Request) {
	merchantID, err := strconv.ParseInt(r.URL.Query().Get("merchant_id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "merchant_id is required")
		return
	}
	counts, err := h.service.MerchantCounts(r.Context(), merchantID)
	if err != nil {
		h.logger.Error("merchant counts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, counts)
}

func (h *Handler) payroll(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, ok := dateRange(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}
	driverID, err := optionalDriverID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := h.service.Payroll(r.Context(), driverID, startDate, endDate)
	if err != nil {
		h.logger.Error("payroll report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, rows)
}

func (h *Handler) payrollExport(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, ok := dateRange(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}
	driverID, err := optionalDriverID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := h.service.PayrollCSV(r.Context(), driverID, startDate, endDate)
	if err != nil {
		h.logger.Error("payroll export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	filename := fmt.Sprintf("payroll_%s_%s.csv", startDate, endDate)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
