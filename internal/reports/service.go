package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nomadexpress/backoffice/internal/platform/cache"
	"github.com/nomadexpress/backoffice/internal/platform/httpx"
	"github.com/nomadexpress/backoffice/internal/shared"
	"github.com/nomadexpress/backoffice/internal/status"
)

// Store abstracts the aggregation repository for service tests.
type Store interface {
	CreatedPerDay(ctx context.Context, driverID *int64, start, end time.Time) ([]createdBucket, error)
	DeliveredPerDay(ctx context.Context, driverID *int64, start, end time.Time) ([]deliveredBucket, error)
	DriverStatusCounts(ctx context.Context, driverID int64, start, end time.Time) (map[int]int, error)
	DriverCreatedCounts(ctx context.Context, driverID int64, start, end time.Time) (map[int]int, error)
	MerchantStatusCounts(ctx context.Context, merchantID int64, start, end time.Time) (map[int]int, error)
	DeliveredByDriver(ctx context.Context, driverID *int64, start, end time.Time) ([]driverBucket, error)
}

// StatusLister supplies the full status enumeration for zero-filling.
type StatusLister interface {
	List(ctx context.Context) ([]status.Status, error)
}

// Service implements the reporting aggregator.
type Service struct {
	logger   *slog.Logger
	store    Store
	statuses StatusLister
	cache    *cache.JSONCache
	now      func() time.Time
}

// NewService constructs a Service. cache may be nil to disable caching.
func NewService(logger *slog.Logger, store Store, statuses StatusLister, jsonCache *cache.JSONCache) *Service {
	return &Service{
		logger:   logger,
		store:    store,
		statuses: statuses,
		cache:    jsonCache,
		now:      time.Now,
	}
}

func dailyCacheKey(startDate, endDate string) string {
	return fmt.Sprintf("reports:daily:%s:%s", startDate, endDate)
}

// Daily builds the per-day financial report over an inclusive date range.
// The unfiltered variant is cached; driver-scoped requests always hit the
// database.
func (s *Service) Daily(ctx context.Context, driverID *int64, startDate, endDate string) ([]DailyRow, error) {
	start, end, err := shared.RangeBounds(startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	if driverID == nil {
		var rows []DailyRow
		err := s.cache.FetchJSON(ctx, dailyCacheKey(startDate, endDate), &rows, func(ctx context.Context) (any, error) {
			return s.computeDaily(ctx, nil, start, end)
		})
		if err != nil {
			return nil, err
		}
		return rows, nil
	}
	return s.computeDaily(ctx, driverID, start, end)
}

func (s *Service) computeDaily(ctx context.Context, driverID *int64, start, end time.Time) ([]DailyRow, error) {
	var (
		created   []createdBucket
		delivered []deliveredBucket
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		created, err = s.store.CreatedPerDay(gctx, driverID, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		delivered, err = s.store.DeliveredPerDay(gctx, driverID, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("aggregate daily report: %w", err)
	}

	deliveredByDate := make(map[string]deliveredBucket, len(delivered))
	for _, b := range delivered {
		deliveredByDate[b.Date] = b
	}

	rows := make(map[string]DailyRow)
	for _, b := range created {
		rows[b.Date] = DailyRow{
			Date:                b.Date,
			TotalDeliveries:     b.Count,
			DeliveredCount:      "0",
			DeliveredTotalPrice: "0",
			ForDriver:           "0",
			DriverMargin:        "0",
		}
	}
	for date, b := range deliveredByDate {
		row, ok := rows[date]
		if !ok {
			row = DailyRow{
				Date:                date,
				DeliveredCount:      "0",
				DeliveredTotalPrice: "0",
				ForDriver:           "0",
				DriverMargin:        "0",
			}
		}
		payout := float64(b.Count * BackendPayoutRate)
		row.DeliveredCount = strconv.Itoa(b.Count)
		row.DeliveredTotalPrice = formatAmount(b.TotalPrice)
		row.ForDriver = formatAmount(payout)
		row.DriverMargin = formatAmount(b.TotalPrice - payout)
		rows[date] = row
	}

	result := make([]DailyRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date > result[j].Date })
	return result, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// DriverStatusSummary returns today's per-status counts for a driver. The
// result always covers the full status enumeration in id order; the
// delivered status is bucketed by delivered_at, everything else by
// updated_at.
func (s *Service) DriverStatusSummary(ctx context.Context, driverID int64) ([]StatusCount, error) {
	start, end := shared.DayBounds(s.now())
	counts, err := s.store.DriverStatusCounts(ctx, driverID, start, end)
	if err != nil {
		return nil, fmt.Errorf("driver status counts: %w", err)
	}
	return s.zeroFill(ctx, counts)
}

// DriverCreatedCounts returns today's per-status counts for a driver bucketed
// by creation time, zero-filled over the full status enumeration.
func (s *Service) DriverCreatedCounts(ctx context.Context, driverID int64) ([]StatusCount, error) {
	start, end := shared.DayBounds(s.now())
	counts, err := s.store.DriverCreatedCounts(ctx, driverID, start, end)
	if err != nil {
		return nil, fmt.Errorf("driver created counts: %w", err)
	}
	return s.zeroFill(ctx, counts)
}

// MerchantCounts returns today's per-status counts for a merchant, bucketed
// by creation time, zero-filled over the full status enumeration.
func (s *Service) MerchantCounts(ctx context.Context, merchantID int64) ([]StatusCount, error) {
	start, end := shared.DayBounds(s.now())
	counts, err := s.store.MerchantStatusCounts(ctx, merchantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("merchant status counts: %w", err)
	}
	return s.zeroFill(ctx, counts)
}

func (s *Service) zeroFill(ctx context.Context, counts map[int]int) ([]StatusCount, error) {
	statuses, err := s.statuses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	result := make([]StatusCount, 0, len(statuses))
	for _, st := range statuses {
		result = append(result, StatusCount{
			StatusID: st.ID,
			Label:    st.Label,
			Color:    st.Color,
			Count:    counts[st.ID],
		})
	}
	return result, nil
}

// Payroll aggregates delivered deliveries per driver over an inclusive date
// range, computing salary and the price/salary difference.
func (s *Service) Payroll(ctx context.Context, driverID *int64, startDate, endDate string) ([]PayrollRow, error) {
	start, end, err := shared.RangeBounds(startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	buckets, err := s.store.DeliveredByDriver(ctx, driverID, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregate payroll: %w", err)
	}

	rows := make([]PayrollRow, 0, len(buckets))
	for _, b := range buckets {
		salary := float64(b.Count * DashboardSalaryRate)
		rows = append(rows, PayrollRow{
			DriverName: b.DriverName,
			Count:      b.Count,
			TotalPrice: b.TotalPrice,
			Salary:     salary,
			Difference: b.TotalPrice - salary,
		})
	}
	return rows, nil
}

// PayrollCSV renders the payroll report as CSV with grouped amounts.
func (s *Service) PayrollCSV(ctx context.Context, driverID *int64, startDate, endDate string) ([]byte, error) {
	rows, err := s.Payroll(ctx, driverID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	printer := message.NewPrinter(language.English)
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"driver", "delivered", "total_price", "salary", "difference"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			row.DriverName,
			printer.Sprintf("%d", row.Count),
			printer.Sprintf("%.2f", row.TotalPrice),
			printer.Sprintf("%.2f", row.Salary),
			printer.Sprintf("%.2f", row.Difference),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WarmDaily recomputes and caches the unfiltered daily report for the
// trailing days civil days.
func (s *Service) WarmDaily(ctx context.Context, days int) error {
	if days <= 0 {
		days = 7
	}
	start, end := shared.RollingWindow(s.now(), days)
	startDate := shared.CivilDate(start)
	endDate := shared.CivilDate(end.AddDate(0, 0, -1))
	key := dailyCacheKey(startDate, endDate)

	if err := s.cache.Invalidate(ctx, key); err != nil {
		return fmt.Errorf("invalidate daily cache: %w", err)
	}
	var rows []DailyRow
	err := s.cache.FetchJSON(ctx, key, &rows, func(ctx context.Context) (any, error) {
		return s.computeDaily(ctx, nil, start, end)
	})
	if err != nil {
		return fmt.Errorf("warm daily cache: %w", err)
	}
	s.logger.Info("daily report cache warmed",
		slog.String("start", startDate), slog.String("end", endDate), slog.Int("rows", len(rows)))
	return nil
}
