// Package reports aggregates delivery activity into daily, status-count and
// payroll reports.
package reports

import "github.com/nomadexpress/backoffice/internal/deliveries"

const deliveredStatus = deliveries.StatusDelivered

// Per-delivery rates. The driver payout credited in the daily report and the
// payroll salary rate are historically different numbers and must stay
// separate constants.
const (
	BackendPayoutRate   = 4000
	DashboardSalaryRate = 7000
)

// NoDriverName labels delivered rows that were never assigned a driver.
const NoDriverName = "No Driver"

// DailyRow is one civil-day bucket of the financial report. The delivered
// aggregates are serialized as strings with "0" defaults, matching the
// dashboard's consumption format.
type DailyRow struct {
	Date                string `json:"date"`
	TotalDeliveries     int    `json:"total_deliveries"`
	DeliveredCount      string `json:"delivered_count"`
	DeliveredTotalPrice string `json:"delivered_total_price"`
	ForDriver           string `json:"for_driver"`
	DriverMargin        string `json:"driver_margin"`
}

// StatusCount pairs one status with its delivery count for the day.
type StatusCount struct {
	StatusID int    `json:"id"`
	Label    string `json:"status"`
	Color    string `json:"color"`
	Count    int    `json:"count"`
}

// PayrollRow is one driver's delivered totals over a date range.
type PayrollRow struct {
	DriverName string  `json:"driver_name"`
	Count      int     `json:"count"`
	TotalPrice float64 `json:"total_price"`
	Salary     float64 `json:"salary"`
	Difference float64 `json:"difference"`
}

// createdBucket is the per-day creation count from the store.
type createdBucket struct {
	Date  string
	Count int
}

// deliveredBucket is the per-day delivered aggregate from the store.
type deliveredBucket struct {
	Date       string
	Count      int
	TotalPrice float64
}

// driverBucket is one driver's delivered aggregate from the store.
type driverBucket struct {
	DriverName string
	Count      int
	TotalPrice float64
}
