package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The civil-day boundary for every aggregate is UTC+8 regardless of the
// server's locale; bucketing happens in SQL so grouping and filtering agree.
const civilZone = "Asia/Ulaanbaatar"

// Repository provides PostgreSQL backed aggregation queries. All queries are
// parameterized; caller-supplied ids never reach the query text.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreatedPerDay counts deliveries created per civil day in [start, end),
// optionally restricted to one driver.
func (r *Repository) CreatedPerDay(ctx context.Context, driverID *int64, start, end time.Time) ([]createdBucket, error) {
	const query = `
		SELECT to_char(created_at AT TIME ZONE $1, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM deliveries
		WHERE created_at >= $2 AND created_at < $3
		  AND ($4::bigint IS NULL OR driver_id = $4)
		GROUP BY day
	`
	rows, err := r.pool.Query(ctx, query, civilZone, start, end, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []createdBucket
	for rows.Next() {
		var b createdBucket
		if err := rows.Scan(&b.Date, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// DeliveredPerDay aggregates delivered deliveries per civil day of their
// delivered_at timestamp in [start, end), optionally restricted to one driver.
func (r *Repository) DeliveredPerDay(ctx context.Context, driverID *int64, start, end time.Time) ([]deliveredBucket, error) {
	const query = `
		SELECT to_char(delivered_at AT TIME ZONE $1, 'YYYY-MM-DD') AS day,
		       COUNT(*),
		       COALESCE(SUM(price), 0)
		FROM deliveries
		WHERE status = $2
		  AND delivered_at >= $3 AND delivered_at < $4
		  AND ($5::bigint IS NULL OR driver_id = $5)
		GROUP BY day
	`
	rows, err := r.pool.Query(ctx, query, civilZone, deliveredStatus, start, end, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []deliveredBucket
	for rows.Next() {
		var b deliveredBucket
		if err := rows.Scan(&b.Date, &b.Count, &b.TotalPrice); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// DriverStatusCounts counts a driver's deliveries per status, bucketing the
// delivered status by delivered_at and every other status by updated_at
// within [start, end).
func (r *Repository) DriverStatusCounts(ctx context.Context, driverID int64, start, end time.Time) (map[int]int, error) {
	const activeQuery = `
		SELECT status, COUNT(*)
		FROM deliveries
		WHERE driver_id = $1
		  AND status <> $2
		  AND updated_at >= $3 AND updated_at < $4
		GROUP BY status
	`
	rows, err := r.pool.Query(ctx, activeQuery, driverID, deliveredStatus, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var status, count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const deliveredQuery = `
		SELECT COUNT(*)
		FROM deliveries
		WHERE driver_id = $1
		  AND status = $2
		  AND delivered_at >= $3 AND delivered_at < $4
	`
	var delivered int
	if err := r.pool.QueryRow(ctx, deliveredQuery, driverID, deliveredStatus, start, end).Scan(&delivered); err != nil {
		return nil, err
	}
	counts[deliveredStatus] = delivered

	return counts, nil
}

// DriverCreatedCounts counts a driver's deliveries per status by creation
// time within [start, end). Unlike DriverStatusCounts, every status buckets
// by created_at here.
func (r *Repository) DriverCreatedCounts(ctx context.Context, driverID int64, start, end time.Time) (map[int]int, error) {
	const query = `
		SELECT status, COUNT(*)
		FROM deliveries
		WHERE driver_id = $1
		  AND created_at >= $2 AND created_at < $3
		GROUP BY status
	`
	rows, err := r.pool.Query(ctx, query, driverID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var status, count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// MerchantStatusCounts counts a merchant's deliveries per status by creation
// time within [start, end).
func (r *Repository) MerchantStatusCounts(ctx context.Context, merchantID int64, start, end time.Time) (map[int]int, error) {
	const query = `
		SELECT status, COUNT(*)
		FROM deliveries
		WHERE merchant_id = $1
		  AND created_at >= $2 AND created_at < $3
		GROUP BY status
	`
	rows, err := r.pool.Query(ctx, query, merchantID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var status, count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// DeliveredByDriver aggregates delivered deliveries per driver username in
// [start, end). Rows without an assigned driver fall into the sentinel name.
func (r *Repository) DeliveredByDriver(ctx context.Context, driverID *int64, start, end time.Time) ([]driverBucket, error) {
	const query = `
		SELECT COALESCE(u.username, $1) AS driver_name,
		       COUNT(*),
		       COALESCE(SUM(d.price), 0)
		FROM deliveries d
		LEFT JOIN users u ON u.id = d.driver_id
		WHERE d.status = $2
		  AND d.delivered_at >= $3 AND d.delivered_at < $4
		  AND ($5::bigint IS NULL OR d.driver_id = $5)
		GROUP BY driver_name
		ORDER BY driver_name
	`
	rows, err := r.pool.Query(ctx, query, NoDriverName, deliveredStatus, start, end, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []driverBucket
	for rows.Next() {
		var b driverBucket
		if err := rows.Scan(&b.DriverName, &b.Count, &b.TotalPrice); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}
