package deliveries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nomadexpress/backoffice/internal/goods"
	"github.com/nomadexpress/backoffice/internal/platform/db"
	"github.com/nomadexpress/backoffice/internal/platform/httpx"
	"github.com/nomadexpress/backoffice/internal/shared"
)

const deliveryColumns = `id, delivery_id, driver_id, merchant_id, price, status, report_stage,
	       driver_comment, image, address, phone, created_at, updated_at, delivered_at`

// Repository provides PostgreSQL backed persistence for deliveries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations used by the lifecycle engine.
type TxRepository interface {
	CreateDelivery(ctx context.Context, d Delivery) (int64, error)
	InsertItem(ctx context.Context, item Item) (int64, error)
	UpdateDelivery(ctx context.Context, id int64, updates map[string]any) error
	GetItems(ctx context.Context, deliveryID int64) ([]Item, error)
	IncrementGoodStock(ctx context.Context, goodID int64, qty int) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func scanDelivery(row pgx.Row) (*Delivery, error) {
	var d Delivery
	err := row.Scan(
		&d.ID, &d.DeliveryID, &d.DriverID, &d.MerchantID, &d.Price, &d.Status,
		&d.ReportStage, &d.DriverComment, &d.Image, &d.Address, &d.Phone,
		&d.CreatedAt, &d.UpdatedAt, &d.DeliveredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *Repository) queryDeliveries(ctx context.Context, query string, args ...any) ([]Delivery, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []Delivery
	for rows.Next() {
		var d Delivery
		err := rows.Scan(
			&d.ID, &d.DeliveryID, &d.DriverID, &d.MerchantID, &d.Price, &d.Status,
			&d.ReportStage, &d.DriverComment, &d.Image, &d.Address, &d.Phone,
			&d.CreatedAt, &d.UpdatedAt, &d.DeliveredAt,
		)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

// GetDelivery retrieves a delivery by primary key with its items.
func (r *Repository) GetDelivery(ctx context.Context, id int64) (*Delivery, error) {
	query := fmt.Sprintf(`SELECT %s FROM deliveries WHERE id = $1`, deliveryColumns)
	d, err := scanDelivery(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	items, err := r.getItems(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Items = items
	return d, nil
}

// GetDeliveryByExternalID retrieves a delivery by its tracking code. The
// column is plain text, so a malformed code simply matches nothing.
func (r *Repository) GetDeliveryByExternalID(ctx context.Context, deliveryID string) (*Delivery, error) {
	query := fmt.Sprintf(`SELECT %s FROM deliveries WHERE delivery_id = $1`, deliveryColumns)
	d, err := scanDelivery(r.pool.QueryRow(ctx, query, deliveryID))
	if err != nil {
		return nil, err
	}
	items, err := r.getItems(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	d.Items = items
	return d, nil
}

func (r *Repository) getItems(ctx context.Context, deliveryID int64) ([]Item, error) {
	const query = `
		SELECT id, delivery_id, good_id, quantity
		FROM delivery_items
		WHERE delivery_id = $1
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, deliveryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.DeliveryID, &it.GoodID, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// The window follows creation time: a later status touch never moves a
// delivery into or out of the trailing seven days.
var listByDriverStatusQuery = fmt.Sprintf(`
	SELECT %s
	FROM deliveries
	WHERE driver_id = $1 AND status = $2
	  AND created_at >= $3 AND created_at < $4
	ORDER BY created_at DESC
`, deliveryColumns)

// ListByDriverStatus returns a driver's deliveries in one status created over
// the trailing seven civil days, newest first.
func (r *Repository) ListByDriverStatus(ctx context.Context, driverID int64, status int, now time.Time) ([]Delivery, error) {
	start, end := shared.RollingWindow(now, 7)
	return r.queryDeliveries(ctx, listByDriverStatusQuery, driverID, status, start, end)
}

// ListDoneToday returns a driver's finished deliveries for the current civil
// day. Finished means delivered, returned or declined; the bucket follows
// delivered_at so a delivery finished late at night stays on the day the
// driver closed it.
func (r *Repository) ListDoneToday(ctx context.Context, driverID int64, now time.Time) ([]Delivery, error) {
	start, end := shared.DayBounds(now)
	query := fmt.Sprintf(`
		SELECT %s
		FROM deliveries
		WHERE driver_id = $1
		  AND status IN ($2, $3, $4)
		  AND delivered_at >= $5 AND delivered_at < $6
		ORDER BY delivered_at DESC
	`, deliveryColumns)
	return r.queryDeliveries(ctx, query, driverID, StatusDelivered, StatusReturned, StatusDeclined, start, end)
}

// ListByMerchant returns a merchant's deliveries created in the trailing
// seven days, newest first.
func (r *Repository) ListByMerchant(ctx context.Context, merchantID int64, now time.Time) ([]Delivery, error) {
	start, end := shared.RollingWindow(now, 7)
	query := fmt.Sprintf(`
		SELECT %s
		FROM deliveries
		WHERE merchant_id = $1
		  AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
	`, deliveryColumns)
	return r.queryDeliveries(ctx, query, merchantID, start, end)
}

// ListByMerchantStatus returns a merchant's deliveries in one status created
// on the current civil day.
func (r *Repository) ListByMerchantStatus(ctx context.Context, merchantID int64, status int, now time.Time) ([]Delivery, error) {
	start, end := shared.DayBounds(now)
	query := fmt.Sprintf(`
		SELECT %s
		FROM deliveries
		WHERE merchant_id = $1 AND status = $2
		  AND created_at >= $3 AND created_at < $4
		ORDER BY created_at DESC
	`, deliveryColumns)
	return r.queryDeliveries(ctx, query, merchantID, status, start, end)
}

// ============================================================================
// TRANSACTIONAL OPERATIONS
// ============================================================================

func (t *txRepo) CreateDelivery(ctx context.Context, d Delivery) (int64, error) {
	const query = `
		INSERT INTO deliveries (
			delivery_id, driver_id, merchant_id, price, status, report_stage,
			address, phone
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	var id int64
	err := t.tx.QueryRow(ctx, query,
		d.DeliveryID, d.DriverID, d.MerchantID, d.Price, d.Status, d.ReportStage,
		d.Address, d.Phone,
	).Scan(&id)
	return id, err
}

func (t *txRepo) InsertItem(ctx context.Context, item Item) (int64, error) {
	const query = `
		INSERT INTO delivery_items (delivery_id, good_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id int64
	err := t.tx.QueryRow(ctx, query, item.DeliveryID, item.GoodID, item.Quantity).Scan(&id)
	return id, err
}

func (t *txRepo) UpdateDelivery(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}

	var setClauses []string
	var args []any
	argPos := 1

	for field, value := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field, argPos))
		args = append(args, value)
		argPos++
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now())
	argPos++

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE deliveries
		SET %s
		WHERE id = $%d
	`, strings.Join(setClauses, ", "), argPos)

	cmdTag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (t *txRepo) GetItems(ctx context.Context, deliveryID int64) ([]Item, error) {
	const query = `
		SELECT id, delivery_id, good_id, quantity
		FROM delivery_items
		WHERE delivery_id = $1
		ORDER BY id
	`
	rows, err := t.tx.Query(ctx, query, deliveryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.DeliveryID, &it.GoodID, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (t *txRepo) IncrementGoodStock(ctx context.Context, goodID int64, qty int) error {
	return goods.IncrementStockTx(ctx, t.tx, goodID, qty)
}
