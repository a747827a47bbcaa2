package goods

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nomadexpress/backoffice/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for goods.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetGood retrieves a good by ID.
func (r *Repository) GetGood(ctx context.Context, id int64) (*Good, error) {
	const query = `
		SELECT id, name, price, stock, merchant_id, ware_id, created_at, updated_at
		FROM goods
		WHERE id = $1
	`
	var g Good
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&g.ID, &g.Name, &g.Price, &g.Stock, &g.MerchantID, &g.WareID, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// ListByMerchant retrieves all goods owned by a merchant.
func (r *Repository) ListByMerchant(ctx context.Context, merchantID int64) ([]Good, error) {
	const query = `
		SELECT id, name, price, stock, merchant_id, ware_id, created_at, updated_at
		FROM goods
		WHERE merchant_id = $1
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goods []Good
	for rows.Next() {
		var g Good
		if err := rows.Scan(&g.ID, &g.Name, &g.Price, &g.Stock, &g.MerchantID, &g.WareID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		goods = append(goods, g)
	}
	return goods, rows.Err()
}

// IncrementStockTx adds qty to a good's stock inside the caller's transaction.
// The increment form keeps concurrent restock and approval flows from losing
// updates; callers must never read-then-overwrite the stock column.
func IncrementStockTx(ctx context.Context, tx pgx.Tx, goodID int64, qty int) error {
	const query = `
		UPDATE goods
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2
	`
	cmdTag, err := tx.Exec(ctx, query, qty, goodID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
