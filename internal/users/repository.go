package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nomadexpress/backoffice/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByUsername loads an account with its role by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	const query = `
		SELECT u.id, u.username, u.password, u.role_id, r.name, u.created_at, u.updated_at
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.username = $1
	`
	var u User
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.RoleID, &u.RoleName, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListDrivers returns every account holding the driver role, ordered by name.
func (r *Repository) ListDrivers(ctx context.Context) ([]Driver, error) {
	const query = `
		SELECT u.id, u.username
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE r.name = 'driver'
		ORDER BY u.username
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []Driver
	for rows.Next() {
		var d Driver
		if err := rows.Scan(&d.ID, &d.Username); err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}
