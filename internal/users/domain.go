// Package users covers accounts, authentication and the driver roster.
package users

import "time"

// User is a back-office account. PasswordHash never leaves the package.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password"`
	RoleID       int64     `json:"role_id" db:"role_id"`
	RoleName     string    `json:"role" db:"role_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Driver is the roster entry returned to assignment pickers.
type Driver struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
}

// LoginRequest carries the credentials for a login attempt.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the issued token plus the account it belongs to.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
