package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/nomadexpress/backoffice/internal/platform/httpx"
)

// ErrInvalidCredentials is returned for a bad username or password. The
// handler reports both cases identically so login cannot be used to probe
// which usernames exist.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Store abstracts the repository for service tests.
type Store interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	ListDrivers(ctx context.Context) ([]Driver, error)
}

// Service implements authentication and the driver roster.
type Service struct {
	logger    *slog.Logger
	store     Store
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(logger *slog.Logger, store Store, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{
		logger:    logger,
		store:     store,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// Login verifies credentials and issues a signed HS256 token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.store.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Username,
		"role": user.RoleName,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("username", user.Username), slog.String("role", user.RoleName))
	return &LoginResult{Token: token, User: *user}, nil
}

// VerifyToken parses and validates a token issued by Login.
func (s *Service) VerifyToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Drivers returns the driver roster.
func (s *Service) Drivers(ctx context.Context) ([]Driver, error) {
	return s.store.ListDrivers(ctx)
}
