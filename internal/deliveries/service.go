package deliveries

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nomadexpress/backoffice/internal/media"
	"github.com/nomadexpress/backoffice/internal/platform/httpx"
)

// Store abstracts the repository for service tests.
type Store interface {
	GetDelivery(ctx context.Context, id int64) (*Delivery, error)
	GetDeliveryByExternalID(ctx context.Context, deliveryID string) (*Delivery, error)
	ListByDriverStatus(ctx context.Context, driverID int64, status int, now time.Time) ([]Delivery, error)
	ListDoneToday(ctx context.Context, driverID int64, now time.Time) ([]Delivery, error)
	ListByMerchant(ctx context.Context, merchantID int64, now time.Time) ([]Delivery, error)
	ListByMerchantStatus(ctx context.Context, merchantID int64, status int, now time.Time) ([]Delivery, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// Service implements the delivery lifecycle engine and queries.
type Service struct {
	logger   *slog.Logger
	store    Store
	uploader media.Uploader
	now      func() time.Time
	newID    func() string
}

// NewService constructs a Service. uploader may be nil when image uploads
// are not configured.
func NewService(logger *slog.Logger, store Store, uploader media.Uploader) *Service {
	return &Service{
		logger:   logger,
		store:    store,
		uploader: uploader,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Complete validates and applies a status transition with its side effects.
// The delivery update and any stock restoration commit as one transaction;
// only the image upload happens outside it, and an upload failure downgrades
// to a delivery without a photo instead of blocking the transition.
func (s *Service) Complete(ctx context.Context, id int64, req CompleteRequest) (*CompleteResult, error) {
	if !KnownStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown status code %d", httpx.ErrValidation, req.Status)
	}

	delivery, err := s.store.GetDelivery(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get delivery: %w", err)
	}

	var imageURL *string
	if req.Image != nil && s.uploader != nil {
		url, err := s.uploader.UploadDeliveryImage(ctx, delivery.ID, req.Image.Filename, req.Image.Data)
		if err != nil {
			s.logger.Warn("delivery image upload failed, continuing without image",
				slog.Int64("delivery_id", delivery.ID), slog.Any("error", err))
		} else {
			imageURL = &url
		}
	}

	updates := map[string]any{
		"status":       req.Status,
		"report_stage": 1,
	}
	if req.Status == StatusDelivered {
		updates["delivered_at"] = s.now()
	}
	if req.DriverComment != "" {
		updates["driver_comment"] = req.DriverComment
	}
	if imageURL != nil {
		updates["image"] = *imageURL
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateDelivery(ctx, delivery.ID, updates); err != nil {
			return fmt.Errorf("update delivery: %w", err)
		}
		if req.Status == StatusDeclined {
			items, err := tx.GetItems(ctx, delivery.ID)
			if err != nil {
				return fmt.Errorf("load items: %w", err)
			}
			for _, item := range items {
				if err := tx.IncrementGoodStock(ctx, item.GoodID, item.Quantity); err != nil {
					return fmt.Errorf("restock good %d: %w", item.GoodID, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("delivery transitioned",
		slog.Int64("delivery_id", delivery.ID),
		slog.Int("status", req.Status))

	return &CompleteResult{ID: delivery.ID, Status: req.Status, Image: imageURL}, nil
}

// Create records a new delivery with its items under a fresh tracking code.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Delivery, error) {
	var id int64
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		created, err := tx.CreateDelivery(ctx, Delivery{
			DeliveryID: s.newID(),
			DriverID:   req.DriverID,
			MerchantID: req.MerchantID,
			Price:      req.Price,
			Status:     StatusAssigned,
			Address:    req.Address,
			Phone:      req.Phone,
		})
		if err != nil {
			return fmt.Errorf("create delivery: %w", err)
		}
		id = created
		for _, line := range req.Items {
			_, err := tx.InsertItem(ctx, Item{DeliveryID: id, GoodID: line.GoodID, Quantity: line.Quantity})
			if err != nil {
				return fmt.Errorf("insert item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetDelivery(ctx, id)
}

// Get returns a delivery by primary key.
func (s *Service) Get(ctx context.Context, id int64) (*Delivery, error) {
	return s.store.GetDelivery(ctx, id)
}

// GetByTrackingCode returns a delivery by its uuid tracking code.
func (s *Service) GetByTrackingCode(ctx context.Context, code string) (*Delivery, error) {
	return s.store.GetDeliveryByExternalID(ctx, code)
}

// DriverStatusList returns a driver's deliveries in one status over the
// trailing seven days.
func (s *Service) DriverStatusList(ctx context.Context, driverID int64, status int) ([]Delivery, error) {
	if !KnownStatus(status) {
		return nil, fmt.Errorf("%w: unknown status code %d", httpx.ErrValidation, status)
	}
	return s.store.ListByDriverStatus(ctx, driverID, status, s.now())
}

// DriverDoneToday returns the deliveries a driver finished today.
func (s *Service) DriverDoneToday(ctx context.Context, driverID int64) ([]Delivery, error) {
	return s.store.ListDoneToday(ctx, driverID, s.now())
}

// MerchantList returns a merchant's deliveries created over the trailing
// seven days.
func (s *Service) MerchantList(ctx context.Context, merchantID int64) ([]Delivery, error) {
	return s.store.ListByMerchant(ctx, merchantID, s.now())
}

// MerchantStatusList returns a merchant's deliveries in one status created
// today.
func (s *Service) MerchantStatusList(ctx context.Context, merchantID int64, status int) ([]Delivery, error) {
	if !KnownStatus(status) {
		return nil, fmt.Errorf("%w: unknown status code %d", httpx.ErrValidation, status)
	}
	return s.store.ListByMerchantStatus(ctx, merchantID, status, s.now())
}
