// Package deliveries tracks shipments through the status lifecycle and
// applies transition side effects.
package deliveries

import (
	"time"
)

// Delivery status codes. The numeric values are shared with the statuses
// reference table and the dashboard, so they never change meaning.
const (
	StatusAssigned  = 1
	StatusInTransit = 2
	StatusDelivered = 3
	StatusReturned  = 4
	StatusDeclined  = 5
)

// KnownStatus reports whether code is part of the status enumeration.
func KnownStatus(code int) bool {
	return code >= StatusAssigned && code <= StatusDeclined
}

// Delivery is one shipment tracked through the status lifecycle.
type Delivery struct {
	ID            int64      `json:"id" db:"id"`
	DeliveryID    string     `json:"delivery_id" db:"delivery_id"`
	DriverID      *int64     `json:"driver_id,omitempty" db:"driver_id"`
	MerchantID    int64      `json:"merchant_id" db:"merchant_id"`
	Price         float64    `json:"price" db:"price"`
	Status        int        `json:"status" db:"status"`
	ReportStage   int        `json:"report_stage" db:"report_stage"`
	DriverComment *string    `json:"driver_comment,omitempty" db:"driver_comment"`
	Image         *string    `json:"image,omitempty" db:"image"`
	Address       *string    `json:"address,omitempty" db:"address"`
	Phone         *string    `json:"phone,omitempty" db:"phone"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty" db:"delivered_at"`
	Items         []Item     `json:"items,omitempty" db:"-"`
}

// Item is one good/quantity line inside a delivery.
type Item struct {
	ID         int64 `json:"id" db:"id"`
	DeliveryID int64 `json:"delivery_id" db:"delivery_id"`
	GoodID     int64 `json:"good_id" db:"good_id"`
	Quantity   int   `json:"quantity" db:"quantity"`
}

// ImageAttachment is an uploaded proof-of-delivery photo, decoded from the
// multipart form before it reaches the service.
type ImageAttachment struct {
	Filename string
	Data     []byte
}

// CompleteRequest carries a requested status transition.
type CompleteRequest struct {
	Status        int
	DriverComment string
	Image         *ImageAttachment
}

// CompleteResult is the outcome of a completed transition.
type CompleteResult struct {
	ID     int64   `json:"id"`
	Status int     `json:"status"`
	Image  *string `json:"image"`
}

// CreateItemRequest is one line of a create request.
type CreateItemRequest struct {
	GoodID   int64 `json:"good_id" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"required,gt=0"`
}

// CreateRequest creates a delivery with its items.
type CreateRequest struct {
	DriverID   *int64              `json:"driver_id,omitempty" validate:"omitempty,gt=0"`
	MerchantID int64               `json:"merchant_id" validate:"required,gt=0"`
	Price      float64             `json:"price" validate:"gte=0"`
	Address    *string             `json:"address,omitempty"`
	Phone      *string             `json:"phone,omitempty"`
	Items      []CreateItemRequest `json:"items" validate:"required,min=1,dive"`
}
