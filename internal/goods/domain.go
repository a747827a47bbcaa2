// Package goods manages stock-keeping units and the stock ledger.
package goods

import "time"

// Good is a stock-keeping unit owned by a merchant and held in a warehouse.
type Good struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Price      float64   `json:"price" db:"price"`
	Stock      int       `json:"stock" db:"stock"`
	MerchantID int64     `json:"merchant_id" db:"merchant_id"`
	WareID     int64     `json:"ware_id" db:"ware_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
