// Package status exposes the read-only delivery status reference table.
package status

// Status is a reference row mapping a numeric code to its display label and
// color hint. The enumeration is fixed; the application never creates or
// destroys rows.
type Status struct {
	ID    int    `json:"id" db:"id"`
	Label string `json:"status" db:"status"`
	Color string `json:"color" db:"color"`
}
