// Package production captures daily finished-good quantities and reports
// their exploded cost.
package production

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a missing production record.
	ErrNotFound = errors.New("production record not found")
	// ErrInvalidCapture indicates a capture payload that failed validation.
	ErrInvalidCapture = errors.New("invalid production capture")
)

// Record is one captured production row: a branch produced Quantity units
// of a product on a day.
type Record struct {
	ID             int64     `json:"id"`
	BranchID       int64     `json:"branch_id"`
	ProductID      int64     `json:"product_id"`
	Day            time.Time `json:"day"`
	Quantity       float64   `json:"quantity"`
	IdempotencyKey string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// CaptureInput is the payload for posting a production row.
type CaptureInput struct {
	BranchID       int64   `json:"branch_id" validate:"required,gt=0"`
	ProductID      int64   `json:"product_id" validate:"required,gt=0"`
	Quantity       float64 `json:"quantity" validate:"required,gt=0"`
	Day            string  `json:"day" validate:"required,datetime=2006-01-02"`
	IdempotencyKey string  `json:"idempotency_key"`
}

// PeriodFilter bounds a rollup or listing query.
type PeriodFilter struct {
	BranchID int64
	From     time.Time
	To       time.Time
}
