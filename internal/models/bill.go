package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// BillStatus is the review status of an expense report entry.
type BillStatus string

const (
	BillStatusPending  BillStatus = "pending"
	BillStatusAccepted BillStatus = "accepted"
	BillStatusRefused  BillStatus = "refused"
)

// Valid reports whether s is one of the known statuses.
func (s BillStatus) Valid() bool {
	switch s {
	case BillStatusPending, BillStatusAccepted, BillStatusRefused:
		return true
	}
	return false
}

// Bill represents one expense report entry submitted by an employee.
type Bill struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Type         string          `json:"type"`
	Name         string          `json:"name"`
	Date         string          `json:"date"` // YYYY-MM-DD
	Amount       decimal.Decimal `json:"amount"`
	VAT          string          `json:"vat,omitempty"`
	Pct          int             `json:"pct,omitempty"`
	Commentary   string          `json:"commentary,omitempty"`
	CommentAdmin string          `json:"commentAdmin,omitempty"`
	Status       BillStatus      `json:"status"`
	FileURL      string          `json:"fileUrl"`
	FileName     string          `json:"fileName"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreateBillRequest represents the request to create a bill.
// Receipt files are referenced by URL; uploads are handled elsewhere.
type CreateBillRequest struct {
	Email      string          `json:"email" validate:"required,email"`
	Type       string          `json:"type" validate:"max=100"`
	Name       string          `json:"name" validate:"required,max=255"`
	Date       string          `json:"date" validate:"required,datetime=2006-01-02"`
	Amount     decimal.Decimal `json:"amount"`
	VAT        string          `json:"vat" validate:"max=20"`
	Pct        int             `json:"pct" validate:"min=0,max=100"`
	Commentary string          `json:"commentary" validate:"max=1000"`
	FileURL    string          `json:"fileUrl" validate:"omitempty,url"`
	FileName   string          `json:"fileName" validate:"max=255"`
}

// DateLayout is the wire format of Bill.Date.
const DateLayout = "2006-01-02"

// ErrInvalidBill is returned by Validate for an incomplete or malformed bill.
var ErrInvalidBill = errors.New("invalid bill")

var validate = validator.New()

// Validate checks the fields required to file a bill.
func (r *CreateBillRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidBill, err)
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidBill)
	}
	return nil
}

// UpdateBillStatusRequest represents an admin decision on a bill.
type UpdateBillStatusRequest struct {
	Status       BillStatus `json:"status"`
	CommentAdmin string     `json:"commentAdmin"`
}
