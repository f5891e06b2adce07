package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateVoucherRequest is an operator-issued voucher.
type CreateVoucherRequest struct {
	MenuReference  string           `json:"menu_reference" validate:"required"`
	NumberOfPeople int              `json:"number_of_people" validate:"gt=0"`
	Amount         *decimal.Decimal `json:"amount,omitempty" validate:"-"`
	RecipientName  string           `json:"recipient_name" validate:"required"`
	RecipientEmail string           `json:"recipient_email,omitempty" validate:"omitempty,email"`
	PurchaserName  string           `json:"purchaser_name" validate:"required"`
	PurchaserEmail string           `json:"purchaser_email" validate:"required,email"`
	ExpiryDate     *time.Time       `json:"expiry_date,omitempty" validate:"-"`
}

// ExclusionPeriodRequest carries dates as YYYY-MM-DD.
type ExclusionPeriodRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"required,datetime=2006-01-02"`
	IsRecurring bool   `json:"is_recurring"`
}
