package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DeliveryState string

const (
	DeliveryNotAttempted DeliveryState = "not_attempted"
	DeliverySent         DeliveryState = "sent"
	DeliveryFailed       DeliveryState = "failed"
)

func (s DeliveryState) Valid() bool {
	switch s {
	case DeliveryNotAttempted, DeliverySent, DeliveryFailed:
		return true
	}
	return false
}

// Voucher is the record of a sale. Status is never stored; see voucher.StatusOf.
type Voucher struct {
	ID                     uuid.UUID
	Code                   string
	MenuReference          string
	ProductLabel           string
	NumberOfPeople         int
	Amount                 decimal.Decimal
	RecipientName          string
	RecipientEmail         string
	PurchaserName          string
	PurchaserEmail         string
	PurchaseDate           time.Time
	ExpiryDate             time.Time
	IsUsed                 bool
	UsedAt                 *time.Time
	CreatedOnline          bool
	DeliveryState          DeliveryState
	OriginPaymentReference *string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// DeliveryAddress is where the voucher document is sent.
func (v *Voucher) DeliveryAddress() string {
	if v.RecipientEmail != "" {
		return v.RecipientEmail
	}
	return v.PurchaserEmail
}

// PublicFields is the subset of a voucher exposed to front desk and rendering.
type PublicFields struct {
	Code           string          `json:"code"`
	ProductLabel   string          `json:"product_label"`
	NumberOfPeople int             `json:"number_of_people"`
	Amount         decimal.Decimal `json:"amount"`
	RecipientName  string          `json:"recipient_name"`
	PurchaserName  string          `json:"purchaser_name"`
	PurchaseDate   time.Time       `json:"purchase_date"`
	ExpiryDate     time.Time       `json:"expiry_date"`
	IsUsed         bool            `json:"is_used"`
	UsedAt         *time.Time      `json:"used_at,omitempty"`
}

func (v *Voucher) Public() PublicFields {
	return PublicFields{
		Code:           v.Code,
		ProductLabel:   v.ProductLabel,
		NumberOfPeople: v.NumberOfPeople,
		Amount:         v.Amount,
		RecipientName:  v.RecipientName,
		PurchaserName:  v.PurchaserName,
		PurchaseDate:   v.PurchaseDate,
		ExpiryDate:     v.ExpiryDate,
		IsUsed:         v.IsUsed,
		UsedAt:         v.UsedAt,
	}
}
