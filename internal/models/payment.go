package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentEvent is a completed payment as reported by the gateway.
type PaymentEvent struct {
	Reference      string          `validate:"required"`
	MenuReference  string          `validate:"required"`
	NumberOfPeople int             `validate:"gt=0"`
	RecipientName  string          `validate:"required"`
	RecipientEmail string          `validate:"omitempty,email"`
	PurchaserName  string          `validate:"required"`
	PurchaserEmail string          `validate:"required,email"`
	Amount         decimal.Decimal `validate:"-"`
	// ExpiryDate overrides the default validity when set.
	ExpiryDate *time.Time `validate:"-"`
}

// Notification is one message handed to the notification provider.
type Notification struct {
	Recipient      string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}
