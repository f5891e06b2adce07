package models

import (
	"time"

	"github.com/google/uuid"
)

const RecurringYearly = "yearly"

// ExclusionPeriod is a blackout window. For recurring periods only the
// month and day of StartDate/EndDate are significant.
type ExclusionPeriod struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	IsRecurring   bool      `json:"is_recurring"`
	RecurringType string    `json:"recurring_type,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
