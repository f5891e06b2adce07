// Package voucher derives voucher status and decides redeemability.
package voucher

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Cheertaboi/gift-voucher-service/internal/exclusion"
	"github.com/Cheertaboi/gift-voucher-service/internal/models"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusUsed    Status = "used"
	StatusExpired Status = "expired"
)

const (
	DefaultValidityMonths   = 12
	DefaultWarningThreshold = 30
)

var (
	ErrAlreadyUsed = errors.New("voucher already used")
	ErrExpired     = errors.New("voucher expired")
	ErrExcluded    = errors.New("redemption not allowed during exclusion period")
)

const dateLayout = "2006-01-02"

// DefaultExpiry is purchase date plus the default validity.
func DefaultExpiry(purchase time.Time) time.Time {
	return purchase.AddDate(0, DefaultValidityMonths, 0)
}

// StatusOf derives status from the stored fields. Used wins over expired.
func StatusOf(v *models.Voucher, now time.Time) Status {
	switch {
	case v.IsUsed:
		return StatusUsed
	case v.ExpiryDate.Before(now):
		return StatusExpired
	default:
		return StatusActive
	}
}

// Validator builds validation reports. WarningDays is the expiry warning window.
type Validator struct {
	WarningDays int
}

func NewValidator(warningDays int) Validator {
	if warningDays <= 0 {
		warningDays = DefaultWarningThreshold
	}
	return Validator{WarningDays: warningDays}
}

// Validate runs every check without short-circuiting so the report carries
// all applicable reasons at once.
func (val Validator) Validate(v *models.Voucher, periods []models.ExclusionPeriod, now time.Time) models.ValidationReport {
	report := models.ValidationReport{
		Errors:   []models.ValidationIssue{},
		Warnings: []models.ValidationIssue{},
	}

	if v.IsUsed {
		msg := "voucher has already been used"
		if v.UsedAt != nil {
			msg = fmt.Sprintf("voucher was already used on %s", v.UsedAt.Format(time.RFC3339))
		}
		report.Errors = append(report.Errors, models.ValidationIssue{Code: models.IssueAlreadyUsed, Message: msg})
	}

	if v.ExpiryDate.Before(now) {
		report.Errors = append(report.Errors, models.ValidationIssue{
			Code:    models.IssueExpired,
			Message: fmt.Sprintf("voucher expired on %s", v.ExpiryDate.Format(dateLayout)),
		})
	}

	if m := exclusion.IsExcluded(now, periods); m.Excluded {
		report.Errors = append(report.Errors, models.ValidationIssue{
			Code: models.IssueExcluded,
			Message: fmt.Sprintf("vouchers cannot be redeemed during %q (%s to %s)",
				m.Period.Name, m.Period.StartDate.Format(dateLayout), m.Period.EndDate.Format(dateLayout)),
		})
	}

	report.IsValid = len(report.Errors) == 0
	if report.IsValid {
		if days := DaysUntilExpiry(v, now); days > 0 && days <= val.WarningDays {
			report.Warnings = append(report.Warnings, models.ValidationIssue{
				Code:    models.IssueExpiringSoon,
				Message: fmt.Sprintf("voucher expires in %d days", days),
			})
		}
	}
	return report
}

// ValidateForRedemption uses the default warning window.
func ValidateForRedemption(v *models.Voucher, periods []models.ExclusionPeriod, now time.Time) models.ValidationReport {
	return NewValidator(DefaultWarningThreshold).Validate(v, periods, now)
}

// DaysUntilExpiry rounds partial days up; it is <= 0 once expired.
func DaysUntilExpiry(v *models.Voucher, now time.Time) int {
	return int(math.Ceil(v.ExpiryDate.Sub(now).Hours() / 24))
}

// Redeem returns a copy of v marked used at now. Every failing check is
// joined into the returned error so errors.Is matches each reason.
func Redeem(v *models.Voucher, periods []models.ExclusionPeriod, now time.Time) (*models.Voucher, error) {
	report := ValidateForRedemption(v, periods, now)
	if !report.IsValid {
		return nil, ReportError(report)
	}
	out := *v
	usedAt := now
	out.IsUsed, out.UsedAt = true, &usedAt
	return &out, nil
}

// ReportError converts the hard errors of a report into sentinel errors.
func ReportError(report models.ValidationReport) error {
	var errs []error
	for _, issue := range report.Errors {
		var base error
		switch issue.Code {
		case models.IssueAlreadyUsed:
			base = ErrAlreadyUsed
		case models.IssueExpired:
			base = ErrExpired
		case models.IssueExcluded:
			base = ErrExcluded
		default:
			continue
		}
		errs = append(errs, fmt.Errorf("%w: %s", base, issue.Message))
	}
	return errors.Join(errs...)
}
