package models

// Issue codes reported in a ValidationReport.
const (
	IssueAlreadyUsed  = "already_used"
	IssueExpired      = "expired"
	IssueExcluded     = "excluded"
	IssueExpiringSoon = "expiring_soon"
)

type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationReport lists every hard error and soft warning that applies to a
// redemption attempt. Warnings never affect IsValid.
type ValidationReport struct {
	IsValid  bool              `json:"is_valid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

// RedemptionView is what the front desk sees for a code.
type RedemptionView struct {
	Voucher PublicFields     `json:"voucher"`
	Status  string           `json:"status"`
	Report  ValidationReport `json:"report"`
}
