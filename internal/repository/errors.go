package repository

import (
	"errors"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const (
	paymentReferenceConstraint = "vouchers_origin_payment_reference_key"
	codeConstraint             = "vouchers_code_key"
)

// uniqueConstraint returns the violated constraint name, if err is a unique violation.
func uniqueConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}
