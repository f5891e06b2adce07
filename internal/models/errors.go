package models

import "errors"

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateReference = errors.New("payment reference already fulfilled")
	// ErrAlreadyRedeemed is returned by the store when a conditional redeem loses a race.
	ErrAlreadyRedeemed = errors.New("voucher already redeemed")
)
