package repository

import "database/sql"

// Store groups the repositories behind one value so it can satisfy the
// fulfillment and service interfaces.
type Store struct {
	*VoucherRepo
	*ExclusionRepo
	*MenuRepo
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		VoucherRepo:   NewVoucherRepo(db),
		ExclusionRepo: NewExclusionRepo(db),
		MenuRepo:      NewMenuRepo(db),
	}
}
