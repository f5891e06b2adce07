package models

import "github.com/shopspring/decimal"

type Menu struct {
	ID        string
	Label     string
	UnitPrice decimal.Decimal
}

// PriceFor returns unitPrice * people.
func (m *Menu) PriceFor(people int) decimal.Decimal {
	return m.UnitPrice.Mul(decimal.NewFromInt(int64(people)))
}
