package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Cheertaboi/gift-voucher-service/internal/models"
)

type MenuRepo struct {
	db *sql.DB
}

func NewMenuRepo(db *sql.DB) *MenuRepo {
	return &MenuRepo{db: db}
}

func (r *MenuRepo) FindMenu(ctx context.Context, ref string) (*models.Menu, error) {
	var m models.Menu
	err := r.db.QueryRowContext(ctx, `SELECT id, label, unit_price FROM menus WHERE id = $1`, ref).
		Scan(&m.ID, &m.Label, &m.UnitPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
