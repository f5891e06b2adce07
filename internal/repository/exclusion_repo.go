package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/Cheertaboi/gift-voucher-service/internal/models"
)

type ExclusionRepo struct {
	db *sql.DB
}

func NewExclusionRepo(db *sql.DB) *ExclusionRepo {
	return &ExclusionRepo{db: db}
}

// FindExclusionPeriods returns all periods in definition order.
func (r *ExclusionRepo) FindExclusionPeriods(ctx context.Context) ([]models.ExclusionPeriod, error) {
	query := `
		SELECT id, name, description, start_date, end_date, is_recurring, recurring_type,
		       created_at, updated_at
		FROM exclusion_periods
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	periods := []models.ExclusionPeriod{}
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, *p)
	}
	return periods, rows.Err()
}

func (r *ExclusionRepo) GetPeriod(ctx context.Context, id uuid.UUID) (*models.ExclusionPeriod, error) {
	query := `
		SELECT id, name, description, start_date, end_date, is_recurring, recurring_type,
		       created_at, updated_at
		FROM exclusion_periods
		WHERE id = $1
	`
	p, err := scanPeriod(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return p, err
}

func (r *ExclusionRepo) CreatePeriod(ctx context.Context, p *models.ExclusionPeriod) error {
	query := `
		INSERT INTO exclusion_periods
		(id, name, description, start_date, end_date, is_recurring, recurring_type, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		p.ID, p.Name, nullString(p.Description), p.StartDate, p.EndDate,
		p.IsRecurring, nullString(p.RecurringType),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ExclusionRepo) UpdatePeriod(ctx context.Context, p *models.ExclusionPeriod) error {
	query := `
		UPDATE exclusion_periods
		SET name = $2, description = $3, start_date = $4, end_date = $5,
		    is_recurring = $6, recurring_type = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.Name, nullString(p.Description), p.StartDate, p.EndDate,
		p.IsRecurring, nullString(p.RecurringType),
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}

func (r *ExclusionRepo) DeletePeriod(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM exclusion_periods WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func scanPeriod(row rowScanner) (*models.ExclusionPeriod, error) {
	var (
		p             models.ExclusionPeriod
		desc, recType sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &desc, &p.StartDate, &p.EndDate, &p.IsRecurring, &recType, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Description = desc.String
	p.RecurringType = recType.String
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
