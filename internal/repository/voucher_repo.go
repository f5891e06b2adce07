package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Cheertaboi/gift-voucher-service/internal/models"
)

type VoucherRepo struct {
	db *sql.DB
}

func NewVoucherRepo(db *sql.DB) *VoucherRepo {
	return &VoucherRepo{db: db}
}

const voucherColumns = `
	id, code, menu_reference, product_label, number_of_people, amount,
	recipient_name, recipient_email, purchaser_name, purchaser_email,
	purchase_date, expiry_date, is_used, used_at, created_online,
	delivery_state, origin_payment_reference, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVoucher(row rowScanner) (*models.Voucher, error) {
	var (
		v     models.Voucher
		state string
		used  sql.NullTime
		ref   sql.NullString
	)
	err := row.Scan(
		&v.ID,
		&v.Code,
		&v.MenuReference,
		&v.ProductLabel,
		&v.NumberOfPeople,
		&v.Amount,
		&v.RecipientName,
		&v.RecipientEmail,
		&v.PurchaserName,
		&v.PurchaserEmail,
		&v.PurchaseDate,
		&v.ExpiryDate,
		&v.IsUsed,
		&used,
		&v.CreatedOnline,
		&state,
		&ref,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	v.DeliveryState = models.DeliveryState(state)
	if used.Valid {
		t := used.Time
		v.UsedAt = &t
	}
	if ref.Valid {
		r := ref.String
		v.OriginPaymentReference = &r
	}
	return &v, nil
}

func (r *VoucherRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Voucher, error) {
	query := `SELECT` + voucherColumns + ` FROM vouchers WHERE id = $1`
	return scanVoucher(r.db.QueryRowContext(ctx, query, id))
}

func (r *VoucherRepo) GetByCode(ctx context.Context, code string) (*models.Voucher, error) {
	query := `SELECT` + voucherColumns + ` FROM vouchers WHERE code = $1`
	return scanVoucher(r.db.QueryRowContext(ctx, query, code))
}

func (r *VoucherRepo) FindVoucherByPaymentReference(ctx context.Context, ref string) (*models.Voucher, error) {
	query := `SELECT` + voucherColumns + ` FROM vouchers WHERE origin_payment_reference = $1`
	return scanVoucher(r.db.QueryRowContext(ctx, query, ref))
}

// ListByDeliveryState returns vouchers in the given state, oldest first.
func (r *VoucherRepo) ListByDeliveryState(ctx context.Context, state models.DeliveryState) ([]models.Voucher, error) {
	query := `SELECT` + voucherColumns + ` FROM vouchers WHERE delivery_state = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, string(state))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// ListStalled returns online vouchers whose delivery never finished and
// that were created before cutoff, oldest first.
func (r *VoucherRepo) ListStalled(ctx context.Context, cutoff time.Time) ([]models.Voucher, error) {
	query := `SELECT` + voucherColumns + ` FROM vouchers
		WHERE delivery_state = $1 AND created_online AND created_at < $2
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, string(models.DeliveryNotAttempted), cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (r *VoucherRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM vouchers WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

// CreateVoucher inserts v. The unique index on origin_payment_reference
// turns a concurrent duplicate into models.ErrDuplicateReference.
func (r *VoucherRepo) CreateVoucher(ctx context.Context, v *models.Voucher) error {
	query := `
		INSERT INTO vouchers
		(id, code, menu_reference, product_label, number_of_people, amount,
		 recipient_name, recipient_email, purchaser_name, purchaser_email,
		 purchase_date, expiry_date, is_used, used_at, created_online,
		 delivery_state, origin_payment_reference, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,NOW(),NOW())
		RETURNING created_at, updated_at
	`
	var ref sql.NullString
	if v.OriginPaymentReference != nil {
		ref = sql.NullString{String: *v.OriginPaymentReference, Valid: true}
	}
	var used sql.NullTime
	if v.UsedAt != nil {
		used = sql.NullTime{Time: *v.UsedAt, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		v.ID,
		v.Code,
		v.MenuReference,
		v.ProductLabel,
		v.NumberOfPeople,
		v.Amount,
		v.RecipientName,
		v.RecipientEmail,
		v.PurchaserName,
		v.PurchaserEmail,
		v.PurchaseDate,
		v.ExpiryDate,
		v.IsUsed,
		used,
		v.CreatedOnline,
		string(v.DeliveryState),
		ref,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			switch constraint {
			case paymentReferenceConstraint:
				return models.ErrDuplicateReference
			case codeConstraint:
				return fmt.Errorf("voucher code %s already taken: %w", v.Code, err)
			}
		}
		return fmt.Errorf("insert voucher: %w", err)
	}
	return nil
}

func (r *VoucherRepo) UpdateVoucherDeliveryState(ctx context.Context, id uuid.UUID, state models.DeliveryState) error {
	query := `UPDATE vouchers SET delivery_state = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, string(state))
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

// RedeemVoucher sets is_used and used_at together under a row lock. A
// voucher that is already used yields models.ErrAlreadyRedeemed.
func (r *VoucherRepo) RedeemVoucher(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var isUsed bool
	err = tx.QueryRowContext(ctx, `SELECT is_used FROM vouchers WHERE id = $1 FOR UPDATE`, id).Scan(&isUsed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFound
		}
		return fmt.Errorf("lock voucher: %w", err)
	}
	if isUsed {
		return models.ErrAlreadyRedeemed
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE vouchers SET is_used = TRUE, used_at = $2, updated_at = NOW() WHERE id = $1`,
		id, usedAt)
	if err != nil {
		return fmt.Errorf("mark voucher used: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx commit: %w", err)
	}
	committed = true
	return nil
}
