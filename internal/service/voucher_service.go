package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Cheertaboi/gift-voucher-service/internal/codegen"
	"github.com/Cheertaboi/gift-voucher-service/internal/concurrency"
	"github.com/Cheertaboi/gift-voucher-service/internal/models"
	"github.com/Cheertaboi/gift-voucher-service/internal/voucher"
)

var (
	ErrVoucherNotFound = errors.New("voucher not found")
	ErrMenuNotFound    = errors.New("menu not found")
	ErrInvalidRequest  = errors.New("invalid request")
)

// Repos required by the service (interfaces so tests can fake them)
type VoucherRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Voucher, error)
	GetByCode(ctx context.Context, code string) (*models.Voucher, error)
	ListByDeliveryState(ctx context.Context, state models.DeliveryState) ([]models.Voucher, error)
	ListStalled(ctx context.Context, cutoff time.Time) ([]models.Voucher, error)
	CreateVoucher(ctx context.Context, v *models.Voucher) error
	CodeExists(ctx context.Context, code string) (bool, error)
	RedeemVoucher(ctx context.Context, id uuid.UUID, usedAt time.Time) error
}

type MenuRepo interface {
	FindMenu(ctx context.Context, ref string) (*models.Menu, error)
}

type PeriodRepo interface {
	FindExclusionPeriods(ctx context.Context) ([]models.ExclusionPeriod, error)
	GetPeriod(ctx context.Context, id uuid.UUID) (*models.ExclusionPeriod, error)
	CreatePeriod(ctx context.Context, p *models.ExclusionPeriod) error
	UpdatePeriod(ctx context.Context, p *models.ExclusionPeriod) error
	DeletePeriod(ctx context.Context, id uuid.UUID) error
}

// Resender redelivers an existing voucher document.
type Resender interface {
	Resend(ctx context.Context, v *models.Voucher) (int, error)
}

type VoucherService struct {
	vouchers  VoucherRepo
	menus     MenuRepo
	periods   *PeriodSource
	codes     *codegen.Generator
	resender  Resender
	validator voucher.Validator
	validate  *validator.Validate
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time

	// online vouchers still not_attempted after this long are resent too
	stallAfter time.Duration
}

func NewVoucherService(
	vouchers VoucherRepo,
	menus MenuRepo,
	periods *PeriodSource,
	codes *codegen.Generator,
	resender Resender,
	warningDays int,
	stallAfter time.Duration,
	loc *time.Location,
	logger *zap.Logger,
) *VoucherService {
	return &VoucherService{
		vouchers:   vouchers,
		menus:      menus,
		periods:    periods,
		codes:      codes,
		resender:   resender,
		validator:  voucher.NewValidator(warningDays),
		validate:   validator.New(),
		loc:        loc,
		logger:     logger,
		now:        time.Now,
		stallAfter: stallAfter,
	}
}

// clock returns the current time in the restaurant's zone so date-only
// comparisons use the local calendar day.
func (s *VoucherService) clock() time.Time {
	return s.now().In(s.loc)
}

func (s *VoucherService) lookup(ctx context.Context, code string) (*models.Voucher, error) {
	code = codegen.Normalize(code)
	if !s.codes.IsWellFormed(code) {
		return nil, ErrVoucherNotFound
	}
	v, err := s.vouchers.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, fmt.Errorf("load voucher: %w", err)
	}
	return v, nil
}

func (s *VoucherService) view(v *models.Voucher, periods []models.ExclusionPeriod, now time.Time) *models.RedemptionView {
	return &models.RedemptionView{
		Voucher: v.Public(),
		Status:  string(voucher.StatusOf(v, now)),
		Report:  s.validator.Validate(v, periods, now),
	}
}

// Check returns the voucher's public fields with a full validation report.
func (s *VoucherService) Check(ctx context.Context, code string) (*models.RedemptionView, error) {
	v, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	periods, err := s.periods.Periods(ctx)
	if err != nil {
		return nil, err
	}
	return s.view(v, periods, s.clock()), nil
}

// Redeem marks the voucher used. When it is not redeemable the view is
// still returned together with an error matching every failed check.
func (s *VoucherService) Redeem(ctx context.Context, code string) (*models.RedemptionView, error) {
	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	v, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	periods, err := s.periods.Periods(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock()

	redeemed, err := voucher.Redeem(v, periods, now)
	if err != nil {
		return s.view(v, periods, now), err
	}

	if err := s.vouchers.RedeemVoucher(ctx, v.ID, *redeemed.UsedAt); err != nil {
		if errors.Is(err, models.ErrAlreadyRedeemed) {
			// a concurrent redemption won; report what is stored now
			if fresh, ferr := s.vouchers.GetByID(ctx, v.ID); ferr == nil {
				return s.view(fresh, periods, now), fmt.Errorf("%w: redeemed concurrently", voucher.ErrAlreadyUsed)
			}
			return nil, fmt.Errorf("%w: redeemed concurrently", voucher.ErrAlreadyUsed)
		}
		return nil, fmt.Errorf("redeem voucher: %w", err)
	}

	s.logger.Info("voucher redeemed", zap.String("code", v.Code), zap.String("voucher_id", v.ID.String()))
	return s.view(redeemed, periods, now), nil
}

// CreateManual issues a voucher on behalf of an operator. No notification
// is sent; the operator may request a resend.
func (s *VoucherService) CreateManual(ctx context.Context, req models.CreateVoucherRequest) (*models.Voucher, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	menu, err := s.menus.FindMenu(ctx, req.MenuReference)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("load menu: %w", err)
	}

	amount := menu.PriceFor(req.NumberOfPeople)
	if req.Amount != nil {
		amount = *req.Amount
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}

	code, err := s.codes.GenerateUnique(ctx, s.vouchers.CodeExists)
	if err != nil {
		return nil, fmt.Errorf("generate voucher code: %w", err)
	}

	purchase := s.clock()
	expiry := voucher.DefaultExpiry(purchase)
	if req.ExpiryDate != nil {
		expiry = *req.ExpiryDate
	}

	v := &models.Voucher{
		ID:             uuid.New(),
		Code:           code,
		MenuReference:  menu.ID,
		ProductLabel:   menu.Label,
		NumberOfPeople: req.NumberOfPeople,
		Amount:         amount,
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		PurchaserName:  req.PurchaserName,
		PurchaserEmail: req.PurchaserEmail,
		PurchaseDate:   purchase,
		ExpiryDate:     expiry,
		CreatedOnline:  false,
		DeliveryState:  models.DeliveryNotAttempted,
	}
	if err := s.vouchers.CreateVoucher(ctx, v); err != nil {
		return nil, fmt.Errorf("create voucher: %w", err)
	}
	s.logger.Info("manual voucher created", zap.String("code", v.Code), zap.String("voucher_id", v.ID.String()))
	return v, nil
}

// Resend redelivers one voucher, whatever its current delivery state.
func (s *VoucherService) Resend(ctx context.Context, id uuid.UUID) (*models.Voucher, error) {
	v, err := s.vouchers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, fmt.Errorf("load voucher: %w", err)
	}
	if _, err := s.resender.Resend(ctx, v); err != nil {
		return v, err
	}
	return v, nil
}

type ResendSummary struct {
	Total     int
	Delivered int
	Failed    int
}

// ResendFailed redelivers every voucher whose delivery failed, plus online
// vouchers whose delivery never completed within the stall window, using
// at most workers concurrent deliveries.
func (s *VoucherService) ResendFailed(ctx context.Context, workers int) (ResendSummary, error) {
	pending, err := s.vouchers.ListByDeliveryState(ctx, models.DeliveryFailed)
	if err != nil {
		return ResendSummary{}, fmt.Errorf("list failed deliveries: %w", err)
	}
	stalled, err := s.vouchers.ListStalled(ctx, s.clock().Add(-s.stallAfter))
	if err != nil {
		return ResendSummary{}, fmt.Errorf("list stalled deliveries: %w", err)
	}
	if len(stalled) > 0 {
		s.logger.Info("stalled deliveries found", zap.Int("count", len(stalled)))
	}
	pending = append(pending, stalled...)

	var (
		mu  sync.Mutex
		sum = ResendSummary{Total: len(pending)}
	)
	concurrency.SimpleWorkerPool(ctx, workers, len(pending), func(ctx context.Context, idx int) {
		v := pending[idx]
		_, err := s.resender.Resend(ctx, &v)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			sum.Failed++
			s.logger.Warn("resend failed", zap.String("code", v.Code), zap.Error(err))
			return
		}
		sum.Delivered++
	})
	return sum, ctx.Err()
}
