// Package fulfillment turns completed payments into issued, rendered and
// delivered vouchers, at most once per payment reference.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Cheertaboi/gift-voucher-service/internal/codegen"
	"github.com/Cheertaboi/gift-voucher-service/internal/models"
	"github.com/Cheertaboi/gift-voucher-service/internal/retry"
	"github.com/Cheertaboi/gift-voucher-service/internal/voucher"
)

var (
	ErrInvalidEvent   = errors.New("invalid payment event")
	ErrRenderFailed   = errors.New("voucher document rendering failed")
	ErrDeliveryFailed = errors.New("voucher delivery failed")
)

// Store is the persistence the pipeline needs. CreateVoucher must return
// models.ErrDuplicateReference when the payment reference is already taken.
type Store interface {
	FindVoucherByPaymentReference(ctx context.Context, ref string) (*models.Voucher, error)
	CreateVoucher(ctx context.Context, v *models.Voucher) error
	UpdateVoucherDeliveryState(ctx context.Context, id uuid.UUID, state models.DeliveryState) error
	CodeExists(ctx context.Context, code string) (bool, error)
	FindMenu(ctx context.Context, ref string) (*models.Menu, error)
}

type Renderer interface {
	Render(ctx context.Context, doc models.PublicFields) ([]byte, error)
}

// Notifier sends one message. Non-retryable failures are wrapped with retry.Permanent.
type Notifier interface {
	Send(ctx context.Context, n models.Notification) error
}

type Pipeline struct {
	store    Store
	codes    *codegen.Generator
	renderer Renderer
	notifier Notifier
	policy   retry.Policy
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Pipeline)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func NewPipeline(store Store, codes *codegen.Generator, renderer Renderer, notifier Notifier, policy retry.Policy, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:    store,
		codes:    codes,
		renderer: renderer,
		notifier: notifier,
		policy:   policy,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Outcome describes one Fulfill call. DeliveryErr is set when the voucher
// exists but its document could not be rendered or delivered.
type Outcome struct {
	Voucher     *models.Voucher
	Duplicate   bool
	Attempts    int
	DeliveryErr error
}

// Fulfill handles a completed payment. A returned error means no voucher
// was created and the event may be retried; delivery problems are reported
// in Outcome.DeliveryErr instead.
func (p *Pipeline) Fulfill(ctx context.Context, ev models.PaymentEvent) (*Outcome, error) {
	log := p.logger.With(zap.String("payment_reference", ev.Reference))

	if ev.Reference == "" {
		return nil, fmt.Errorf("%w: missing payment reference", ErrInvalidEvent)
	}
	log.Info("payment received")

	// a redelivery is answered from the store even if its payload no longer validates
	existing, err := p.store.FindVoucherByPaymentReference(ctx, ev.Reference)
	switch {
	case err == nil:
		log.Info("payment already fulfilled", zap.String("voucher_id", existing.ID.String()))
		return &Outcome{Voucher: existing, Duplicate: true}, nil
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("lookup payment reference: %w", err)
	}

	if err := p.validate.Struct(ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if !ev.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidEvent)
	}

	v, err := p.newVoucher(ctx, ev, log)
	if err != nil {
		return nil, err
	}

	if err := p.store.CreateVoucher(ctx, v); err != nil {
		if !errors.Is(err, models.ErrDuplicateReference) {
			return nil, fmt.Errorf("create voucher: %w", err)
		}
		// lost the race against a concurrent delivery of the same event
		existing, ferr := p.store.FindVoucherByPaymentReference(ctx, ev.Reference)
		if ferr != nil {
			return nil, fmt.Errorf("fetch voucher after duplicate reference: %w", ferr)
		}
		log.Info("concurrent fulfillment detected", zap.String("voucher_id", existing.ID.String()))
		return &Outcome{Voucher: existing, Duplicate: true}, nil
	}
	log = log.With(zap.String("voucher_id", v.ID.String()), zap.String("code", v.Code))
	log.Info("voucher created")

	out := &Outcome{Voucher: v}
	out.Attempts, out.DeliveryErr = p.deliver(ctx, v, log)
	return out, nil
}

// Resend renders and delivers an existing voucher again. It is only ever
// triggered by an operator.
func (p *Pipeline) Resend(ctx context.Context, v *models.Voucher) (int, error) {
	log := p.logger.With(zap.String("voucher_id", v.ID.String()), zap.String("code", v.Code))
	log.Info("resend requested", zap.String("delivery_state", string(v.DeliveryState)))
	return p.deliver(ctx, v, log)
}

func (p *Pipeline) newVoucher(ctx context.Context, ev models.PaymentEvent, log *zap.Logger) (*models.Voucher, error) {
	menu, err := p.store.FindMenu(ctx, ev.MenuReference)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown menu %q", ErrInvalidEvent, ev.MenuReference)
		}
		return nil, fmt.Errorf("lookup menu %q: %w", ev.MenuReference, err)
	}
	if expected := menu.PriceFor(ev.NumberOfPeople); !expected.Equal(ev.Amount) {
		log.Warn("paid amount differs from menu price",
			zap.String("paid", ev.Amount.StringFixed(2)),
			zap.String("expected", expected.StringFixed(2)),
		)
	}

	code, err := p.codes.GenerateUnique(ctx, p.store.CodeExists)
	if err != nil {
		return nil, fmt.Errorf("generate voucher code: %w", err)
	}

	purchase := p.now()
	expiry := voucher.DefaultExpiry(purchase)
	if ev.ExpiryDate != nil {
		expiry = *ev.ExpiryDate
	}
	ref := ev.Reference

	return &models.Voucher{
		ID:                     uuid.New(),
		Code:                   code,
		MenuReference:          menu.ID,
		ProductLabel:           menu.Label,
		NumberOfPeople:         ev.NumberOfPeople,
		Amount:                 ev.Amount,
		RecipientName:          ev.RecipientName,
		RecipientEmail:         ev.RecipientEmail,
		PurchaserName:          ev.PurchaserName,
		PurchaserEmail:         ev.PurchaserEmail,
		PurchaseDate:           purchase,
		ExpiryDate:             expiry,
		CreatedOnline:          true,
		DeliveryState:          models.DeliveryNotAttempted,
		OriginPaymentReference: &ref,
	}, nil
}

// deliver renders the document and sends it under the retry policy, then
// records the outcome. A cancelled sequence leaves the state untouched.
func (p *Pipeline) deliver(ctx context.Context, v *models.Voucher, log *zap.Logger) (int, error) {
	doc, err := p.renderer.Render(ctx, v.Public())
	if err != nil {
		log.Error("render failed", zap.Error(err))
		p.recordState(ctx, v, models.DeliveryFailed, log)
		return 0, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	log.Info("document rendered", zap.Int("bytes", len(doc)))

	msg := models.Notification{
		Recipient:      v.DeliveryAddress(),
		Subject:        fmt.Sprintf("Your gift voucher %s", v.Code),
		Body:           notificationBody(v),
		AttachmentName: fmt.Sprintf("voucher-%s.pdf", v.Code),
		Attachment:     doc,
	}
	res, err := retry.Execute(ctx, p.policy, func(ctx context.Context) error {
		return p.notifier.Send(ctx, msg)
	})
	log.Info("delivery attempted", zap.Int("attempts", res.Attempts))

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Warn("delivery cancelled", zap.Int("attempts", res.Attempts), zap.Error(err))
			return res.Attempts, err
		}
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			log.Error("delivery failed", zap.Int("attempts", exhausted.Attempts), zap.Error(exhausted.Last))
		} else {
			log.Error("delivery rejected", zap.Error(err))
		}
		p.recordState(ctx, v, models.DeliveryFailed, log)
		return res.Attempts, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	p.recordState(ctx, v, models.DeliverySent, log)
	log.Info("voucher delivered", zap.String("recipient", msg.Recipient))
	return res.Attempts, nil
}

func (p *Pipeline) recordState(ctx context.Context, v *models.Voucher, state models.DeliveryState, log *zap.Logger) {
	if err := p.store.UpdateVoucherDeliveryState(ctx, v.ID, state); err != nil {
		log.Error("record delivery state failed", zap.String("state", string(state)), zap.Error(err))
		return
	}
	v.DeliveryState = state
}

func notificationBody(v *models.Voucher) string {
	return fmt.Sprintf(
		"Hello %s,\n\nPlease find attached the gift voucher %s for %s (%d people), offered by %s.\nIt is valid until %s.\n",
		v.RecipientName, v.Code, v.ProductLabel, v.NumberOfPeople, v.PurchaserName, v.ExpiryDate.Format("2006-01-02"),
	)
}
