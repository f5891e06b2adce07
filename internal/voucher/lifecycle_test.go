package voucher

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Cheertaboi/gift-voucher-service/internal/models"
)

var now = time.Date(2025, time.December, 24, 12, 0, 0, 0, time.UTC)

func activeVoucher() *models.Voucher {
	return &models.Voucher{
		Code:         "INF-7K3Q-M2XH",
		PurchaseDate: now.AddDate(0, -2, 0),
		ExpiryDate:   DefaultExpiry(now.AddDate(0, -2, 0)),
	}
}

func holidays() []models.ExclusionPeriod {
	return []models.ExclusionPeriod{{
		Name:        "Holidays",
		StartDate:   time.Date(2024, time.December, 20, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
		IsRecurring: true,
	}}
}

func TestDefaultExpiry(t *testing.T) {
	p := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	want := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	if got := DefaultExpiry(p); !got.Equal(want) {
		t.Fatalf("DefaultExpiry = %v, want %v", got, want)
	}
}

func TestStatusOf(t *testing.T) {
	used := now.AddDate(0, -1, 0)
	cases := []struct {
		name string
		v    models.Voucher
		want Status
	}{
		{"active", models.Voucher{ExpiryDate: now.AddDate(0, 1, 0)}, StatusActive},
		{"expired", models.Voucher{ExpiryDate: now.AddDate(0, 0, -1)}, StatusExpired},
		{"used", models.Voucher{IsUsed: true, UsedAt: &used, ExpiryDate: now.AddDate(0, 1, 0)}, StatusUsed},
		{"used wins over expired", models.Voucher{IsUsed: true, UsedAt: &used, ExpiryDate: now.AddDate(-1, 0, 0)}, StatusUsed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := StatusOf(&c.v, now); got != c.want {
				t.Fatalf("StatusOf = %s, want %s", got, c.want)
			}
		})
	}
}

func TestValidate_AllThreeErrors(t *testing.T) {
	used := now.AddDate(0, -3, 0)
	v := &models.Voucher{IsUsed: true, UsedAt: &used, ExpiryDate: now.AddDate(0, -1, 0)}

	report := ValidateForRedemption(v, holidays(), now)
	if report.IsValid {
		t.Fatal("expected invalid report")
	}
	if len(report.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %d: %+v", len(report.Errors), report.Errors)
	}
	codes := []string{models.IssueAlreadyUsed, models.IssueExpired, models.IssueExcluded}
	for i, code := range codes {
		if report.Errors[i].Code != code {
			t.Errorf("error %d code = %s, want %s", i, report.Errors[i].Code, code)
		}
	}
	if !strings.Contains(report.Errors[2].Message, "Holidays") {
		t.Errorf("exclusion message should name the period: %q", report.Errors[2].Message)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("no warnings expected on an invalid voucher, got %+v", report.Warnings)
	}
}

func TestValidate_ExpiryWarning(t *testing.T) {
	v := &models.Voucher{ExpiryDate: now.Add(10 * 24 * time.Hour)}
	report := ValidateForRedemption(v, nil, now)
	if !report.IsValid {
		t.Fatalf("expected valid, got %+v", report.Errors)
	}
	if len(report.Warnings) != 1 || report.Warnings[0].Code != models.IssueExpiringSoon {
		t.Fatalf("expected one expiring_soon warning, got %+v", report.Warnings)
	}
	if !strings.Contains(report.Warnings[0].Message, "10 days") {
		t.Errorf("warning should carry the day count: %q", report.Warnings[0].Message)
	}
}

func TestValidate_NoWarningBeyondThreshold(t *testing.T) {
	v := &models.Voucher{ExpiryDate: now.Add(31 * 24 * time.Hour)}
	report := ValidateForRedemption(v, nil, now)
	if !report.IsValid || len(report.Warnings) != 0 {
		t.Fatalf("expected valid without warnings, got %+v", report)
	}
}

func TestRedeem_Success(t *testing.T) {
	v := activeVoucher()
	got, err := Redeem(v, nil, now)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if !got.IsUsed || got.UsedAt == nil || !got.UsedAt.Equal(now) {
		t.Fatalf("redeemed voucher not marked used: %+v", got)
	}
	if v.IsUsed {
		t.Fatal("Redeem must not mutate its input")
	}
}

func TestRedeem_Twice(t *testing.T) {
	first, err := Redeem(activeVoucher(), nil, now)
	if err != nil {
		t.Fatalf("first Redeem: %v", err)
	}
	firstUsedAt := *first.UsedAt

	_, err = Redeem(first, nil, now.Add(time.Hour))
	if !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("expected ErrAlreadyUsed, got %v", err)
	}
	if !first.UsedAt.Equal(firstUsedAt) {
		t.Fatal("usedAt changed after failed second redeem")
	}
}

func TestRedeem_Excluded(t *testing.T) {
	_, err := Redeem(activeVoucher(), holidays(), now)
	if !errors.Is(err, ErrExcluded) {
		t.Fatalf("expected ErrExcluded, got %v", err)
	}
	if errors.Is(err, ErrExpired) {
		t.Fatal("did not expect ErrExpired")
	}
}

func TestRedeem_ExpiredAndUsed(t *testing.T) {
	used := now.AddDate(-1, 0, 0)
	v := &models.Voucher{IsUsed: true, UsedAt: &used, ExpiryDate: now.AddDate(0, 0, -2)}
	_, err := Redeem(v, nil, now)
	if !errors.Is(err, ErrAlreadyUsed) || !errors.Is(err, ErrExpired) {
		t.Fatalf("expected both ErrAlreadyUsed and ErrExpired, got %v", err)
	}
}
