// Package amortization generates debt repayment schedules.
package amortization

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-reports/internal/domain"
)

var (
	// ErrInvalidDuration is returned when the duration is zero or negative
	ErrInvalidDuration = errors.New("duration must be positive")

	// ErrInvalidPrincipal is returned when the principal is zero or negative
	ErrInvalidPrincipal = errors.New("principal must be positive")

	// ErrInvalidRate is returned when the annual rate is negative
	ErrInvalidRate = errors.New("interest rate cannot be negative")

	// ErrUnknownAmortizationType is returned for regimes outside domain.AmortizationType
	ErrUnknownAmortizationType = errors.New("unknown amortization type")
)

var (
	one         = decimal.NewFromInt(1)
	hundred     = decimal.NewFromInt(100)
	twelve      = decimal.NewFromInt(12)
	powerDigits = int32(18)
)

// Schedule computes the payment schedule of a debt
// Logic:
//  1. monthlyRate = annualRatePct / 100 / 12
//  2. PROGRESSIVE, LINEAR and IN_FINE emit exactly durationMonths payments, one per month after startDate
//  3. BULLET emits a single payment at startDate + durationMonths
//  4. Amounts are rounded to the cent; the last payment absorbs rounding so the final balance is 0
//
// Returned payments have no ID or DebtID and are all unpaid; the caller persists them.
func Schedule(principal, annualRatePct decimal.Decimal, durationMonths int, regime domain.AmortizationType, startDate time.Time) ([]domain.Payment, error) {
	if durationMonths <= 0 {
		return nil, fmt.Errorf("%w: got %d months", ErrInvalidDuration, durationMonths)
	}
	if !principal.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidPrincipal, principal)
	}
	if annualRatePct.IsNegative() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidRate, annualRatePct)
	}

	monthlyRate := annualRatePct.Div(hundred).Div(twelve)

	switch regime {
	case domain.AmortizationProgressive:
		return progressive(principal, monthlyRate, durationMonths, startDate), nil
	case domain.AmortizationLinear:
		return linear(principal, monthlyRate, durationMonths, startDate), nil
	case domain.AmortizationInFine:
		return inFine(principal, monthlyRate, durationMonths, startDate), nil
	case domain.AmortizationBullet:
		return bullet(principal, annualRatePct, durationMonths, startDate), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAmortizationType, regime)
	}
}

// MonthlyPayment returns the recurring payment of a schedule
// For PROGRESSIVE this is the annuity, for LINEAR the first (largest) payment,
// for IN_FINE the interest-only payment and for BULLET the terminal payment.
func MonthlyPayment(payments []domain.Payment) decimal.Decimal {
	if len(payments) == 0 {
		return decimal.Zero
	}
	return payments[0].Total
}

// Annuity returns the constant PROGRESSIVE payment M = P.r.(1+r)^n / ((1+r)^n - 1), rounded to the cent
// With a zero rate the payment is P/n.
func Annuity(principal, monthlyRate decimal.Decimal, months int) decimal.Decimal {
	if monthlyRate.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(months))).Round(2)
	}

	base := one.Add(monthlyRate)
	factor := one
	for i := 0; i < months; i++ {
		factor = factor.Mul(base).Round(powerDigits)
	}

	return principal.Mul(monthlyRate).Mul(factor).Div(factor.Sub(one)).Round(2)
}

func progressive(principal, monthlyRate decimal.Decimal, months int, start time.Time) []domain.Payment {
	annuity := Annuity(principal, monthlyRate, months)

	payments := make([]domain.Payment, 0, months)
	remaining := principal
	for n := 1; n <= months; n++ {
		interest := remaining.Mul(monthlyRate).Round(2)
		part := annuity.Sub(interest)
		if n == months || part.GreaterThan(remaining) {
			part = remaining
		}
		remaining = clamp(remaining.Sub(part))
		payments = append(payments, payment(n, addMonths(start, n), part, interest, remaining))
	}
	return payments
}

func linear(principal, monthlyRate decimal.Decimal, months int, start time.Time) []domain.Payment {
	part := principal.Div(decimal.NewFromInt(int64(months))).Round(2)

	payments := make([]domain.Payment, 0, months)
	remaining := principal
	for n := 1; n <= months; n++ {
		interest := remaining.Mul(monthlyRate).Round(2)
		p := part
		if n == months || p.GreaterThan(remaining) {
			p = remaining
		}
		remaining = clamp(remaining.Sub(p))
		payments = append(payments, payment(n, addMonths(start, n), p, interest, remaining))
	}
	return payments
}

func inFine(principal, monthlyRate decimal.Decimal, months int, start time.Time) []domain.Payment {
	interest := principal.Mul(monthlyRate).Round(2)

	payments := make([]domain.Payment, 0, months)
	for n := 1; n < months; n++ {
		payments = append(payments, payment(n, addMonths(start, n), decimal.Zero, interest, principal))
	}
	return append(payments, payment(months, addMonths(start, months), principal, interest, decimal.Zero))
}

// bullet accrues simple interest P x annualRate x years over the whole duration
func bullet(principal, annualRatePct decimal.Decimal, months int, start time.Time) []domain.Payment {
	years := decimal.NewFromInt(int64(months)).Div(twelve)
	interest := principal.Mul(annualRatePct).Div(hundred).Mul(years).Round(2)
	return []domain.Payment{payment(1, addMonths(start, months), principal, interest, decimal.Zero)}
}

func payment(number int, date time.Time, principal, interest, remaining decimal.Decimal) domain.Payment {
	return domain.Payment{
		PaymentNumber:    number,
		PaymentDate:      date,
		Principal:        principal,
		Interest:         interest,
		Total:            principal.Add(interest),
		RemainingBalance: remaining,
		IsPaid:           false,
	}
}

func clamp(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// addMonths moves t by n months, keeping the day of month when it exists
// and falling back to the last day otherwise (Jan 31 + 1 month = Feb 28/29).
func addMonths(t time.Time, n int) time.Time {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := firstOfMonth.AddDate(0, n, 0)
	lastDay := target.AddDate(0, 1, -1).Day()

	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
