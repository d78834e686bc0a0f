package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AmortizationType represents the rule splitting a debt payment between principal and interest
type AmortizationType string

const (
	AmortizationProgressive AmortizationType = "PROGRESSIVE" // Constant annuity
	AmortizationLinear      AmortizationType = "LINEAR"      // Constant principal
	AmortizationInFine      AmortizationType = "IN_FINE"     // Interest only, principal at the end
	AmortizationBullet      AmortizationType = "BULLET"      // Single terminal payment
)

// Debt represents a loan attached to an asset
type Debt struct {
	ID               uuid.UUID
	AssetID          uuid.UUID
	Name             string
	InitialAmount    decimal.Decimal
	InterestRate     decimal.Decimal // Annual rate in percent
	DurationMonths   int
	AmortizationType AmortizationType
	StartDate        time.Time
	MonthlyPayment   decimal.Decimal // Derived from the schedule
	Payments         []Payment
}

// Payment is one scheduled repayment of a debt
// Payments are generated once at debt creation; afterwards only IsPaid changes.
type Payment struct {
	ID               uuid.UUID
	DebtID           uuid.UUID
	PaymentNumber    int
	PaymentDate      time.Time
	Principal        decimal.Decimal
	Interest         decimal.Decimal
	Total            decimal.Decimal
	RemainingBalance decimal.Decimal
	IsPaid           bool
}

// IsValid reports whether t is one of the supported amortization regimes
func (t AmortizationType) IsValid() bool {
	switch t {
	case AmortizationProgressive, AmortizationLinear, AmortizationInFine, AmortizationBullet:
		return true
	default:
		return false
	}
}

// Validate ensures the debt adheres to domain rules
func (d *Debt) Validate() error {
	if d.Name == "" {
		return errors.New("debt name cannot be empty")
	}
	if d.InitialAmount.LessThanOrEqual(decimal.Zero) {
		return errors.New("debt initial amount must be positive")
	}
	if d.InterestRate.LessThan(decimal.Zero) {
		return errors.New("debt interest rate cannot be negative")
	}
	if d.DurationMonths <= 0 {
		return errors.New("debt duration must be positive")
	}
	if !d.AmortizationType.IsValid() {
		return errors.New("invalid amortization type: " + string(d.AmortizationType))
	}
	if d.StartDate.IsZero() {
		return errors.New("debt must have a start date")
	}
	return nil
}

// RemainingBalance returns the balance left after the last paid payment
func (d *Debt) RemainingBalance() decimal.Decimal {
	remaining := d.InitialAmount
	for _, p := range d.Payments {
		if p.IsPaid {
			remaining = p.RemainingBalance
		}
	}
	return remaining
}
