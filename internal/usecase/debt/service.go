package debt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-reports/internal/domain"
	"github.com/simaogato/wealthflow-reports/internal/usecase/amortization"
)

// CreateDebtInput represents the input for creating a debt
type CreateDebtInput struct {
	AssetID          uuid.UUID
	Name             string
	InitialAmount    decimal.Decimal
	InterestRate     decimal.Decimal // Annual rate in percent
	DurationMonths   int
	AmortizationType domain.AmortizationType
	StartDate        time.Time
}

// DebtService handles debt creation and repayment tracking
type DebtService struct {
	DebtRepo domain.DebtRepository
}

// NewDebtService creates a new DebtService instance
func NewDebtService(debtRepo domain.DebtRepository) *DebtService {
	return &DebtService{
		DebtRepo: debtRepo,
	}
}

// PreviewDebt builds the debt and its schedule without saving anything
func (s *DebtService) PreviewDebt(input CreateDebtInput) (*domain.Debt, error) {
	debt := &domain.Debt{
		ID:               uuid.New(),
		AssetID:          input.AssetID,
		Name:             input.Name,
		InitialAmount:    input.InitialAmount,
		InterestRate:     input.InterestRate,
		DurationMonths:   input.DurationMonths,
		AmortizationType: input.AmortizationType,
		StartDate:        input.StartDate,
	}
	if err := debt.Validate(); err != nil {
		return nil, err
	}

	payments, err := amortization.Schedule(
		debt.InitialAmount,
		debt.InterestRate,
		debt.DurationMonths,
		debt.AmortizationType,
		debt.StartDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute schedule: %w", err)
	}

	for i := range payments {
		payments[i].ID = uuid.New()
		payments[i].DebtID = debt.ID
	}
	debt.Payments = payments
	debt.MonthlyPayment = amortization.MonthlyPayment(payments)

	return debt, nil
}

// CreateDebt creates a debt together with its payment schedule
// Logic:
//  1. Build and validate the debt
//  2. Generate the schedule with amortization.Schedule
//  3. Derive MonthlyPayment from the schedule
//  4. Save debt and payments using DebtRepo.Create
func (s *DebtService) CreateDebt(ctx context.Context, input CreateDebtInput) (*domain.Debt, error) {
	if input.AssetID == uuid.Nil {
		return nil, errors.New("debt must be attached to an asset")
	}

	debt, err := s.PreviewDebt(input)
	if err != nil {
		return nil, err
	}

	if err := s.DebtRepo.Create(ctx, debt); err != nil {
		return nil, fmt.Errorf("failed to create debt: %w", err)
	}

	return debt, nil
}

// GetDebt retrieves a debt with its payments
func (s *DebtService) GetDebt(ctx context.Context, id uuid.UUID) (*domain.Debt, error) {
	return s.DebtRepo.GetByID(ctx, id)
}

// MarkPaymentPaid flags one scheduled payment as paid
// Payments are otherwise immutable, so this is the only update a schedule accepts.
func (s *DebtService) MarkPaymentPaid(ctx context.Context, debtID uuid.UUID, paymentNumber int) (*domain.Debt, error) {
	debt, err := s.DebtRepo.GetByID(ctx, debtID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, p := range debt.Payments {
		if p.PaymentNumber == paymentNumber {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("payment %d not found for debt %s", paymentNumber, debtID)
	}
	if debt.Payments[idx].IsPaid {
		return nil, fmt.Errorf("payment %d is already paid", paymentNumber)
	}

	if err := s.DebtRepo.MarkPaymentPaid(ctx, debtID, paymentNumber); err != nil {
		return nil, fmt.Errorf("failed to mark payment as paid: %w", err)
	}
	debt.Payments[idx].IsPaid = true

	return debt, nil
}
