package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-reports/internal/domain"
)

// debtRepository implements domain.DebtRepository
type debtRepository struct {
	db *DB
}

// NewDebtRepository creates a new debt repository
func NewDebtRepository(db *DB) domain.DebtRepository {
	return &debtRepository{db: db}
}

// Create creates a new debt with all its payments in a database transaction
func (r *debtRepository) Create(ctx context.Context, debt *domain.Debt) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	insertDebtQuery := `
		INSERT INTO debts (id, asset_id, name, initial_amount, interest_rate, duration_months, amortization_type, start_date, monthly_payment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = dbTx.ExecContext(ctx, insertDebtQuery,
		debt.ID,
		debt.AssetID,
		debt.Name,
		debt.InitialAmount.String(),
		debt.InterestRate.String(),
		debt.DurationMonths,
		string(debt.AmortizationType),
		debt.StartDate,
		debt.MonthlyPayment.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert debt: %w", err)
	}

	insertPaymentQuery := `
		INSERT INTO debt_payments (id, debt_id, payment_number, payment_date, principal, interest, total, remaining_balance, is_paid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, p := range debt.Payments {
		_, err = dbTx.ExecContext(ctx, insertPaymentQuery,
			p.ID,
			p.DebtID,
			p.PaymentNumber,
			p.PaymentDate,
			p.Principal.String(),
			p.Interest.String(),
			p.Total.String(),
			p.RemainingBalance.String(),
			p.IsPaid,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment %d: %w", p.PaymentNumber, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a debt and its payments ordered by payment number
func (r *debtRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Debt, error) {
	query := `
		SELECT id, asset_id, name, initial_amount, interest_rate, duration_months, amortization_type, start_date, monthly_payment
		FROM debts
		WHERE id = $1
	`

	debt, err := scanDebt(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("debt %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get debt by ID: %w", err)
	}

	payments, err := r.listPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	debt.Payments = payments

	return debt, nil
}

// MarkPaymentPaid flags one payment of a debt as paid
func (r *debtRepository) MarkPaymentPaid(ctx context.Context, debtID uuid.UUID, paymentNumber int) error {
	query := `
		UPDATE debt_payments
		SET is_paid = TRUE
		WHERE debt_id = $1 AND payment_number = $2
	`

	result, err := r.db.ExecContext(ctx, query, debtID, paymentNumber)
	if err != nil {
		return fmt.Errorf("failed to mark payment as paid: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("payment %d of debt %s: %w", paymentNumber, debtID, domain.ErrNotFound)
	}

	return nil
}

func (r *debtRepository) listPayments(ctx context.Context, debtID uuid.UUID) ([]domain.Payment, error) {
	query := `
		SELECT id, debt_id, payment_number, payment_date, principal, interest, total, remaining_balance, is_paid
		FROM debt_payments
		WHERE debt_id = $1
		ORDER BY payment_number
	`

	rows, err := r.db.QueryContext(ctx, query, debtID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		var principalStr, interestStr, totalStr, remainingStr string

		if err := rows.Scan(
			&p.ID,
			&p.DebtID,
			&p.PaymentNumber,
			&p.PaymentDate,
			&principalStr,
			&interestStr,
			&totalStr,
			&remainingStr,
			&p.IsPaid,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}

		amounts, err := parseDecimals(principalStr, interestStr, totalStr, remainingStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse payment %d: %w", p.PaymentNumber, err)
		}
		p.Principal, p.Interest, p.Total, p.RemainingBalance = amounts[0], amounts[1], amounts[2], amounts[3]

		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDebt(row rowScanner) (*domain.Debt, error) {
	var debt domain.Debt
	var amountStr, rateStr, monthlyStr string
	var amortizationType string

	if err := row.Scan(
		&debt.ID,
		&debt.AssetID,
		&debt.Name,
		&amountStr,
		&rateStr,
		&debt.DurationMonths,
		&amortizationType,
		&debt.StartDate,
		&monthlyStr,
	); err != nil {
		return nil, err
	}

	amounts, err := parseDecimals(amountStr, rateStr, monthlyStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse debt amounts: %w", err)
	}
	debt.InitialAmount, debt.InterestRate, debt.MonthlyPayment = amounts[0], amounts[1], amounts[2]
	debt.AmortizationType = domain.AmortizationType(amortizationType)

	return &debt, nil
}

// parseDecimals parses NUMERIC columns scanned as strings
func parseDecimals(values ...string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}
