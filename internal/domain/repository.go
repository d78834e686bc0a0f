package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when the requested record does not exist
var ErrNotFound = errors.New("not found")

// SnapshotRepository defines the interface for loading report snapshots
type SnapshotRepository interface {
	// LoadSnapshot retrieves every asset (with valuations newest first, ownerships and debt headers)
	// and every entity belonging to the given user. Filters are left empty.
	LoadSnapshot(ctx context.Context, userID uuid.UUID) (*ReportInput, error)
}

// DebtRepository defines the interface for debt persistence operations
type DebtRepository interface {
	// Create stores a debt together with its payment schedule
	Create(ctx context.Context, debt *Debt) error

	// GetByID retrieves a debt and its payments ordered by payment number
	GetByID(ctx context.Context, id uuid.UUID) (*Debt, error)

	// MarkPaymentPaid flags one payment of a debt as paid
	MarkPaymentPaid(ctx context.Context, debtID uuid.UUID, paymentNumber int) error
}

// CategoryRepository defines the interface for asset category persistence operations
type CategoryRepository interface {
	// GetByID retrieves a category by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// Create creates a new category
	Create(ctx context.Context, category *Category) error
}
