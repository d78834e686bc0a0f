package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/wealthflow-reports/internal/domain"
)

// categoryRepository implements domain.CategoryRepository
type categoryRepository struct {
	db *DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *DB) domain.CategoryRepository {
	return &categoryRepository{db: db}
}

// GetByID retrieves a category by its ID
func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `
		SELECT id, name
		FROM asset_categories
		WHERE id = $1
	`

	var category domain.Category
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category by ID: %w", err)
	}

	return &category, nil
}

// Create creates a new category
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO asset_categories (id, name)
		VALUES ($1, $2)
	`

	_, err := r.db.ExecContext(ctx, query,
		category.ID,
		string(category.Name),
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}
