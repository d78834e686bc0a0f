package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/wealthflow-reports/internal/domain"
)

// Fixed UUIDs for the taxonomy categories, stable across installations
var (
	CategoryRealEstateID = uuid.MustParse("00000000-0000-0000-0000-000000000101")
	CategoryEquitiesID   = uuid.MustParse("00000000-0000-0000-0000-000000000102")
	CategoryBondsID      = uuid.MustParse("00000000-0000-0000-0000-000000000103")
	CategorySavingsID    = uuid.MustParse("00000000-0000-0000-0000-000000000104")
	CategoryCryptoID     = uuid.MustParse("00000000-0000-0000-0000-000000000105")
	CategoryOtherID      = uuid.MustParse("00000000-0000-0000-0000-000000000106")
)

// TaxonomyCategories returns the rows seeded for the fixed taxonomy, in domain.Taxonomy order
func TaxonomyCategories() []domain.Category {
	return []domain.Category{
		{ID: CategoryRealEstateID, Name: domain.CategoryRealEstate},
		{ID: CategoryEquitiesID, Name: domain.CategoryEquities},
		{ID: CategoryBondsID, Name: domain.CategoryBonds},
		{ID: CategorySavingsID, Name: domain.CategorySavings},
		{ID: CategoryCryptoID, Name: domain.CategoryCrypto},
		{ID: CategoryOtherID, Name: domain.CategoryOther},
	}
}

// CategorySeeder handles seeding of the asset category taxonomy
type CategorySeeder struct {
	repo domain.CategoryRepository
}

// NewCategorySeeder creates a new CategorySeeder instance
func NewCategorySeeder(repo domain.CategoryRepository) *CategorySeeder {
	return &CategorySeeder{
		repo: repo,
	}
}

// Seed ensures every taxonomy category exists in the database
// Missing categories are created; existing ones are left untouched.
// It returns the number of categories created.
func (s *CategorySeeder) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, category := range TaxonomyCategories() {
		_, err := s.repo.GetByID(ctx, category.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return created, fmt.Errorf("failed to look up category %s: %w", category.Name, err)
		}

		if err := category.Validate(); err != nil {
			return created, err
		}
		if err := s.repo.Create(ctx, &category); err != nil {
			return created, fmt.Errorf("failed to create category %s: %w", category.Name, err)
		}
		created++
	}

	return created, nil
}
