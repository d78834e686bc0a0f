// Package testutil provides fixtures shared by the reporting tests.
package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-reports/internal/domain"
)

// ValuationDate is the date used for fixture valuations
var ValuationDate = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

// AssetBuilder provides a fluent interface for creating test assets.
//
// Example usage:
//
//	asset := testutil.NewAsset().
//	    WithCategory(domain.CategoryEquities).
//	    WithValue(50000).
//	    OwnedBy(entityID, 100).
//	    Build()
type AssetBuilder struct {
	asset domain.Asset
}

// NewAsset creates an AssetBuilder with a fresh ID and no category, valuation or owner.
func NewAsset() *AssetBuilder {
	id := uuid.New()
	return &AssetBuilder{
		asset: domain.Asset{
			ID:   id,
			Name: "Asset " + id.String()[:8],
		},
	}
}

// WithID sets a custom ID.
func (b *AssetBuilder) WithID(id uuid.UUID) *AssetBuilder {
	b.asset.ID = id
	return b
}

// WithName sets a custom name.
func (b *AssetBuilder) WithName(name string) *AssetBuilder {
	b.asset.Name = name
	return b
}

// WithCategory sets the asset category.
func (b *AssetBuilder) WithCategory(category domain.AssetCategory) *AssetBuilder {
	b.asset.Category = category
	return b
}

// WithValue appends a EUR valuation dated ValuationDate.
func (b *AssetBuilder) WithValue(value float64) *AssetBuilder {
	return b.WithValuation(decimal.NewFromFloat(value), "EUR", ValuationDate)
}

// WithValuation appends a valuation.
func (b *AssetBuilder) WithValuation(value decimal.Decimal, currency string, date time.Time) *AssetBuilder {
	b.asset.Valuations = append(b.asset.Valuations, domain.Valuation{
		Value:    value,
		Currency: currency,
		Date:     date,
	})
	return b
}

// OwnedBy appends an ownership record.
func (b *AssetBuilder) OwnedBy(entityID uuid.UUID, percentage float64) *AssetBuilder {
	b.asset.Ownerships = append(b.asset.Ownerships, domain.Ownership{
		AssetID:    b.asset.ID,
		EntityID:   entityID,
		Percentage: decimal.NewFromFloat(percentage),
	})
	return b
}

// Build returns the asset.
func (b *AssetBuilder) Build() domain.Asset {
	return b.asset
}

// NewEntity creates an individual entity.
func NewEntity(name string) domain.Entity {
	return domain.Entity{
		ID:     uuid.New(),
		Name:   name,
		Kind:   domain.EntityKindIndividual,
		UserID: uuid.New(),
	}
}

// ExamplePortfolio returns the two-asset portfolio used across the reporting tests:
// A (Equities, 50000, 100%) and B (Real Estate, 300000, 50%), owned by one entity.
func ExamplePortfolio() domain.ReportInput {
	owner := NewEntity("Alice")
	return domain.ReportInput{
		Assets: []domain.Asset{
			NewAsset().WithName("A").WithCategory(domain.CategoryEquities).WithValue(50000).OwnedBy(owner.ID, 100).Build(),
			NewAsset().WithName("B").WithCategory(domain.CategoryRealEstate).WithValue(300000).OwnedBy(owner.ID, 50).Build(),
		},
		Entities: []domain.Entity{owner},
		Filters:  domain.ReportFilter{Period: "ALL", Currency: "EUR"},
	}
}

// LargePortfolio returns n assets spread over the whole taxonomy and two owners.
// Values are deterministic so that repeated calls differ only by IDs.
func LargePortfolio(n int) domain.ReportInput {
	alice := NewEntity("Alice")
	holdco := NewEntity("Holdco")
	holdco.Kind = domain.EntityKindLegalPerson

	assets := make([]domain.Asset, 0, n)
	for i := 0; i < n; i++ {
		category := domain.Taxonomy[i%len(domain.Taxonomy)]
		b := NewAsset().
			WithName(fmt.Sprintf("Asset %d", i)).
			WithCategory(category).
			WithValue(float64(1000 + i*10))
		if i%3 == 0 {
			b = b.OwnedBy(alice.ID, 60).OwnedBy(holdco.ID, 40)
		} else {
			b = b.OwnedBy(alice.ID, 100)
		}
		assets = append(assets, b.Build())
	}

	return domain.ReportInput{
		Assets:   assets,
		Entities: []domain.Entity{alice, holdco},
		Filters:  domain.ReportFilter{Period: "ALL", Currency: "EUR"},
	}
}

// Reversed returns a copy of the input with assets and entities in reverse order.
func Reversed(input domain.ReportInput) domain.ReportInput {
	out := input
	out.Assets = make([]domain.Asset, len(input.Assets))
	for i, a := range input.Assets {
		out.Assets[len(input.Assets)-1-i] = a
	}
	out.Entities = make([]domain.Entity, len(input.Entities))
	for i, e := range input.Entities {
		out.Entities[len(input.Entities)-1-i] = e
	}
	return out
}
