package domain

import (
	"errors"

	"github.com/google/uuid"
)

// AssetCategory is the display name of an asset category
// Categories outside the fixed taxonomy are accepted and grouped by their name
type AssetCategory string

const (
	CategoryRealEstate AssetCategory = "Real Estate"
	CategoryEquities   AssetCategory = "Equities"
	CategoryBonds      AssetCategory = "Bonds"
	CategorySavings    AssetCategory = "Savings"
	CategoryCrypto     AssetCategory = "Crypto"
	CategoryOther      AssetCategory = "Other"

	// CategoryUndefined is the bucket for assets without a category,
	// or with neither a valuation nor an ownership
	CategoryUndefined AssetCategory = "Non défini"
)

// Taxonomy lists the categories of the fixed taxonomy in display order
var Taxonomy = []AssetCategory{
	CategoryRealEstate,
	CategoryEquities,
	CategoryBonds,
	CategorySavings,
	CategoryCrypto,
	CategoryOther,
}

// Category represents a persisted asset category row
type Category struct {
	ID   uuid.UUID
	Name AssetCategory
}

// IsKnown reports whether c belongs to the fixed taxonomy
func (c AssetCategory) IsKnown() bool {
	for _, known := range Taxonomy {
		if c == known {
			return true
		}
	}
	return false
}

// Validate ensures the category adheres to domain rules
func (c *Category) Validate() error {
	if c.ID == uuid.Nil {
		return errors.New("category must have an ID")
	}
	if c.Name == "" {
		return errors.New("category name cannot be empty")
	}
	return nil
}
