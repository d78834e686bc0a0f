package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Asset represents an owned asset in the domain layer
// The core only reads snapshots of assets; the CRUD layer owns their lifecycle
type Asset struct {
	ID         uuid.UUID
	Name       string
	Category   AssetCategory // Empty when the asset has not been categorized yet
	Valuations []Valuation   // Most recent first
	Ownerships []Ownership   // Unordered
	Debts      []Debt
}

// Valuation is a dated value of an asset
type Valuation struct {
	Value    decimal.Decimal
	Currency string
	Date     time.Time
}

// Ownership links one asset to one owning entity
// Percentages across an asset's owners are expected to sum to 100, but this is not enforced
type Ownership struct {
	AssetID    uuid.UUID
	EntityID   uuid.UUID
	Percentage decimal.Decimal // 0-100
}

var hundred = decimal.NewFromInt(100)

// LatestValuation returns the most recent valuation of the asset
// Valuations are stored most-recent-first, but the date wins if the order was not respected.
// On equal dates the earlier record is kept.
func (a *Asset) LatestValuation() (Valuation, bool) {
	if len(a.Valuations) == 0 {
		return Valuation{}, false
	}

	latest := a.Valuations[0]
	for _, v := range a.Valuations[1:] {
		if v.Date.After(latest.Date) {
			latest = v
		}
	}
	return latest, true
}

// Validate ensures the ownership adheres to domain rules
func (o *Ownership) Validate() error {
	if o.EntityID == uuid.Nil {
		return errors.New("ownership must reference an entity")
	}
	if o.Percentage.LessThan(decimal.Zero) || o.Percentage.GreaterThan(hundred) {
		return errors.New("ownership percentage must be between 0 and 100")
	}
	return nil
}

// Validate ensures the asset adheres to domain rules
// Missing categories, valuations and ownerships are allowed: partially-onboarded
// portfolios must still be reportable.
func (a *Asset) Validate() error {
	if a.ID == uuid.Nil {
		return errors.New("asset must have an ID")
	}
	if a.Name == "" {
		return errors.New("asset name cannot be empty")
	}
	for i := range a.Ownerships {
		if err := a.Ownerships[i].Validate(); err != nil {
			return err
		}
	}
	for _, v := range a.Valuations {
		if v.Value.LessThan(decimal.Zero) {
			return errors.New("valuation value cannot be negative")
		}
	}
	return nil
}
