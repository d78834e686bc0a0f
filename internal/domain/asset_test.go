package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAsset_LatestValuation(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("No valuations", func(t *testing.T) {
		asset := Asset{ID: uuid.New(), Name: "Empty"}
		_, ok := asset.LatestValuation()
		assert.False(t, ok)
	})

	t.Run("Most recent first", func(t *testing.T) {
		asset := Asset{
			Valuations: []Valuation{
				{Value: decimal.NewFromInt(200), Currency: "EUR", Date: feb},
				{Value: decimal.NewFromInt(100), Currency: "EUR", Date: jan},
			},
		}
		v, ok := asset.LatestValuation()
		assert.True(t, ok)
		assert.True(t, v.Value.Equal(decimal.NewFromInt(200)))
	})

	t.Run("Out of order valuations use the date", func(t *testing.T) {
		asset := Asset{
			Valuations: []Valuation{
				{Value: decimal.NewFromInt(100), Currency: "EUR", Date: jan},
				{Value: decimal.NewFromInt(200), Currency: "EUR", Date: feb},
			},
		}
		v, ok := asset.LatestValuation()
		assert.True(t, ok)
		assert.True(t, v.Value.Equal(decimal.NewFromInt(200)))
	})

	t.Run("Equal dates keep the first record", func(t *testing.T) {
		asset := Asset{
			Valuations: []Valuation{
				{Value: decimal.NewFromInt(300), Currency: "EUR", Date: feb},
				{Value: decimal.NewFromInt(400), Currency: "EUR", Date: feb},
			},
		}
		v, _ := asset.LatestValuation()
		assert.True(t, v.Value.Equal(decimal.NewFromInt(300)))
	})
}

func TestAsset_Validate(t *testing.T) {
	entityID := uuid.New()

	tests := []struct {
		name    string
		asset   Asset
		wantErr bool
		errMsg  string
	}{
		{
			name: "Uncategorized asset without valuation should pass",
			asset: Asset{
				ID:   uuid.New(),
				Name: "Onboarding",
			},
			wantErr: false,
		},
		{
			name: "Asset without ID should fail",
			asset: Asset{
				Name: "No ID",
			},
			wantErr: true,
			errMsg:  "asset must have an ID",
		},
		{
			name: "Asset with empty name should fail",
			asset: Asset{
				ID: uuid.New(),
			},
			wantErr: true,
			errMsg:  "asset name cannot be empty",
		},
		{
			name: "Ownership above 100 should fail",
			asset: Asset{
				ID:   uuid.New(),
				Name: "Flat",
				Ownerships: []Ownership{
					{EntityID: entityID, Percentage: decimal.NewFromInt(120)},
				},
			},
			wantErr: true,
			errMsg:  "ownership percentage must be between 0 and 100",
		},
		{
			name: "Ownership without entity should fail",
			asset: Asset{
				ID:   uuid.New(),
				Name: "Flat",
				Ownerships: []Ownership{
					{Percentage: decimal.NewFromInt(50)},
				},
			},
			wantErr: true,
			errMsg:  "ownership must reference an entity",
		},
		{
			name: "Owners summing above 100 should pass",
			asset: Asset{
				ID:       uuid.New(),
				Name:     "Flat",
				Category: CategoryRealEstate,
				Ownerships: []Ownership{
					{EntityID: entityID, Percentage: decimal.NewFromInt(80)},
					{EntityID: uuid.New(), Percentage: decimal.NewFromInt(40)},
				},
			},
			wantErr: false,
		},
		{
			name: "Negative valuation should fail",
			asset: Asset{
				ID:   uuid.New(),
				Name: "Broken",
				Valuations: []Valuation{
					{Value: decimal.NewFromInt(-1), Currency: "EUR"},
				},
			},
			wantErr: true,
			errMsg:  "valuation value cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.asset.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAssetCategory_IsKnown(t *testing.T) {
	assert.True(t, CategoryEquities.IsKnown())
	assert.True(t, CategoryRealEstate.IsKnown())
	assert.False(t, CategoryUndefined.IsKnown())
	assert.False(t, AssetCategory("Art").IsKnown())
}
