package aggregation

import (
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-reports/internal/domain"
)

// RateTablesVersion identifies the tables below. Bump it whenever a rate changes.
const RateTablesVersion = "2024.1"

// LiquidityTier classifies a category by how quickly it converts to cash
type LiquidityTier string

const (
	TierImmediate  LiquidityTier = "immediate"
	TierShortTerm  LiquidityTier = "short_term"
	TierMediumTerm LiquidityTier = "medium_term"
	TierLongTerm   LiquidityTier = "long_term"
)

// LiquidityTiers maps each category of the taxonomy to its tier
// Uncategorized and unknown categories fall in TierLongTerm.
var LiquidityTiers = map[domain.AssetCategory]LiquidityTier{
	domain.CategorySavings:    TierImmediate,
	domain.CategoryEquities:   TierShortTerm,
	domain.CategoryCrypto:     TierShortTerm,
	domain.CategoryBonds:      TierMediumTerm,
	domain.CategoryRealEstate: TierLongTerm,
	domain.CategoryOther:      TierLongTerm,
}

// TierFor returns the liquidity tier of a category
func TierFor(category domain.AssetCategory) LiquidityTier {
	if tier, ok := LiquidityTiers[category]; ok {
		return tier
	}
	return TierLongTerm
}

// StressScenario is a named shock expressed as a percentage impact per category
// Categories missing from Impacts are not affected.
type StressScenario struct {
	Name    string
	Impacts map[domain.AssetCategory]decimal.Decimal
}

// StressScenarios lists the shocks applied by StressTest, in output order
var StressScenarios = []StressScenario{
	{
		Name: "Market Crash",
		Impacts: map[domain.AssetCategory]decimal.Decimal{
			domain.CategoryEquities:   decimal.NewFromInt(-30),
			domain.CategoryCrypto:     decimal.NewFromInt(-50),
			domain.CategoryBonds:      decimal.NewFromInt(-5),
			domain.CategoryRealEstate: decimal.NewFromInt(-10),
			domain.CategoryOther:      decimal.NewFromInt(-15),
		},
	},
	{
		Name: "Real-estate Crisis",
		Impacts: map[domain.AssetCategory]decimal.Decimal{
			domain.CategoryRealEstate: decimal.NewFromInt(-25),
			domain.CategoryEquities:   decimal.NewFromInt(-10),
			domain.CategoryBonds:      decimal.NewFromInt(-2),
			domain.CategoryCrypto:     decimal.NewFromInt(-15),
			domain.CategoryOther:      decimal.NewFromInt(-5),
		},
	},
	{
		Name: "Rate Shock",
		Impacts: map[domain.AssetCategory]decimal.Decimal{
			domain.CategoryBonds:      decimal.NewFromInt(-15),
			domain.CategoryRealEstate: decimal.NewFromInt(-12),
			domain.CategoryEquities:   decimal.NewFromInt(-12),
			domain.CategoryCrypto:     decimal.NewFromInt(-20),
			domain.CategoryOther:      decimal.NewFromInt(-5),
		},
	},
	{
		Name: "Liquidity Crisis",
		Impacts: map[domain.AssetCategory]decimal.Decimal{
			domain.CategoryCrypto:     decimal.NewFromInt(-40),
			domain.CategoryEquities:   decimal.NewFromInt(-15),
			domain.CategoryRealEstate: decimal.NewFromInt(-20),
			domain.CategoryBonds:      decimal.NewFromInt(-8),
			domain.CategoryOther:      decimal.NewFromInt(-25),
		},
	},
}

// ProjectionScenario selects a growth rate table
type ProjectionScenario string

const (
	ScenarioOptimistic  ProjectionScenario = "optimistic"
	ScenarioRealistic   ProjectionScenario = "realistic"
	ScenarioPessimistic ProjectionScenario = "pessimistic"
)

// DefaultHorizons are the projection horizons in years
var DefaultHorizons = []int{1, 3, 5, 10, 15, 20}

// GrowthRates holds the annual growth rate in percent per scenario and category
// Invariants: every rate is >= 0, and for each category optimistic >= realistic >= pessimistic.
var GrowthRates = map[ProjectionScenario]map[domain.AssetCategory]decimal.Decimal{
	ScenarioOptimistic: {
		domain.CategoryRealEstate: decimal.NewFromInt(5),
		domain.CategoryEquities:   decimal.NewFromInt(9),
		domain.CategoryBonds:      decimal.NewFromInt(4),
		domain.CategorySavings:    decimal.NewFromInt(3),
		domain.CategoryCrypto:     decimal.NewFromInt(20),
		domain.CategoryOther:      decimal.NewFromInt(4),
	},
	ScenarioRealistic: {
		domain.CategoryRealEstate: decimal.NewFromInt(3),
		domain.CategoryEquities:   decimal.NewFromInt(6),
		domain.CategoryBonds:      decimal.NewFromInt(3),
		domain.CategorySavings:    decimal.NewFromInt(2),
		domain.CategoryCrypto:     decimal.NewFromInt(8),
		domain.CategoryOther:      decimal.NewFromInt(2),
	},
	ScenarioPessimistic: {
		domain.CategoryRealEstate: decimal.NewFromInt(1),
		domain.CategoryEquities:   decimal.NewFromInt(2),
		domain.CategoryBonds:      decimal.NewFromInt(1),
		domain.CategorySavings:    decimal.RequireFromString("0.5"),
		domain.CategoryCrypto:     decimal.Zero,
		domain.CategoryOther:      decimal.Zero,
	},
}

// DefaultGrowthRates apply to uncategorized and unknown categories
var DefaultGrowthRates = map[ProjectionScenario]decimal.Decimal{
	ScenarioOptimistic:  decimal.NewFromInt(2),
	ScenarioRealistic:   decimal.NewFromInt(1),
	ScenarioPessimistic: decimal.Zero,
}

// growthRate returns the annual growth rate of a category under a scenario
func growthRate(scenario ProjectionScenario, category domain.AssetCategory) decimal.Decimal {
	if rate, ok := GrowthRates[scenario][category]; ok {
		return rate
	}
	return DefaultGrowthRates[scenario]
}
