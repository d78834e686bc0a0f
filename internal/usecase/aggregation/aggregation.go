// Package aggregation computes the portfolio analytics served by the report service.
// Every function is pure: the same input always yields the same output.
// Malformed records degrade into zero values or the "Non défini" bucket; only
// unknown scenarios and invalid horizon lists are reported as errors.
package aggregation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-reports/internal/domain"
)

var (
	// ErrUnknownScenario is returned when a projection scenario is not in GrowthRates
	ErrUnknownScenario = errors.New("unknown projection scenario")

	// ErrInvalidHorizons is returned when projection horizons are empty, non-positive or not increasing
	ErrInvalidHorizons = errors.New("invalid projection horizons")
)

// Distribution is the effective portfolio value grouped by asset category
type Distribution struct {
	TotalValue   decimal.Decimal                        `json:"totalValue"`
	AssetsByType map[domain.AssetCategory]CategoryTotal `json:"assetsByType"`
}

// LiquidityAnalysis is the effective portfolio value grouped by liquidity tier
// Only tiers with at least one asset are present.
type LiquidityAnalysis struct {
	TotalValue decimal.Decimal                 `json:"totalValue"`
	Tiers      map[LiquidityTier]CategoryTotal `json:"tiers"`
}

// CategoryImpact is the exposure of one category to a stress scenario
type CategoryImpact struct {
	Value      decimal.Decimal `json:"value"`
	ImpactRate decimal.Decimal `json:"impactRate"`
}

// ScenarioResult is the outcome of one stress scenario
type ScenarioResult struct {
	Scenario      string                                  `json:"scenario"`
	TotalValue    decimal.Decimal                         `json:"totalValue"`
	TotalLoss     decimal.Decimal                         `json:"totalLoss"`
	ImpactRate    decimal.Decimal                         `json:"impactRate"`
	ImpactsByType map[domain.AssetCategory]CategoryImpact `json:"impactsByType"`
}

// StressTestResults holds one result per scenario, in StressScenarios order
type StressTestResults struct {
	BaselineValue decimal.Decimal  `json:"baselineValue"`
	Scenarios     []ScenarioResult `json:"scenarios"`
}

// ProjectionPoint is the projected portfolio value at one horizon
type ProjectionPoint struct {
	Years      int             `json:"years"`
	TotalValue decimal.Decimal `json:"totalValue"`
	GrowthRate decimal.Decimal `json:"growthRate"` // Cumulative growth since today, in percent
}

// ProjectionResults holds one point per horizon, in increasing horizon order
type ProjectionResults struct {
	Scenario      ProjectionScenario `json:"scenario"`
	BaselineValue decimal.Decimal    `json:"baselineValue"`
	Points        []ProjectionPoint  `json:"points"`
}

// AssetTypeDistribution groups the effective value of the filtered assets by category
// Assets without a valuation still register their category with a zero value.
func AssetTypeDistribution(input domain.ReportInput) *Distribution {
	groups, total := byCategory(positions(input))
	return &Distribution{
		TotalValue:   total,
		AssetsByType: groups,
	}
}

// Liquidity groups the effective value of the filtered assets by liquidity tier
func Liquidity(input domain.ReportInput) *LiquidityAnalysis {
	tiers := make(map[LiquidityTier]CategoryTotal)
	total := decimal.Zero
	for _, p := range positions(input) {
		tier := TierFor(p.category)
		t := tiers[tier]
		t.Value = t.Value.Add(p.value)
		t.Count++
		tiers[tier] = t
		total = total.Add(p.value)
	}
	return &LiquidityAnalysis{
		TotalValue: total,
		Tiers:      tiers,
	}
}

// StressTest applies every scenario of StressScenarios to the filtered portfolio
// Logic per scenario:
//   - impactsByType[category] = {value, impactRate}, impactRate defaults to 0
//   - totalLoss = sum(value x -impactRate / 100)
//   - totalValue = baseline - totalLoss
//   - impactRate = -totalLoss / baseline x 100, i.e. the value-weighted average impact
func StressTest(input domain.ReportInput) *StressTestResults {
	groups, baseline := byCategory(positions(input))

	results := &StressTestResults{
		BaselineValue: baseline,
		Scenarios:     make([]ScenarioResult, 0, len(StressScenarios)),
	}

	for _, scenario := range StressScenarios {
		impacts := make(map[domain.AssetCategory]CategoryImpact, len(groups))
		loss := decimal.Zero
		for category, g := range groups {
			rate := scenario.Impacts[category]
			impacts[category] = CategoryImpact{Value: g.Value, ImpactRate: rate}
			loss = loss.Add(g.Value.Mul(rate.Neg()).Div(hundred))
		}

		overall := decimal.Zero
		if baseline.IsPositive() {
			overall = loss.Neg().Div(baseline).Mul(hundred).Round(2)
		}

		results.Scenarios = append(results.Scenarios, ScenarioResult{
			Scenario:      scenario.Name,
			TotalValue:    baseline.Sub(loss),
			TotalLoss:     loss,
			ImpactRate:    overall,
			ImpactsByType: impacts,
		})
	}

	return results
}

// Projection compounds the per-category growth rates of a scenario over each horizon
// A nil horizons slice means DefaultHorizons. Horizons must be positive and strictly increasing.
// With non-negative growth rates, totalValue and growthRate never decrease as years increase.
func Projection(input domain.ReportInput, scenario ProjectionScenario, horizons []int) (*ProjectionResults, error) {
	if _, ok := GrowthRates[scenario]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, scenario)
	}
	if horizons == nil {
		horizons = DefaultHorizons
	}
	if err := validateHorizons(horizons); err != nil {
		return nil, err
	}

	groups, baseline := byCategory(positions(input))

	// Sorted categories keep the decimal arithmetic order stable between calls
	categories := make([]domain.AssetCategory, 0, len(groups))
	for c := range groups {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	points := make([]ProjectionPoint, 0, len(horizons))
	for _, years := range horizons {
		total := decimal.Zero
		for _, c := range categories {
			factor := compound(growthRate(scenario, c), years)
			total = total.Add(groups[c].Value.Mul(factor))
		}

		growth := decimal.Zero
		if baseline.IsPositive() {
			growth = total.Sub(baseline).Div(baseline).Mul(hundred)
		}

		points = append(points, ProjectionPoint{
			Years:      years,
			TotalValue: total.Round(2),
			GrowthRate: growth.Round(2),
		})
	}

	return &ProjectionResults{
		Scenario:      scenario,
		BaselineValue: baseline,
		Points:        points,
	}, nil
}

// ParseScenario converts a caller-supplied name into a ProjectionScenario
func ParseScenario(name string) (ProjectionScenario, error) {
	scenario := ProjectionScenario(name)
	if _, ok := GrowthRates[scenario]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return scenario, nil
}

// compound returns (1 + rate/100)^years
func compound(rate decimal.Decimal, years int) decimal.Decimal {
	base := decimal.NewFromInt(1).Add(rate.Div(hundred))
	factor := decimal.NewFromInt(1)
	for i := 0; i < years; i++ {
		factor = factor.Mul(base)
	}
	return factor
}

func validateHorizons(horizons []int) error {
	if len(horizons) == 0 {
		return fmt.Errorf("%w: no horizon given", ErrInvalidHorizons)
	}
	prev := 0
	for _, h := range horizons {
		if h <= prev {
			return fmt.Errorf("%w: %v must be positive and strictly increasing", ErrInvalidHorizons, horizons)
		}
		prev = h
	}
	return nil
}
