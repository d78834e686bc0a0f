package aggregation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-reports/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// position is the share of one asset that belongs to the selected owners
type position struct {
	category domain.AssetCategory
	value    decimal.Decimal
}

// CategoryTotal is the aggregated value and asset count of a group
type CategoryTotal struct {
	Value decimal.Decimal `json:"value"`
	Count int             `json:"count"`
}

// positions applies the report filters and computes the effective value of each remaining asset
// Logic:
//   - Filters.Assets (if any) keeps only the listed assets
//   - Assets without a category, or with neither valuation nor ownership, go to CategoryUndefined
//   - Filters.Liquidity (if not empty/"all") keeps only assets of that tier
//   - Effective value = latest valuation x sum(ownership percentage) / 100, where only owners in
//     Filters.Entities count when that list is not empty. Assets without such owners are dropped.
//   - Assets without a valuation contribute zero but keep their category
//
// Ownership totals above or below 100 are used as-is.
func positions(input domain.ReportInput) []position {
	assetFilter := idSet(input.Filters.Assets)
	entityFilter := idSet(input.Filters.Entities)
	liquidity := input.Filters.Liquidity
	filterTier := liquidity != "" && liquidity != domain.LiquidityFilterAll

	out := make([]position, 0, len(input.Assets))
	for i := range input.Assets {
		asset := &input.Assets[i]

		if assetFilter != nil {
			if _, ok := assetFilter[asset.ID]; !ok {
				continue
			}
		}

		latest, hasValuation := asset.LatestValuation()

		category := asset.Category
		if category == "" || (!hasValuation && len(asset.Ownerships) == 0) {
			category = domain.CategoryUndefined
		}

		if filterTier && string(TierFor(category)) != liquidity {
			continue
		}

		share := decimal.Zero
		owned := false
		for _, o := range asset.Ownerships {
			if entityFilter != nil {
				if _, ok := entityFilter[o.EntityID]; !ok {
					continue
				}
			}
			share = share.Add(o.Percentage)
			owned = true
		}
		if entityFilter != nil && !owned {
			continue
		}

		value := decimal.Zero
		if hasValuation {
			value = latest.Value.Mul(share).Div(hundred)
		}

		out = append(out, position{category: category, value: value})
	}

	return out
}

// byCategory groups positions by category
func byCategory(positions []position) (map[domain.AssetCategory]CategoryTotal, decimal.Decimal) {
	groups := make(map[domain.AssetCategory]CategoryTotal)
	total := decimal.Zero
	for _, p := range positions {
		g := groups[p.category]
		g.Value = g.Value.Add(p.value)
		g.Count++
		groups[p.category] = g
		total = total.Add(p.value)
	}
	return groups, total
}

// idSet returns nil for an empty list so callers can tell "no filter" apart
func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
