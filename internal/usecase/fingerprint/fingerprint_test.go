package fingerprint

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-reports/internal/domain"
	"github.com/simaogato/wealthflow-reports/internal/testutil"
)

// clone deep-copies the parts of the input the tests mutate
func clone(input domain.ReportInput) domain.ReportInput {
	out := input
	out.Assets = make([]domain.Asset, len(input.Assets))
	for i, a := range input.Assets {
		a.Valuations = append([]domain.Valuation(nil), a.Valuations...)
		a.Ownerships = append([]domain.Ownership(nil), a.Ownerships...)
		out.Assets[i] = a
	}
	out.Entities = append([]domain.Entity(nil), input.Entities...)
	out.Filters.Entities = append([]uuid.UUID(nil), input.Filters.Entities...)
	out.Filters.Assets = append([]uuid.UUID(nil), input.Filters.Assets...)
	return out
}

func TestCompute_FixedLength(t *testing.T) {
	key := Compute(testutil.ExamplePortfolio())
	assert.Len(t, key, 16)

	empty := Compute(domain.ReportInput{})
	assert.Len(t, empty, 16)
}

func TestCompute_Deterministic(t *testing.T) {
	input := testutil.LargePortfolio(50)
	assert.Equal(t, Compute(input), Compute(input))
	assert.Equal(t, Compute(input), Compute(clone(input)))
}

func TestCompute_OrderIndependent(t *testing.T) {
	input := testutil.LargePortfolio(25)

	t.Run("Reversed assets and entities", func(t *testing.T) {
		assert.Equal(t, Compute(input), Compute(testutil.Reversed(input)))
	})

	t.Run("Swapped ownership order", func(t *testing.T) {
		permuted := clone(input)
		owners := permuted.Assets[0].Ownerships
		require.Len(t, owners, 2)
		owners[0], owners[1] = owners[1], owners[0]
		assert.Equal(t, Compute(input), Compute(permuted))
	})

	t.Run("Swapped filter entity order", func(t *testing.T) {
		a, b := uuid.New(), uuid.New()
		left := clone(input)
		left.Filters.Entities = []uuid.UUID{a, b}
		right := clone(input)
		right.Filters.Entities = []uuid.UUID{b, a}
		assert.Equal(t, Compute(left), Compute(right))
	})

	t.Run("Equivalent decimal notation", func(t *testing.T) {
		left := clone(input)
		left.Assets[0].Valuations[0].Value = decimal.RequireFromString("1500.50")
		right := clone(input)
		right.Assets[0].Valuations[0].Value = decimal.RequireFromString("1500.5")
		assert.Equal(t, Compute(left), Compute(right))
	})
}

func TestCompute_ContentSensitive(t *testing.T) {
	base := testutil.ExamplePortfolio()
	baseKey := Compute(base)

	tests := []struct {
		name   string
		mutate func(in *domain.ReportInput)
	}{
		{"Valuation value", func(in *domain.ReportInput) {
			in.Assets[0].Valuations[0].Value = decimal.NewFromInt(50001)
		}},
		{"Valuation currency", func(in *domain.ReportInput) {
			in.Assets[0].Valuations[0].Currency = "USD"
		}},
		{"Valuation date", func(in *domain.ReportInput) {
			in.Assets[0].Valuations[0].Date = in.Assets[0].Valuations[0].Date.AddDate(0, 0, 1)
		}},
		{"Ownership percentage", func(in *domain.ReportInput) {
			in.Assets[1].Ownerships[0].Percentage = decimal.NewFromInt(51)
		}},
		{"Category", func(in *domain.ReportInput) {
			in.Assets[0].Category = domain.CategoryBonds
		}},
		{"Extra asset", func(in *domain.ReportInput) {
			in.Assets = append(in.Assets, testutil.NewAsset().Build())
		}},
		{"Extra entity", func(in *domain.ReportInput) {
			in.Entities = append(in.Entities, testutil.NewEntity("Bob"))
		}},
		{"Filter period", func(in *domain.ReportInput) { in.Filters.Period = "1Y" }},
		{"Filter entities", func(in *domain.ReportInput) { in.Filters.Entities = []uuid.UUID{in.Entities[0].ID} }},
		{"Filter assets", func(in *domain.ReportInput) { in.Filters.Assets = []uuid.UUID{in.Assets[0].ID} }},
		{"Filter currency", func(in *domain.ReportInput) { in.Filters.Currency = "USD" }},
		{"Filter report type", func(in *domain.ReportInput) { in.Filters.ReportType = "fiscal" }},
		{"Filter liquidity", func(in *domain.ReportInput) { in.Filters.Liquidity = "immediate" }},
		{"Filter include projections", func(in *domain.ReportInput) { in.Filters.IncludeProjections = true }},
		{"Filter fiscal optimization", func(in *domain.ReportInput) { in.Filters.FiscalOptimization = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mutated := clone(base)
			tt.mutate(&mutated)
			assert.NotEqual(t, baseKey, Compute(mutated))
		})
	}
}

func TestCompute_IgnoresNonOutputFields(t *testing.T) {
	base := testutil.ExamplePortfolio()
	renamed := clone(base)
	renamed.Assets[0].Name = "Renamed"
	renamed.Entities[0].Name = "Renamed"

	// Older valuations do not influence any analytic
	renamed.Assets[0].Valuations = append(renamed.Assets[0].Valuations, domain.Valuation{
		Value:    decimal.NewFromInt(1),
		Currency: "EUR",
		Date:     testutil.ValuationDate.AddDate(-1, 0, 0),
	})

	assert.Equal(t, Compute(base), Compute(renamed))
}

func TestCompute_ExtraValues(t *testing.T) {
	input := testutil.ExamplePortfolio()
	assert.NotEqual(t, Compute(input, "optimistic"), Compute(input, "pessimistic"))
	assert.NotEqual(t, Compute(input), Compute(input, ""))
}

func TestTagged(t *testing.T) {
	input := testutil.ExamplePortfolio()
	key := Tagged("asset_type_distribution", input)

	assert.True(t, strings.HasPrefix(key, "asset_type_distribution:"))
	assert.Equal(t, "asset_type_distribution:"+Compute(input), key)
	assert.NotEqual(t, key, Tagged("liquidity_analysis", input))
}
