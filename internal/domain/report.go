package domain

import "github.com/google/uuid"

// LiquidityFilterAll disables the liquidity filter
const LiquidityFilterAll = "all"

// ReportFilter holds the caller-selected report options
// Every field participates in the cache fingerprint, in a fixed order.
type ReportFilter struct {
	Period             string      // e.g. "1M", "YTD", "ALL"
	Entities           []uuid.UUID // Empty means all owners
	Assets             []uuid.UUID // Empty means all assets
	Currency           string
	ReportType         string
	Liquidity          string // Liquidity tier name, "all" or empty
	IncludeProjections bool
	FiscalOptimization bool
}

// ReportInput is the normalized snapshot handed to the reporting core
type ReportInput struct {
	Assets   []Asset
	Entities []Entity
	Filters  ReportFilter
}
