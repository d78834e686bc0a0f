package fingerprint

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/simaogato/wealthflow-reports/internal/domain"
)

// Separator joins an analytic family name and a fingerprint hash
const Separator = ":"

// Compute returns the canonical fingerprint of a report input as a 16 character hex string
// Logic:
//  1. Reduce each asset to the fields that influence report output:
//     ID, category, latest valuation (value, currency, date), sorted (owner, percentage) pairs
//  2. Sort the reduced asset records by asset ID
//  3. Sort the entity IDs
//  4. Serialize the filters in a fixed field order
//  5. Hash everything with xxhash
//
// Permuting assets, entities, ownerships or filter ID lists yields the same fingerprint.
// Changing a valuation, an ownership percentage or any filter field changes it.
// Extra values (e.g. a projection scenario) are appended after the filters.
func Compute(input domain.ReportInput, extra ...string) string {
	h := xxhash.New()

	assets := make([]string, 0, len(input.Assets))
	for i := range input.Assets {
		assets = append(assets, assetRecord(&input.Assets[i]))
	}
	// Records start with the asset ID, so sorting the records sorts by ID
	sort.Strings(assets)
	writeSection(h, "assets", assets)

	entities := make([]string, 0, len(input.Entities))
	for _, e := range input.Entities {
		entities = append(entities, e.ID.String())
	}
	sort.Strings(entities)
	writeSection(h, "entities", entities)

	writeSection(h, "filters", filterFields(input.Filters))
	writeSection(h, "extra", extra)

	return fmt.Sprintf("%016x", h.Sum64())
}

// Tagged returns the fingerprint prefixed with the analytic family name
// e.g. "asset_type_distribution:9f86d081884c7d65"
func Tagged(family string, input domain.ReportInput, extra ...string) string {
	return family + Separator + Compute(input, extra...)
}

// assetRecord serializes the output-relevant fields of an asset
func assetRecord(a *domain.Asset) string {
	var b strings.Builder
	b.WriteString(a.ID.String())
	b.WriteByte('|')
	b.WriteString(strconv.Quote(string(a.Category)))
	b.WriteByte('|')

	if v, ok := a.LatestValuation(); ok {
		b.WriteString(v.Value.String())
		b.WriteByte(',')
		b.WriteString(strconv.Quote(v.Currency))
		b.WriteByte(',')
		b.WriteString(v.Date.UTC().Format(time.RFC3339Nano))
	} else {
		b.WriteString("-")
	}
	b.WriteByte('|')

	owners := make([]string, 0, len(a.Ownerships))
	for _, o := range a.Ownerships {
		owners = append(owners, o.EntityID.String()+"="+o.Percentage.String())
	}
	sort.Strings(owners)
	b.WriteString(strings.Join(owners, ","))

	return b.String()
}

// filterFields serializes the filter in an explicit field order
// New ReportFilter fields must be appended here to take part in the fingerprint.
func filterFields(f domain.ReportFilter) []string {
	return []string{
		"period=" + strconv.Quote(f.Period),
		"entities=" + sortedIDs(f.Entities),
		"assets=" + sortedIDs(f.Assets),
		"currency=" + strconv.Quote(f.Currency),
		"report_type=" + strconv.Quote(f.ReportType),
		"liquidity=" + strconv.Quote(f.Liquidity),
		"include_projections=" + strconv.FormatBool(f.IncludeProjections),
		"fiscal_optimization=" + strconv.FormatBool(f.FiscalOptimization),
	}
}

func sortedIDs(ids []uuid.UUID) string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	sort.Strings(out)
	return "[" + strings.Join(out, ",") + "]"
}

// writeSection writes a named, length-prefixed list so that sections cannot bleed into each other
func writeSection(h *xxhash.Digest, name string, values []string) {
	_, _ = h.WriteString(name)
	_, _ = h.WriteString("#" + strconv.Itoa(len(values)) + "\n")
	for _, v := range values {
		_, _ = h.WriteString(v)
		_, _ = h.WriteString("\n")
	}
}
