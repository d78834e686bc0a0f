package report

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/simaogato/wealthflow-reports/internal/cache"
	"github.com/simaogato/wealthflow-reports/internal/domain"
	"github.com/simaogato/wealthflow-reports/internal/usecase/aggregation"
	"github.com/simaogato/wealthflow-reports/internal/usecase/fingerprint"
)

// Analytic families, used as cache key prefixes
const (
	FamilyDistribution = "asset_type_distribution"
	FamilyLiquidity    = "liquidity_analysis"
	FamilyStressTest   = "stress_test_results"
	FamilyProjection   = "projection_results"
)

// Families lists every analytic family served by ReportService
var Families = []string{FamilyDistribution, FamilyLiquidity, FamilyStressTest, FamilyProjection}

// ReportService serves the portfolio analytics through a shared ReportCache
// Results returned by the Get* methods are shared with the cache and must not be modified.
type ReportService struct {
	Cache *cache.ReportCache

	inflight     singleflight.Group
	computations atomic.Int64
}

// NewReportService creates a new ReportService instance
func NewReportService(reportCache *cache.ReportCache) *ReportService {
	return &ReportService{
		Cache: reportCache,
	}
}

// GetAssetTypeDistribution returns the value distribution by asset category
func (s *ReportService) GetAssetTypeDistribution(ctx context.Context, input domain.ReportInput) (*aggregation.Distribution, error) {
	key := fingerprint.Tagged(FamilyDistribution, input)
	v, err := s.cached(ctx, key, func() (any, error) {
		return aggregation.AssetTypeDistribution(input), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*aggregation.Distribution), nil
}

// GetLiquidityAnalysis returns the value distribution by liquidity tier
func (s *ReportService) GetLiquidityAnalysis(ctx context.Context, input domain.ReportInput) (*aggregation.LiquidityAnalysis, error) {
	key := fingerprint.Tagged(FamilyLiquidity, input)
	v, err := s.cached(ctx, key, func() (any, error) {
		return aggregation.Liquidity(input), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*aggregation.LiquidityAnalysis), nil
}

// GetStressTestResults returns the outcome of every stress scenario
func (s *ReportService) GetStressTestResults(ctx context.Context, input domain.ReportInput) (*aggregation.StressTestResults, error) {
	key := fingerprint.Tagged(FamilyStressTest, input)
	v, err := s.cached(ctx, key, func() (any, error) {
		return aggregation.StressTest(input), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*aggregation.StressTestResults), nil
}

// GetProjectionResults returns the projected value over the default horizons
// The scenario is validated before the cache is consulted and is part of the key.
func (s *ReportService) GetProjectionResults(ctx context.Context, input domain.ReportInput, scenario string) (*aggregation.ProjectionResults, error) {
	parsed, err := aggregation.ParseScenario(scenario)
	if err != nil {
		return nil, err
	}

	key := fingerprint.Tagged(FamilyProjection, input, string(parsed))
	v, err := s.cached(ctx, key, func() (any, error) {
		return aggregation.Projection(input, parsed, nil)
	})
	if err != nil {
		return nil, err
	}
	return v.(*aggregation.ProjectionResults), nil
}

// CacheSize returns the number of cached results
func (s *ReportService) CacheSize() int {
	return s.Cache.Size()
}

// Stats returns the cache statistics
func (s *ReportService) Stats() cache.Stats {
	return s.Cache.Stats()
}

// ClearCache drops every cached result and resets the statistics
func (s *ReportService) ClearCache() {
	s.Cache.Clear()
}

// InvalidateByPattern drops every cached result whose key contains pattern
// An empty pattern drops everything but keeps the statistics.
func (s *ReportService) InvalidateByPattern(pattern string) int {
	return s.Cache.Invalidate(pattern)
}

// InvalidateFamily drops the cached results of one analytic family only
// Unlike InvalidateByPattern, a family name can never match a fingerprint by accident.
func (s *ReportService) InvalidateFamily(family string) (int, error) {
	for _, f := range Families {
		if f == family {
			return s.Cache.InvalidatePrefix(family + fingerprint.Separator), nil
		}
	}
	return 0, fmt.Errorf("unknown analytic family: %s", family)
}

// Computations returns how many analytics were actually computed since startup
func (s *ReportService) Computations() int64 {
	return s.computations.Load()
}

// cached returns the cached value for key, computing and storing it on a miss
// Logic:
//  1. Cache hit: return it (counted as a hit)
//  2. Miss: join the in-flight computation for key, or start one
//  3. The computation re-checks the cache without touching the statistics, so a caller
//     arriving just after a previous computation finished does not compute again
//  4. The computation time is recorded with the result
func (s *ReportService) cached(ctx context.Context, key string, compute func() (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if v, ok := s.Cache.Get(key); ok {
		return v, nil
	}

	ch := s.inflight.DoChan(key, func() (any, error) {
		if v, ok := s.Cache.Peek(key); ok {
			return v, nil
		}

		start := time.Now()
		v, err := compute()
		if err != nil {
			return nil, err
		}
		s.computations.Add(1)
		s.Cache.Put(key, v, time.Since(start))
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
