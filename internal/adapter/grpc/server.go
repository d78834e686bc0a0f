package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/wealthflow-reports/internal/cache"
	"github.com/simaogato/wealthflow-reports/internal/domain"
	"github.com/simaogato/wealthflow-reports/internal/usecase/aggregation"
	"github.com/simaogato/wealthflow-reports/internal/usecase/amortization"
	"github.com/simaogato/wealthflow-reports/internal/usecase/debt"
	"github.com/simaogato/wealthflow-reports/internal/usecase/report"
)

// Server implements ReportServiceServer
type Server struct {
	ReportService *report.ReportService
	DebtService   *debt.DebtService
	Snapshots     domain.SnapshotRepository
}

var _ ReportServiceServer = (*Server)(nil)

// snapshotFlusher is implemented by snapshot repositories that keep copies in memory
type snapshotFlusher interface {
	Flush()
}

// NewServer creates a new gRPC server instance
func NewServer(
	reportService *report.ReportService,
	debtService *debt.DebtService,
	snapshots domain.SnapshotRepository,
) *Server {
	return &Server{
		ReportService: reportService,
		DebtService:   debtService,
		Snapshots:     snapshots,
	}
}

// loadInput decodes a report request and loads the caller's snapshot
func (s *Server) loadInput(ctx context.Context, in *structpb.Struct) (domain.ReportInput, reportRequest, error) {
	var req reportRequest
	if err := decode(in, &req); err != nil {
		return domain.ReportInput{}, req, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return domain.ReportInput{}, req, status.Errorf(codes.InvalidArgument, "invalid user_id format: %v", err)
	}

	filters, err := req.Filters.toFilter()
	if err != nil {
		return domain.ReportInput{}, req, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	snapshot, err := s.Snapshots.LoadSnapshot(ctx, userID)
	if err != nil {
		return domain.ReportInput{}, req, mapError(err)
	}

	input := *snapshot
	input.Filters = filters
	return input, req, nil
}

// GetAssetTypeDistribution handles the GetAssetTypeDistribution RPC
func (s *Server) GetAssetTypeDistribution(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	input, _, err := s.loadInput(ctx, in)
	if err != nil {
		return nil, err
	}

	result, err := s.ReportService.GetAssetTypeDistribution(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}

	return withDisplayTotal(result, formatMoney(result.TotalValue, input.Filters.Currency))
}

// GetLiquidityAnalysis handles the GetLiquidityAnalysis RPC
func (s *Server) GetLiquidityAnalysis(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	input, _, err := s.loadInput(ctx, in)
	if err != nil {
		return nil, err
	}

	result, err := s.ReportService.GetLiquidityAnalysis(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}

	return withDisplayTotal(result, formatMoney(result.TotalValue, input.Filters.Currency))
}

// GetStressTestResults handles the GetStressTestResults RPC
func (s *Server) GetStressTestResults(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	input, _, err := s.loadInput(ctx, in)
	if err != nil {
		return nil, err
	}

	result, err := s.ReportService.GetStressTestResults(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}

	return encode(result)
}

// GetProjectionResults handles the GetProjectionResults RPC
// An empty scenario means realistic.
func (s *Server) GetProjectionResults(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	input, req, err := s.loadInput(ctx, in)
	if err != nil {
		return nil, err
	}

	scenario := req.Scenario
	if scenario == "" {
		scenario = string(aggregation.ScenarioRealistic)
	}

	result, err := s.ReportService.GetProjectionResults(ctx, input, scenario)
	if err != nil {
		return nil, mapError(err)
	}

	return encode(result)
}

// GetCacheStats handles the GetCacheStats RPC
func (s *Server) GetCacheStats(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return encode(newStatsView(s.ReportService.Stats()))
}

// ClearCache handles the ClearCache RPC
// Cached snapshots are dropped together with the cached results.
func (s *Server) ClearCache(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	s.ReportService.ClearCache()
	s.flushSnapshots()
	return encode(newStatsView(s.ReportService.Stats()))
}

// InvalidateCache handles the InvalidateCache RPC
// A family removes the entries of one analytic; otherwise pattern is matched as a substring.
func (s *Server) InvalidateCache(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req invalidateRequest
	if err := decode(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}

	var removed int
	if req.Family != "" {
		n, err := s.ReportService.InvalidateFamily(req.Family)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "%v", err)
		}
		removed = n
	} else {
		removed = s.ReportService.InvalidateByPattern(req.Pattern)
	}

	return encode(map[string]any{
		"removed": removed,
		"size":    s.ReportService.CacheSize(),
	})
}

// PreviewAmortization handles the PreviewAmortization RPC
// The schedule is computed but nothing is saved.
func (s *Server) PreviewAmortization(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	input, err := decodeDebt(in)
	if err != nil {
		return nil, err
	}

	preview, err := s.DebtService.PreviewDebt(input)
	if err != nil {
		return nil, mapError(err)
	}

	return encode(newDebtView(preview))
}

// CreateDebt handles the CreateDebt RPC
func (s *Server) CreateDebt(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	input, err := decodeDebt(in)
	if err != nil {
		return nil, err
	}

	created, err := s.DebtService.CreateDebt(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	s.flushSnapshots()

	return encode(newDebtView(created))
}

// GetDebt handles the GetDebt RPC
func (s *Server) GetDebt(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req paymentRequest
	if err := decode(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	debtID, err := uuid.Parse(req.DebtID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid debt_id format: %v", err)
	}

	found, err := s.DebtService.GetDebt(ctx, debtID)
	if err != nil {
		return nil, mapError(err)
	}

	return encode(newDebtView(found))
}

// MarkPaymentPaid handles the MarkPaymentPaid RPC
func (s *Server) MarkPaymentPaid(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req paymentRequest
	if err := decode(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	debtID, err := uuid.Parse(req.DebtID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid debt_id format: %v", err)
	}
	if req.PaymentNumber <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "payment_number must be positive")
	}

	updated, err := s.DebtService.MarkPaymentPaid(ctx, debtID, req.PaymentNumber)
	if err != nil {
		return nil, mapError(err)
	}
	s.flushSnapshots()

	return encode(newDebtView(updated))
}

func (s *Server) flushSnapshots() {
	if f, ok := s.Snapshots.(snapshotFlusher); ok {
		f.Flush()
	}
}

func decodeDebt(in *structpb.Struct) (debt.CreateDebtInput, error) {
	var req debtRequest
	if err := decode(in, &req); err != nil {
		return debt.CreateDebtInput{}, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	input, err := req.toInput()
	if err != nil {
		return debt.CreateDebtInput{}, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	return input, nil
}

// withDisplayTotal encodes v and adds the formatted total next to the raw value
func withDisplayTotal(v any, display string) (*structpb.Struct, error) {
	out, err := encode(v)
	if err != nil {
		return nil, err
	}
	if display != "" {
		out.Fields["displayTotal"] = structpb.NewStringValue(display)
	}
	return out, nil
}

type statsView struct {
	Hits                   int64   `json:"hits"`
	Misses                 int64   `json:"misses"`
	HitRate                float64 `json:"hitRate"`
	AverageComputationTime float64 `json:"averageComputationTime"` // Milliseconds
	Size                   int     `json:"size"`
	Capacity               int     `json:"capacity"`
}

func newStatsView(stats cache.Stats) statsView {
	return statsView{
		Hits:                   stats.Hits,
		Misses:                 stats.Misses,
		HitRate:                stats.HitRate(),
		AverageComputationTime: float64(stats.AverageComputationTime.Microseconds()) / 1000,
		Size:                   stats.Size,
		Capacity:               stats.Capacity,
	}
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, aggregation.ErrUnknownScenario),
		errors.Is(err, aggregation.ErrInvalidHorizons),
		errors.Is(err, amortization.ErrInvalidDuration),
		errors.Is(err, amortization.ErrInvalidPrincipal),
		errors.Is(err, amortization.ErrInvalidRate),
		errors.Is(err, amortization.ErrUnknownAmortizationType):
		return status.Error(codes.InvalidArgument, err.Error())
	}

	errorMsg := err.Error()

	// Map common validation errors to InvalidArgument
	if strings.Contains(errorMsg, "must be positive") ||
		strings.Contains(errorMsg, "cannot be") ||
		strings.Contains(errorMsg, "invalid") ||
		strings.Contains(errorMsg, "must be attached") ||
		strings.Contains(errorMsg, "must have") {
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	}

	if strings.Contains(errorMsg, "already paid") {
		return status.Errorf(codes.FailedPrecondition, "%s", errorMsg)
	}

	if strings.Contains(errorMsg, "not found") {
		return status.Errorf(codes.NotFound, "%s", errorMsg)
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", errorMsg)
}
