package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified name of the report service
const ServiceName = "wealthflow.reports.v1.ReportService"

// RPC method names
const (
	MethodGetAssetTypeDistribution = "GetAssetTypeDistribution"
	MethodGetLiquidityAnalysis     = "GetLiquidityAnalysis"
	MethodGetStressTestResults     = "GetStressTestResults"
	MethodGetProjectionResults     = "GetProjectionResults"
	MethodGetCacheStats            = "GetCacheStats"
	MethodClearCache               = "ClearCache"
	MethodInvalidateCache          = "InvalidateCache"
	MethodPreviewAmortization      = "PreviewAmortization"
	MethodCreateDebt               = "CreateDebt"
	MethodGetDebt                  = "GetDebt"
	MethodMarkPaymentPaid          = "MarkPaymentPaid"
)

// ReportServiceServer is the server API for the report service
// Requests and responses are JSON-shaped google.protobuf.Struct messages.
type ReportServiceServer interface {
	GetAssetTypeDistribution(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetLiquidityAnalysis(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStressTestResults(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetProjectionResults(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCacheStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClearCache(context.Context, *structpb.Struct) (*structpb.Struct, error)
	InvalidateCache(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PreviewAmortization(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateDebt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDebt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MarkPaymentPaid(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type rpcFunc func(ReportServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a server method to grpc.MethodHandler, the way generated code does
func unaryHandler(method string, call rpcFunc) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ReportServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ReportServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ReportServiceDesc is the grpc.ServiceDesc for the report service
var ReportServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReportServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodGetAssetTypeDistribution, Handler: unaryHandler(MethodGetAssetTypeDistribution, ReportServiceServer.GetAssetTypeDistribution)},
		{MethodName: MethodGetLiquidityAnalysis, Handler: unaryHandler(MethodGetLiquidityAnalysis, ReportServiceServer.GetLiquidityAnalysis)},
		{MethodName: MethodGetStressTestResults, Handler: unaryHandler(MethodGetStressTestResults, ReportServiceServer.GetStressTestResults)},
		{MethodName: MethodGetProjectionResults, Handler: unaryHandler(MethodGetProjectionResults, ReportServiceServer.GetProjectionResults)},
		{MethodName: MethodGetCacheStats, Handler: unaryHandler(MethodGetCacheStats, ReportServiceServer.GetCacheStats)},
		{MethodName: MethodClearCache, Handler: unaryHandler(MethodClearCache, ReportServiceServer.ClearCache)},
		{MethodName: MethodInvalidateCache, Handler: unaryHandler(MethodInvalidateCache, ReportServiceServer.InvalidateCache)},
		{MethodName: MethodPreviewAmortization, Handler: unaryHandler(MethodPreviewAmortization, ReportServiceServer.PreviewAmortization)},
		{MethodName: MethodCreateDebt, Handler: unaryHandler(MethodCreateDebt, ReportServiceServer.CreateDebt)},
		{MethodName: MethodGetDebt, Handler: unaryHandler(MethodGetDebt, ReportServiceServer.GetDebt)},
		{MethodName: MethodMarkPaymentPaid, Handler: unaryHandler(MethodMarkPaymentPaid, ReportServiceServer.MarkPaymentPaid)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wealthflow/reports/v1/reports.proto",
}

// RegisterReportServiceServer registers srv on s
func RegisterReportServiceServer(s grpc.ServiceRegistrar, srv ReportServiceServer) {
	s.RegisterService(&ReportServiceDesc, srv)
}

// FullMethod returns the /service/method path of an RPC
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// ReportServiceClient calls the report service over a client connection
type ReportServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewReportServiceClient creates a new ReportServiceClient
func NewReportServiceClient(cc grpc.ClientConnInterface) *ReportServiceClient {
	return &ReportServiceClient{cc: cc}
}

// Call invokes one RPC of the report service
func (c *ReportServiceClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
