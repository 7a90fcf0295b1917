package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/telkom-contracts/internal/common"
	"github.com/joseph-ayodele/telkom-contracts/internal/document"
	"github.com/joseph-ayodele/telkom-contracts/internal/export"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
	"github.com/joseph-ayodele/telkom-contracts/internal/repository"
)

const (
	ContractExtractorServiceName = "contracts.v1.ContractExtractor"

	methodExtractPage1 = "/" + ContractExtractorServiceName + "/ExtractPage1"
	methodMergePage2   = "/" + ContractExtractorServiceName + "/MergePage2"
)

// ContractExtractorServer is the gRPC surface. Requests and responses are JSON objects
// carried as google.protobuf.Struct.
//
//	ExtractPage1: {"document": <layout JSON>, "source": "…"} or the layout object itself
//	MergePage2:   {"record": <ContractRecord>, "page2": <layout JSON>, "source": "…"}
type ContractExtractorServer interface {
	ExtractPage1(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MergePage2(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var ContractExtractorServiceDesc = grpc.ServiceDesc{
	ServiceName: ContractExtractorServiceName,
	HandlerType: (*ContractExtractorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ExtractPage1", Handler: extractPage1Handler},
		{MethodName: "MergePage2", Handler: mergePage2Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "contracts/v1/contracts.proto",
}

func RegisterContractExtractorServer(s grpc.ServiceRegistrar, srv ContractExtractorServer) {
	s.RegisterService(&ContractExtractorServiceDesc, srv)
}

func extractPage1Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ContractExtractorServer).ExtractPage1(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodExtractPage1}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ContractExtractorServer).ExtractPage1(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func mergePage2Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ContractExtractorServer).MergePage2(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodMergePage2}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ContractExtractorServer).MergePage2(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ContractExtractorClient calls the service over a client connection.
type ContractExtractorClient struct {
	cc grpc.ClientConnInterface
}

func NewContractExtractorClient(cc grpc.ClientConnInterface) *ContractExtractorClient {
	return &ContractExtractorClient{cc: cc}
}

func (c *ContractExtractorClient) ExtractPage1(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodExtractPage1, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ContractExtractorClient) MergePage2(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodMergePage2, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GRPCServer adapts ContractService to ContractExtractorServer.
type GRPCServer struct {
	svc    *ContractService
	logger *slog.Logger
}

func NewGRPCServer(svc *ContractService, logger *slog.Logger) *GRPCServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &GRPCServer{svc: svc, logger: logger}
}

// NewGRPC builds a grpc.Server with the extractor, health and reflection services registered.
func NewGRPC(svc *ContractService, maxMsgBytes int64, logger *slog.Logger) *grpc.Server {
	var opts []grpc.ServerOption
	if maxMsgBytes > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(int(maxMsgBytes)))
	}
	grpcServer := grpc.NewServer(opts...)
	// Health service
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ContractExtractorServiceName, healthpb.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(grpcServer)

	RegisterContractExtractorServer(grpcServer, NewGRPCServer(svc, logger))
	return grpcServer
}

func (s *GRPCServer) ExtractPage1(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	m := in.AsMap()
	doc, ok := m["document"]
	if !ok {
		doc = m
	}
	if v := common.NewValidator().Field("document", doc, common.Required); v.HasErrors() {
		return nil, common.ValidateAndReturnError(v)
	}
	raw, hash, err := rawFromValue(doc)
	if err != nil {
		return nil, common.InternalErrorf("encode document: %v", err)
	}
	res := s.svc.ExtractPage1(ctx, raw, sourceOr(m, "grpc:page1"), hash)
	return s.reply(res)
}

func (s *GRPCServer) MergePage2(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	m := in.AsMap()
	v := common.NewValidator().
		Field("record", m["record"], common.Required).
		Field("page2", m["page2"], common.Required)
	if v.HasErrors() {
		return nil, common.ValidateAndReturnError(v)
	}
	recJSON, err := json.Marshal(m["record"])
	if err != nil {
		return nil, common.InvalidArgumentErrorf("record: %v", err)
	}
	rec, err := export.UnmarshalRecord(recJSON)
	if err != nil {
		return nil, common.GRPCError(err)
	}
	raw, hash, err := rawFromValue(m["page2"])
	if err != nil {
		return nil, common.InternalErrorf("encode page2: %v", err)
	}
	res := s.svc.MergePage2(ctx, rec, raw, sourceOr(m, "grpc:page2"), repository.ContentHash(recJSON, []byte(hash)))
	return s.reply(res)
}

func (s *GRPCServer) reply(res ExtractResult) (*structpb.Struct, error) {
	out, err := recordStruct(res.Record)
	if err != nil {
		s.logger.Error("grpc.encode.failed", "error", err)
		return nil, common.InternalError("encode record")
	}
	if res.RunID != nil {
		out.Fields["run_id"] = structpb.NewStringValue(res.RunID.String())
	}
	return out, nil
}

func rawFromValue(v any) (document.RawDocument, string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, "", err
	}
	return document.FromValue(v), repository.ContentHash(b), nil
}

func recordStruct(rec *entity.ContractRecord) (*structpb.Struct, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func sourceOr(m map[string]any, fallback string) string {
	if s, ok := m["source"].(string); ok && s != "" {
		return s
	}
	return fallback
}
