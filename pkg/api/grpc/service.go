package grpc

import (
	"context"

	grpclib "google.golang.org/grpc"
)

// ServiceName is the fully-qualified gRPC service name, mirroring what
// protoc-gen-go-grpc would derive from a "package kdscan;
// service ClusterService" .proto file.
const ServiceName = "kdscan.ClusterService"

// ClusterServiceServer is the interface a gRPC server implementation
// must satisfy, in the same shape protoc-gen-go-grpc emits for a
// unary-only service.
type ClusterServiceServer interface {
	Insert(context.Context, *InsertRequest) (*InsertResponse, error)
	Build(context.Context, *BuildRequest) (*BuildResponse, error)
	Cluster(context.Context, *ClusterRequest) (*ClusterResponse, error)
	Search(context.Context, *SearchRequest) (*SearchResponse, error)
	RangeQuery(context.Context, *RangeQueryRequest) (*RangeQueryResponse, error)
	Stats(context.Context, *StatsRequest) (*StatsResponse, error)
	HealthCheck(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error)
}

// RegisterClusterServiceServer registers srv against s, the same call
// a generated RegisterXServer function makes.
func RegisterClusterServiceServer(s *grpclib.Server, srv ClusterServiceServer) {
	s.RegisterService(&clusterServiceDesc, srv)
}

func clusterServiceInsertHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(InsertRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClusterServiceServer).Insert(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/Insert"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClusterServiceServer).Insert(ctx, req.(*InsertRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func clusterServiceBuildHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(BuildRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClusterServiceServer).Build(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/Build"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClusterServiceServer).Build(ctx, req.(*BuildRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func clusterServiceClusterHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(ClusterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClusterServiceServer).Cluster(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/Cluster"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClusterServiceServer).Cluster(ctx, req.(*ClusterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func clusterServiceSearchHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(SearchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClusterServiceServer).Search(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/Search"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClusterServiceServer).Search(ctx, req.(*SearchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func clusterServiceRangeQueryHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(RangeQueryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClusterServiceServer).RangeQuery(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/RangeQuery"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClusterServiceServer).RangeQuery(ctx, req.(*RangeQueryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func clusterServiceStatsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(StatsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClusterServiceServer).Stats(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/Stats"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClusterServiceServer).Stats(ctx, req.(*StatsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func clusterServiceHealthCheckHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(HealthCheckRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClusterServiceServer).HealthCheck(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/HealthCheck"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClusterServiceServer).HealthCheck(ctx, req.(*HealthCheckRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// clusterServiceDesc is the hand-written equivalent of the
// grpc.ServiceDesc protoc-gen-go-grpc would emit from a ClusterService
// .proto definition: one entry per unary RPC, each pointing at a
// handler that decodes the request, runs interceptors, and dispatches
// to the ClusterServiceServer implementation.
var clusterServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClusterServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Insert", Handler: clusterServiceInsertHandler},
		{MethodName: "Build", Handler: clusterServiceBuildHandler},
		{MethodName: "Cluster", Handler: clusterServiceClusterHandler},
		{MethodName: "Search", Handler: clusterServiceSearchHandler},
		{MethodName: "RangeQuery", Handler: clusterServiceRangeQueryHandler},
		{MethodName: "Stats", Handler: clusterServiceStatsHandler},
		{MethodName: "HealthCheck", Handler: clusterServiceHealthCheckHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "kdscan/clusterservice.proto",
}
