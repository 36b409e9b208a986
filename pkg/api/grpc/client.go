package grpc

import (
	"context"

	grpclib "google.golang.org/grpc"
)

// ClusterServiceClient is the client-side counterpart of
// ClusterServiceServer, in the same shape protoc-gen-go-grpc emits for
// a unary-only service's client stub.
type ClusterServiceClient interface {
	Insert(ctx context.Context, in *InsertRequest) (*InsertResponse, error)
	Build(ctx context.Context, in *BuildRequest) (*BuildResponse, error)
	Cluster(ctx context.Context, in *ClusterRequest) (*ClusterResponse, error)
	Search(ctx context.Context, in *SearchRequest) (*SearchResponse, error)
	RangeQuery(ctx context.Context, in *RangeQueryRequest) (*RangeQueryResponse, error)
	Stats(ctx context.Context, in *StatsRequest) (*StatsResponse, error)
	HealthCheck(ctx context.Context, in *HealthCheckRequest) (*HealthCheckResponse, error)
}

type clusterServiceClient struct {
	cc *grpclib.ClientConn
}

// NewClusterServiceClient wraps cc, a connection dialed with
// grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})), in the
// same way a generated NewXClient constructor would.
func NewClusterServiceClient(cc *grpclib.ClientConn) ClusterServiceClient {
	return &clusterServiceClient{cc: cc}
}

func (c *clusterServiceClient) Insert(ctx context.Context, in *InsertRequest) (*InsertResponse, error) {
	out := new(InsertResponse)
	if err := c.cc.Invoke(ctx, ServiceName+"/Insert", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clusterServiceClient) Build(ctx context.Context, in *BuildRequest) (*BuildResponse, error) {
	out := new(BuildResponse)
	if err := c.cc.Invoke(ctx, ServiceName+"/Build", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clusterServiceClient) Cluster(ctx context.Context, in *ClusterRequest) (*ClusterResponse, error) {
	out := new(ClusterResponse)
	if err := c.cc.Invoke(ctx, ServiceName+"/Cluster", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clusterServiceClient) Search(ctx context.Context, in *SearchRequest) (*SearchResponse, error) {
	out := new(SearchResponse)
	if err := c.cc.Invoke(ctx, ServiceName+"/Search", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clusterServiceClient) RangeQuery(ctx context.Context, in *RangeQueryRequest) (*RangeQueryResponse, error) {
	out := new(RangeQueryResponse)
	if err := c.cc.Invoke(ctx, ServiceName+"/RangeQuery", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clusterServiceClient) Stats(ctx context.Context, in *StatsRequest) (*StatsResponse, error) {
	out := new(StatsResponse)
	if err := c.cc.Invoke(ctx, ServiceName+"/Stats", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clusterServiceClient) HealthCheck(ctx context.Context, in *HealthCheckRequest) (*HealthCheckResponse, error) {
	out := new(HealthCheckResponse)
	if err := c.cc.Invoke(ctx, ServiceName+"/HealthCheck", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DialOption returns the dial option callers must pass to grpc.NewClient
// so requests are encoded with the same JSON codec the server forces.
func DialOption() grpclib.DialOption {
	return grpclib.WithDefaultCallOptions(grpclib.ForceCodec(jsonCodec{}))
}
