package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/kb10uy/kdscan/pkg/collection"
	"github.com/kb10uy/kdscan/pkg/config"
	"github.com/kb10uy/kdscan/pkg/observability"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// Server implements ClusterServiceServer over real grpc-go transport,
// using the JSON codec registered in codec.go in place of protobuf.
type Server struct {
	config      *config.Config
	logger      *observability.Logger
	metrics     *observability.Metrics
	collections *collection.Manager

	grpcServer *grpc.Server
	listener   net.Listener
	startTime  time.Time
	shutdownMu sync.Mutex
	isShutdown bool
}

// NewServer creates a new gRPC server over cfg, logging via logger and
// recording Prometheus metrics via metrics.
func NewServer(cfg *config.Config, logger *observability.Logger, metrics *observability.Metrics) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = observability.NewDefaultLogger()
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}

	cacheCapacity := cfg.Cache.Capacity
	if !cfg.Cache.Enabled {
		cacheCapacity = 0
	}

	s := &Server{
		config:      cfg,
		logger:      logger,
		metrics:     metrics,
		collections: collection.NewManagerWithCache(cacheCapacity, cfg.Cache.TTL),
		startTime:   time.Now(),
	}

	// Seed collections created implicitly (GetOrCreate) with the
	// configured dimension ceiling, the way the teacher seeds a new
	// namespace's HNSW index config from s.config.HNSW.M.
	defaultQuota := collection.DefaultQuota()
	if cfg.Cluster.Dimensions > 0 {
		defaultQuota.MaxDimensions = cfg.Cluster.Dimensions
	}
	s.collections.SetDefaultQuota(defaultQuota)

	s.collections.GetOrCreate("default")
	return s, nil
}

// Start begins serving gRPC requests in a background goroutine.
func (s *Server) Start() error {
	var opts []grpc.ServerOption

	opts = append(opts, grpc.ForceServerCodec(jsonCodec{}))

	kaParams := keepalive.ServerParameters{
		MaxConnectionIdle: 15 * time.Second,
		MaxConnectionAge:  30 * time.Second,
		Time:              5 * time.Second,
		Timeout:           1 * time.Second,
	}
	opts = append(opts, grpc.KeepaliveParams(kaParams))
	opts = append(opts, grpc.MaxConcurrentStreams(uint32(s.config.Server.MaxConnections)))

	s.grpcServer = grpc.NewServer(opts...)
	RegisterClusterServiceServer(s.grpcServer, s)
	reflection.Register(s.grpcServer)

	addr := s.config.Server.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	s.logger.Info("gRPC server listening", map[string]interface{}{"address": addr})

	go func() {
		if err := s.grpcServer.Serve(listener); err != nil {
			s.logger.Error("gRPC server error", map[string]interface{}{"error": err.Error()})
		}
	}()

	return nil
}

// Stop gracefully shuts down the server, falling back to a hard stop
// if the configured shutdown timeout elapses first.
func (s *Server) Stop() error {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()

	if s.isShutdown {
		return nil
	}

	s.logger.Info("shutting down gRPC server")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.logger.Info("gRPC server stopped gracefully")
	case <-ctx.Done():
		s.logger.Warn("shutdown timeout exceeded, forcing stop")
		s.grpcServer.Stop()
	}

	s.isShutdown = true
	return nil
}

// Uptime returns how long the server has been running.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}
