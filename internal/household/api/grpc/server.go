package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/nemanja-m/chores/internal/household/core"
	"github.com/nemanja-m/chores/internal/shared/logging"
)

// ServiceName is the health service name reported for the supervisor.
const ServiceName = "chores.Supervisor"

const (
	keepaliveMinTime = 10 * time.Second
	defaultSyncEvery = 250 * time.Millisecond
)

// Server exposes grpc.health.v1 for a run. It reports SERVING only while the
// supervisor is in the RUNNING phase.
type Server struct {
	addr       string
	grpcServer *grpc.Server
	health     *health.Server
	supervisor core.SupervisorService
	logger     logging.Logger
	last       healthpb.HealthCheckResponse_ServingStatus
}

func NewServer(addr string, supervisor core.SupervisorService, logger logging.Logger) *Server {
	grpcServer := grpc.NewServer(
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             keepaliveMinTime,
			PermitWithoutStream: true,
		}),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	reflection.Register(grpcServer)

	s := &Server{
		addr:       addr,
		grpcServer: grpcServer,
		health:     hs,
		supervisor: supervisor,
		logger:     logger,
		last:       healthpb.HealthCheckResponse_UNKNOWN,
	}
	s.Sync()
	return s
}

// StatusFor maps a run phase onto a health status.
func StatusFor(phase core.RunPhase) healthpb.HealthCheckResponse_ServingStatus {
	if phase == core.RunPhaseRunning {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}

// Sync publishes the supervisor's current phase as health status. It is not
// safe for concurrent use; Track is the only caller once serving.
func (s *Server) Sync() {
	phase := s.supervisor.Phase()
	status := StatusFor(phase)
	if status == s.last {
		return
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	s.last = status
	s.logger.Info("Health status changed", "phase", string(phase), "status", status.String())
}

// Track syncs health status every interval until ctx is done.
func (s *Server) Track(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSyncEvery
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sync()
		}
	}
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC health server listening", "addr", lis.Addr().String())
	return s.grpcServer.Serve(lis)
}

// Stop marks every service NOT_SERVING and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
