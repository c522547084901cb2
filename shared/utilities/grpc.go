package utilities

import (
	"errors"
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// RegisterHealthServer registers the gRPC health check service and reports
// every service as serving.
func RegisterHealthServer(grpcServer *grpc.Server) *health.Server {
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	return healthServer
}

// HealthServer exposes the standard gRPC health protocol next to the HTTP
// API, for orchestrators that probe over gRPC.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	logger *zerolog.Logger
}

func NewHealthServer(logger *zerolog.Logger) *HealthServer {
	server := grpc.NewServer()
	return &HealthServer{
		server: server,
		health: RegisterHealthServer(server),
		logger: logger,
	}
}

// Serve blocks until the server stops. A graceful stop is not an error.
func (h *HealthServer) Serve(lis net.Listener) error {
	h.logger.Info().Str("address", lis.Addr().String()).Msg("gRPC health server listening")
	if err := h.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Shutdown marks every service as not serving and stops the server.
func (h *HealthServer) Shutdown() {
	h.health.Shutdown()
	h.server.GracefulStop()
}
