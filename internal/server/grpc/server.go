// Package grpc exposes the reference nutrition API over gRPC with the JSON
// codec from package api.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/nutrisync/internal/api"
	"github.com/dmitrijs2005/nutrisync/internal/logging"
	"github.com/dmitrijs2005/nutrisync/internal/server/store"
	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type GRPCServer struct {
	address  string
	logger   logging.Logger
	data     *store.Data
	faults   *Faults
	validate *validator.Validate
	health   *health.Server
}

func NewGRPCServer(a string, l logging.Logger, data *store.Data) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		data:     data,
		faults:   NewFaults(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		health:   health.NewServer(),
	}
}

// Faults returns the fault-injection rules applied to every call.
func (s *GRPCServer) Faults() *Faults {
	return s.faults
}

// Health returns the health service, e.g. to flip the serving status.
func (s *GRPCServer) Health() *health.Server {
	return s.health
}

// NewServer builds a grpc.Server with the nutrition and health services
// registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.faultInterceptor))
	srv := grpc.NewServer(opts...)

	srv.RegisterService(s.serviceDesc(), s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return srv
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}

func (s *GRPCServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}
