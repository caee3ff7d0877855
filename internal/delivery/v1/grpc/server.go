package grpc

import (
	"context"
	"fmt"
	"net"

	"github.com/DRSN-tech/starmatch-backend/internal/cfg"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName — имя сервиса в grpc.health.v1. Пустое имя описывает сервер целиком.
const ServiceName = "starmatch.v1.Recommend"

type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	lis    net.Listener
	cfg    *cfg.GRPCConfig
	logger logger.Logger
}

func NewGRPCServer(cfg *cfg.GRPCConfig, logger logger.Logger) *GRPCServer {
	s := &GRPCServer{
		server: grpc.NewServer(),
		health: health.NewServer(),
		cfg:    cfg,
		logger: logger,
	}

	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)

	return s
}

// SetServing переводит сервис в SERVING. Вызывается после загрузки каталога.
func (s *GRPCServer) SetServing() {
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
}

// Status — текущий статус сервиса в grpc.health.v1.
func (s *GRPCServer) Status() healthpb.HealthCheckResponse_ServingStatus {
	resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_SERVICE_UNKNOWN
	}
	return resp.GetStatus()
}

func (s *GRPCServer) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Listen занимает порт сервера. Вызовы начинают обслуживаться после Serve.
func (s *GRPCServer) Listen() (net.Listener, error) {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	lis, err := net.Listen(s.cfg.NetworkMode, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.lis = lis

	return lis, nil
}

// Addr — фактический адрес после Listen.
func (s *GRPCServer) Addr() string {
	if s.lis == nil {
		return ":" + s.cfg.Port
	}
	return s.lis.Addr().String()
}

func (s *GRPCServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

// Stop переводит health в NOT_SERVING и останавливает сервер.
// Если ctx истекает раньше, незавершённые вызовы обрываются.
func (s *GRPCServer) Stop(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infof("gRPC server stopped gracefully")
		return nil
	case <-ctx.Done():
		s.server.Stop()
		s.logger.Warnf("gRPC server forced to stop after timeout")
		return ctx.Err()
	}
}
