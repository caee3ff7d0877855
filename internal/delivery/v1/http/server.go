package http

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/DRSN-tech/starmatch-backend/internal/cfg"
)

type Server struct {
	httpServer *http.Server
	lis        net.Listener
}

func NewServer(handler http.Handler, cfg *cfg.HTTPConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Listen занимает порт сервера. Запросы начинают обслуживаться после Serve.
func (s *Server) Listen() (net.Listener, error) {
	lis, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, err
	}
	s.lis = lis
	return lis, nil
}

// Addr — фактический адрес после Listen.
func (s *Server) Addr() string {
	if s.lis == nil {
		return s.httpServer.Addr
	}
	return s.lis.Addr().String()
}

// Serve блокируется до остановки сервера. Штатная остановка через Stop не считается ошибкой.
func (s *Server) Serve(lis net.Listener) error {
	if err := s.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
