package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// ListenAndServe serves the HTTP API on addr until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves the HTTP API on ln until ctx ends.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.log.Info("http listening", zap.String("addr", ln.Addr().String()))
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- hs.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := hs.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// ServeGRPC exposes the health service on ln until ctx ends.
func (s *Server) ServeGRPC(ctx context.Context, ln net.Listener) error {
	gs := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(gs, s.health)

	s.log.Info("grpc listening", zap.String("addr", ln.Addr().String()))
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- gs.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		gs.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

// ListenAndServeGRPC is ServeGRPC on a fresh listener.
func (s *Server) ListenAndServeGRPC(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.ServeGRPC(ctx, ln)
}
