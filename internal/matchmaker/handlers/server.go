// Package handlers provides gRPC and HTTP server implementations for
// serving the MatchService, bridging the transport layer and business logic,
// translating between Struct documents and domain models.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gartstein/matchmaker/internal/matchmaker/auth"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Server holds references to both a gRPC server and an HTTP server.
type Server struct {
	grpcServer   *grpc.Server
	httpServer   *http.Server
	logger       *zap.Logger
	grpcEndpoint string
	httpEndpoint string
}

// NewServer constructs a Server with separate endpoints for gRPC and HTTP.
func NewServer(
	grpcPort int,
	httpPort int,
	logger *zap.Logger,
	grpcOpts ...grpc.ServerOption,
) *Server {
	return &Server{
		grpcServer:   grpc.NewServer(grpcOpts...),
		httpServer:   &http.Server{ReadHeaderTimeout: 10 * time.Second},
		logger:       logger.Named("server"),
		grpcEndpoint: fmt.Sprintf(":%d", grpcPort),
		httpEndpoint: fmt.Sprintf(":%d", httpPort),
	}
}

// RegisterGRPCHandler registers the gRPC handler for the MatchService.
func (s *Server) RegisterGRPCHandler(h MatchServiceServer) {
	s.grpcServer.RegisterService(&MatchServiceDesc, h)
}

// RegisterHTTPGateway serves the HTTP API from h in-process, behind the auth
// middleware.
func (s *Server) RegisterHTTPGateway(h MatchServiceServer, jwtSecret string) error {
	mux, err := NewGatewayMux(h, s.logger)
	if err != nil {
		return err
	}

	s.httpServer.Handler = auth.HTTPMiddleware(mux, jwtSecret)
	s.httpServer.Addr = s.httpEndpoint
	return nil
}

// Start runs the gRPC and HTTP servers concurrently, returning on the first error.
func (s *Server) Start() error {
	grpcLis, err := net.Listen("tcp", s.grpcEndpoint)
	if err != nil {
		return fmt.Errorf("gRPC listen error: %w", err)
	}
	httpLis, err := net.Listen("tcp", s.httpEndpoint)
	if err != nil {
		grpcLis.Close()
		return fmt.Errorf("HTTP listen error: %w", err)
	}
	return s.Serve(grpcLis, httpLis)
}

// Serve runs both servers on the given listeners until Stop is called.
func (s *Server) Serve(grpcLis, httpLis net.Listener) error {
	var wg sync.WaitGroup
	wg.Add(2)
	errChan := make(chan error, 2)

	go func() {
		defer wg.Done()
		s.logger.Info("Starting gRPC server", zap.String("endpoint", grpcLis.Addr().String()))
		if err := s.grpcServer.Serve(grpcLis); err != nil {
			errChan <- fmt.Errorf("gRPC serve error: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		s.logger.Info("Starting HTTP server", zap.String("endpoint", httpLis.Addr().String()))
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP serve error: %w", err)
		}
	}()

	go func() {
		wg.Wait()
		close(errChan)
	}()

	for err := range errChan {
		if err != nil {
			return err
		}
	}
	return nil
}

// Stop gracefully shuts down both gRPC and HTTP servers.
func (s *Server) Stop() {
	s.logger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.grpcServer.GracefulStop()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	s.logger.Info("Servers stopped")
}
