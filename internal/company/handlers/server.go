// Package handlers provides gRPC and HTTP server implementations for
// serving the CompanyService, bridging the transport layer and business logic,
// translating between wire formats and domain models.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coronavstech/companies/internal/company/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// CompanyController defines the business logic interface
// that the gRPC/HTTP handlers will invoke.
type CompanyController interface {
	ListCompanies(ctx context.Context) ([]models.Company, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	CreateCompany(ctx context.Context, in *models.CompanyInput) (*models.Company, error)
	UpdateCompany(ctx context.Context, id uuid.UUID, in *models.CompanyInput, partial bool) (*models.Company, error)
	DeleteCompany(ctx context.Context, id uuid.UUID) error
}

// Server holds references to both a gRPC server and an HTTP server.
type Server struct {
	grpcServer   *grpc.Server
	httpServer   *http.Server
	health       *health.Server
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
	s := &Server{
		grpcServer: grpc.NewServer(grpcOpts...),
		httpServer: &http.Server{
			ReadHeaderTimeout: 10 * time.Second,
		},
		health:       health.NewServer(),
		logger:       logger.Named("server"),
		grpcEndpoint: fmt.Sprintf(":%d", grpcPort),
		httpEndpoint: fmt.Sprintf(":%d", httpPort),
	}
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	return s
}

// RegisterGRPCHandler registers the gRPC handler for the CompanyService.
func (s *Server) RegisterGRPCHandler(h *CompanyHandler) {
	RegisterCompanyServiceServer(s.grpcServer, h)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
}

// RegisterHTTPHandler sets the handler served on the HTTP endpoint.
func (s *Server) RegisterHTTPHandler(handler http.Handler) {
	s.httpServer.Handler = handler
	s.httpServer.Addr = s.httpEndpoint
}

// Start listens on the configured endpoints and serves until Stop is called
// or either server fails.
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

// Serve runs the gRPC and HTTP servers concurrently on the given listeners,
// returning on the first error.
func (s *Server) Serve(grpcLis, httpLis net.Listener) error {
	var wg sync.WaitGroup
	wg.Add(2)
	errChan := make(chan error, 2)

	// Start gRPC Server
	go func() {
		defer wg.Done()
		s.logger.Info("Starting gRPC server", zap.String("endpoint", grpcLis.Addr().String()))
		if err := s.grpcServer.Serve(grpcLis); err != nil {
			errChan <- fmt.Errorf("gRPC serve error: %w", err)
		}
	}()

	// Start HTTP Server
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

// Stop gracefully shuts down both gRPC and HTTP servers. In-flight HTTP
// requests get until ctx is done.
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Shutting down servers...")

	s.health.Shutdown()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.grpcServer.Stop()
	}

	s.logger.Info("Servers stopped")
}
