package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
	"github.com/lionsmanic/gyn-cancer-staging/internal/middleware"
	"github.com/lionsmanic/gyn-cancer-staging/internal/service"
	"github.com/lionsmanic/gyn-cancer-staging/pkg/external"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// maxClients bounds the per-client rate limiter registry.
const maxClients = 10000

// ReportReader reads pathology report artifacts.
type ReportReader interface {
	Read(ctx context.Context, req external.ReadRequest) (*external.ReadResult, error)
}

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	staging       *service.StagingService
	reader        ReportReader
	feedback      *service.FeedbackRecorder
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the logger used for access and audit logs.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithReportReader enables the report reading endpoint.
func WithReportReader(reader ReportReader) Option {
	return func(s *Server) { s.reader = reader }
}

// WithFeedbackRecorder enables the feedback endpoints.
func WithFeedbackRecorder(recorder *service.FeedbackRecorder) Option {
	return func(s *Server) { s.feedback = recorder }
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, staging *service.StagingService, opts ...Option) (*Server, error) {
	cfg := configManager.GetConfig()

	s := &Server{
		configManager: configManager,
		staging:       staging,
		logger:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter, err := middleware.NewClientLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst, maxClients)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(s.logger))
	router.Use(middleware.Recovery(s.logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())
	if cfg.Server.RateLimit > 0 {
		router.Use(middleware.RateLimit(limiter))
	}
	if cfg.MCP.RequestTimeout > 0 {
		router.Use(middleware.RequestTimeout(cfg.MCP.RequestTimeout))
	}

	s.router = router
	s.setupRoutes()

	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/protocols", s.handleListProtocols)
		v1.GET("/protocols/:protocol", s.handleDescribeProtocol)
		v1.POST("/classify/:protocol", s.handleClassify)
		v1.POST("/gtn/risk", s.handleGTNRisk)
		v1.POST("/report-reading", s.handleReportReading)
		v1.POST("/feedback", s.handleSubmitFeedback)
		v1.GET("/feedback", s.handleListFeedback)
	}
}
