// Package mcp exposes the staging engine as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
	"github.com/lionsmanic/gyn-cancer-staging/internal/service"
	"github.com/lionsmanic/gyn-cancer-staging/pkg/external"
)

// ReportReader reads pathology report artifacts.
type ReportReader interface {
	Read(ctx context.Context, req external.ReadRequest) (*external.ReadResult, error)
}

// LiteServer serves the staging tools over stdio or streamable HTTP. It needs
// no database unless a feedback recorder is attached.
type LiteServer struct {
	config    domain.MCPConfig
	mcpServer *mcp.Server
	staging   *service.StagingService
	reader    ReportReader
	feedback  *service.FeedbackRecorder
	logger    *logrus.Logger
}

// LiteServerOption is a functional option for LiteServer.
type LiteServerOption func(*LiteServer) error

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) LiteServerOption {
	return func(s *LiteServer) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithReportReader registers the read_pathology_report tool.
func WithReportReader(reader ReportReader) LiteServerOption {
	return func(s *LiteServer) error {
		s.reader = reader
		return nil
	}
}

// WithFeedbackRecorder registers the feedback tools.
func WithFeedbackRecorder(recorder *service.FeedbackRecorder) LiteServerOption {
	return func(s *LiteServer) error {
		s.feedback = recorder
		return nil
	}
}

// NewLiteServer creates a new MCP server instance.
func NewLiteServer(cfg domain.MCPConfig, staging *service.StagingService, opts ...LiteServerOption) (*LiteServer, error) {
	if staging == nil {
		return nil, errors.New("staging service is required")
	}

	server := &LiteServer{
		config:  cfg,
		staging: staging,
		logger:  logrus.New(),
	}
	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	name, version := cfg.ServerName, cfg.ServerVersion
	if name == "" {
		name = "gyn-cancer-staging"
	}
	if version == "" {
		version = "1.0.0"
	}
	server.mcpServer = mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil)
	server.registerTools()

	server.logger.WithFields(logrus.Fields{
		"server_name":    name,
		"server_version": version,
		"report_reading": server.reader != nil,
		"feedback":       server.feedback != nil,
	}).Info("MCP server initialized")
	return server, nil
}

// Start runs the server on the configured transport until ctx is done or the
// client disconnects.
func (s *LiteServer) Start(ctx context.Context) error {
	switch s.config.TransportType {
	case "", "stdio":
		s.logger.Info("Starting MCP server on stdio")
		if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("MCP server failed: %w", err)
		}
		return nil
	case "http":
		return s.serveHTTP(ctx)
	default:
		return fmt.Errorf("unsupported MCP transport: %s", s.config.TransportType)
	}
}

func (s *LiteServer) serveHTTP(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.HTTPHost, strconv.Itoa(s.config.HTTPPort))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("address", addr).Info("Starting MCP server on streamable HTTP")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("MCP HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("Shutting down MCP HTTP server...")
	return srv.Shutdown(shutdownCtx)
}

// HTTPHandler returns the streamable HTTP handler for the server.
func (s *LiteServer) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

// ToolNames lists the registered tools in registration order.
func (s *LiteServer) ToolNames() []string {
	names := []string{toolClassifyStage, toolListProtocols, toolDescribeProtocol, toolGTNRiskScore}
	if s.reader != nil {
		names = append(names, toolReadPathologyReport)
	}
	if s.feedback != nil {
		names = append(names, toolSubmitFeedback, toolListFeedback)
	}
	return names
}

func (s *LiteServer) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        toolClassifyStage,
		Description: "Classify a gynecologic cancer finding set into its FIGO stage. Returns the TNM string, the FIGO stage and notes; an unclassifiable combination returns staged=false.",
	}, s.handleClassifyStage)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        toolListProtocols,
		Description: "List the supported staging protocols.",
	}, s.handleListProtocols)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        toolDescribeProtocol,
		Description: "Describe the input fields of a staging protocol and the codes each field accepts.",
	}, s.handleDescribeProtocol)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        toolGTNRiskScore,
		Description: "Score the eight GTN prognostic factors. A total of 7 or more is high risk.",
	}, s.handleGTNRiskScore)

	if s.reader != nil {
		mcp.AddTool(s.mcpServer, &mcp.Tool{
			Name:        toolReadPathologyReport,
			Description: "Read pathology report images or text with a generative model and return an advisory narrative. The reading never changes a computed stage.",
		}, s.handleReadPathologyReport)
	}
	if s.feedback != nil {
		mcp.AddTool(s.mcpServer, &mcp.Tool{
			Name:        toolSubmitFeedback,
			Description: "Record a clinician's verdict on the stage suggested for a finding set.",
		}, s.handleSubmitFeedback)
		mcp.AddTool(s.mcpServer, &mcp.Tool{
			Name:        toolListFeedback,
			Description: "List recorded clinician feedback, newest first.",
		}, s.handleListFeedback)
	}

	s.logger.WithField("tool_count", len(s.ToolNames())).Info("Registered MCP tools")
}

// Close is a no-op; the stores behind the recorder are owned by the caller.
func (s *LiteServer) Close() error {
	return nil
}
