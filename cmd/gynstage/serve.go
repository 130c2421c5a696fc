package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lionsmanic/gyn-cancer-staging/internal/api"
	"github.com/lionsmanic/gyn-cancer-staging/internal/app"
	"github.com/lionsmanic/gyn-cancer-staging/internal/mcp"
)

func serveCmd() *cobra.Command {
	serve := &cobra.Command{Use: "serve", Short: "Run a server"}
	serve.AddCommand(serveHTTPCmd())
	serve.AddCommand(serveMCPCmd())
	return serve
}

func serveHTTPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			services, err := app.Build(ctx, cfg(), logger)
			if err != nil {
				return err
			}
			defer services.Close()

			server, err := api.NewServer(configManager, services.Staging,
				api.WithLogger(logger),
				api.WithReportReader(services.Reader),
				api.WithFeedbackRecorder(services.Feedback),
			)
			if err != nil {
				return err
			}

			logger.WithField("environment", cfg().Server.Environment).Info("Starting staging HTTP server")
			if err := server.Start(ctx); err != nil {
				return err
			}
			logger.Info("Server stopped")
			return nil
		},
	}
	cmd.Flags().String("host", "", "listen host")
	cmd.Flags().Int("port", 0, "listen port")
	_ = v.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	return cmd
}

func serveMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the staging tools over MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			services, err := app.Build(ctx, cfg(), logger)
			if err != nil {
				return err
			}
			defer services.Close()

			server, err := mcp.NewLiteServer(cfg().MCP, services.Staging,
				mcp.WithLogger(logger),
				mcp.WithReportReader(services.Reader),
				mcp.WithFeedbackRecorder(services.Feedback),
			)
			if err != nil {
				return err
			}
			defer server.Close()

			return server.Start(ctx)
		},
	}
	cmd.Flags().String("transport", "", "stdio or http")
	cmd.Flags().Int("port", 0, "HTTP port when --transport=http")
	_ = v.BindPFlag("mcp.transport_type", cmd.Flags().Lookup("transport"))
	_ = v.BindPFlag("mcp.http_port", cmd.Flags().Lookup("port"))
	return cmd
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
