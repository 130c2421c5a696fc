// Command gynstage-mcp is the zero-configuration MCP entry point for desktop
// clients. It reads GYNSTAGE_* environment variables only, keeps feedback in
// SQLite under the data directory and caches readings in memory.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lionsmanic/gyn-cancer-staging/internal/app"
	"github.com/lionsmanic/gyn-cancer-staging/internal/config"
	"github.com/lionsmanic/gyn-cancer-staging/internal/mcp"
)

func main() {
	lite := config.LoadLiteConfig()
	if err := lite.EnsureDataDir(); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	cfg := lite.ToConfig()

	logger, closeLog, err := app.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Invalid logging configuration: %v", err)
	}
	defer closeLog()
	logger.WithFields(map[string]any{
		"transport": lite.Transport,
		"data_dir":  lite.DataDir,
	}).Info("Starting gynecologic staging MCP server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize services")
	}
	defer services.Close()

	server, err := mcp.NewLiteServer(cfg.MCP, services.Staging,
		mcp.WithLogger(logger),
		mcp.WithReportReader(services.Reader),
		mcp.WithFeedbackRecorder(services.Feedback),
	)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create MCP server")
	}

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Error("MCP server failed")
		services.Close()
		closeLog()
		os.Exit(1)
	}
	logger.Info("MCP server stopped")
}
