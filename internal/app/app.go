// Package app wires the staging services from configuration for the command
// line entry points.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/lionsmanic/gyn-cancer-staging/internal/cache"
	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
	"github.com/lionsmanic/gyn-cancer-staging/internal/feedback"
	"github.com/lionsmanic/gyn-cancer-staging/internal/service"
	"github.com/lionsmanic/gyn-cancer-staging/pkg/external"
)

// NewLogger builds a logger from the logging section. Output is "stderr",
// "stdout" or a file path; stdio MCP sessions need it off stdout. The returned
// func closes a log file and is a no-op for the standard streams.
func NewLogger(cfg domain.LoggingConfig) (*logrus.Logger, func() error, error) {
	logger := logrus.New()

	if strings.EqualFold(cfg.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	logger.SetLevel(level)

	out, closeOut, err := openOutput(cfg.Output)
	if err != nil {
		return nil, nil, err
	}
	logger.SetOutput(out)
	return logger, closeOut, nil
}

func openOutput(output string) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	switch output {
	case "", "stderr":
		return os.Stderr, noop, nil
	case "stdout":
		return os.Stdout, noop, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		var once sync.Once
		var closeErr error
		return f, func() error {
			once.Do(func() { closeErr = f.Close() })
			return closeErr
		}, nil
	}
}

// NewCache returns a Redis cache when a URL is configured and an in-process
// cache otherwise.
func NewCache(ctx context.Context, cfg domain.CacheConfig, logger *logrus.Logger) (cache.Cache, error) {
	if cfg.RedisURL != "" {
		c, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.DefaultTTL)
		if err != nil {
			return nil, err
		}
		logger.Info("Report reading cache backed by Redis")
		return c, nil
	}

	size := cfg.Size
	if size <= 0 {
		size = 256
	}
	return cache.NewMemoryCache(size, cfg.DefaultTTL)
}

// NewReportReader builds the Gemini backed report reader.
func NewReportReader(cfg domain.AIBridgeConfig, c cache.Cache, logger *logrus.Logger) *external.ReportReader {
	return external.NewReportReader(external.ReaderConfig{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
	}, external.NewGeminiGenerator(), c, logger)
}

// Services bundles everything the HTTP and MCP surfaces serve.
type Services struct {
	Logger   *logrus.Logger
	Staging  *service.StagingService
	Reader   *external.ReportReader
	Feedback *service.FeedbackRecorder

	closers []func() error
}

// Build opens the cache, the report reader and the feedback store described
// by cfg. Close releases them.
func Build(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (*Services, error) {
	s := &Services{
		Logger:  logger,
		Staging: service.NewStagingService(logger),
	}

	c, err := NewCache(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	s.closers = append(s.closers, c.Close)
	s.Reader = NewReportReader(cfg.AIBridge, c, logger)

	store, err := feedback.Open(ctx, cfg.Feedback, logger)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to open feedback store: %w", err)
	}
	s.closers = append(s.closers, store.Close)
	s.Feedback = service.NewFeedbackRecorder(s.Staging, store, logger)

	return s, nil
}

// Close releases resources in reverse order of acquisition.
func (s *Services) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}
