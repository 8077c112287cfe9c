// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the research pipeline over HTTP with echo.
//
// Routes:
//
//	POST /supervisor    run (or recall) research for {"task": "..."}
//	GET  /past_queries  list cached tasks
//	GET  /              static homepage
//	GET  /healthz       liveness
//	GET  /metrics       Prometheus exposition
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/pdiddy/research-supervisor/internal/metrics"
	"github.com/pdiddy/research-supervisor/pkg/types"
)

const shutdownTimeout = 10 * time.Second

// Researcher produces the record for a task.
type Researcher interface {
	Run(ctx context.Context, task string) (types.Record, error)
}

// TaskLister lists cached tasks.
type TaskLister interface {
	ListTasks(ctx context.Context) ([]string, error)
}

// Server owns the echo instance and its collaborators.
type Server struct {
	cfg      types.ServerConfig
	echo     *echo.Echo
	research Researcher
	tasks    TaskLister
	logger   *zap.Logger
}

// New builds the echo instance, installs middleware, and registers routes.
// m and logger may be nil.
func New(cfg types.ServerConfig, research Researcher, tasks TaskLister, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:      cfg,
		echo:     echo.New(),
		research: research,
		tasks:    tasks,
		logger:   logger.Named("http"),
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:     true,
		LogURI:        true,
		LogStatus:     true,
		LogLatency:    true,
		LogRequestID:  true,
		LogRemoteIP:   true,
		LogValuesFunc: s.logRequest,
	}))
	e.Use(middleware.Recover())

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	e.GET("/", s.handleHome)
	e.POST("/supervisor", s.handleSupervisor)
	e.GET("/past_queries", s.handlePastQueries)
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on cfg.Addr until ctx is cancelled, then shuts down
// gracefully, letting in-flight requests finish.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		errCh <- s.echo.Start(s.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// handleError renders every error as {"error": message}.
func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}

	req := c.Request()
	fields := []zap.Field{
		zap.Int("status", code),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Error(err),
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Debug("request rejected", fields...)
	}

	if c.Response().Committed {
		return
	}
	if req.Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]string{"error": msg})
}

func (s *Server) logRequest(c echo.Context, v middleware.RequestLoggerValues) error {
	s.logger.Info("request",
		zap.String("request_id", v.RequestID),
		zap.String("method", v.Method),
		zap.String("uri", v.URI),
		zap.Int("status", v.Status),
		zap.Duration("latency", v.Latency),
		zap.String("remote_ip", v.RemoteIP),
	)
	return nil
}
