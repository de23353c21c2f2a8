// Package server exposes the fact-check pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"truthbot/internal/config"
	"truthbot/internal/logger"
	"truthbot/internal/models"
)

// ServiceName is reported by GET /health.
const ServiceName = "TruthBot API"

// Checker runs a fact-check.
type Checker interface {
	Check(ctx context.Context, claim string) (*models.FactCheckResponse, error)
}

// HistoryReader serves saved checks.
type HistoryReader interface {
	Get(ctx context.Context, id string) (*models.CheckRecord, error)
	List(ctx context.Context, limit int) ([]*models.CheckRecord, error)
}

// Server is the TruthBot HTTP API.
type Server struct {
	checker Checker
	history HistoryReader
	logger  *logger.Logger
	engine  *gin.Engine
	cfg     config.ServerConfig
}

// Option configures a Server.
type Option func(*Server)

// WithHistory enables the /history routes.
func WithHistory(h HistoryReader) Option {
	return func(s *Server) { s.history = h }
}

// WithLogger sets the server logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New builds the router for cfg.
func New(cfg config.ServerConfig, checker Checker, opts ...Option) *Server {
	s := &Server{checker: checker, cfg: cfg}

	for _, o := range opts {
		o(s)
	}

	s.logger = logger.OrDiscard(s.logger)
	s.engine = s.routes()

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = config.DefaultAllowedOrigins
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", s.health)

	check := []gin.HandlerFunc{s.factCheck}
	if s.cfg.RateLimit.Enabled {
		rl := NewRateLimiter(s.cfg.RateLimit.RequestsPerMinute, s.cfg.RateLimit.Burst)
		check = append([]gin.HandlerFunc{rl.Middleware()}, check...)
	}

	r.POST("/fact-check", check...)

	r.GET("/history", s.listHistory)
	r.GET("/history/:id", s.getHistory)

	return r
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("🚀 TruthBot API listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
	defer cancel()

	s.logger.Info("Shutting down", "timeout", s.cfg.ShutdownTimeout())

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		s.logger.Log(c.Request.Context(), requestLevel(c.Writer.Status()), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

func requestLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
