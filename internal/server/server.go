package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/hms/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/tlsconfig"
)

// PingFunc reports whether the backing store is reachable.
type PingFunc func(ctx context.Context) error

type Server struct {
	cfg    *config.Config
	log    *zap.Logger
	engine *gin.Engine
	http   *http.Server
}

// New builds the gin engine with the middleware chain, the root endpoints
// and the v1 API.
func New(cfg *config.Config, log *zap.Logger, m *metrics.Collector, ping PingFunc, svc v1.Services) *Server {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(middleware.NotFound())
	engine.NoMethod(middleware.MethodNotAllowed())

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Tracing(),
		middleware.Metrics(m),
		middleware.Logger(log),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     cfg.CORS.AllowedMethods,
			AllowHeaders:     cfg.CORS.AllowedHeaders,
			ExposeHeaders:    []string{middleware.RequestIDHeader, "Retry-After"},
			AllowCredentials: true,
			MaxAge:           cfg.CORS.MaxAge,
		}),
	)

	engine.GET("/health", healthHandler(ping))
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	api := engine.Group("/api/v1")
	api.Use(middleware.RateLimit(middleware.NewIPRateLimiter(
		rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.BurstSize,
	)))

	authPerMinute := cfg.RateLimit.AuthRequestsPerMinute
	var authLimit gin.HandlerFunc
	if authPerMinute > 0 {
		authLimit = middleware.RateLimit(middleware.NewIPRateLimiter(
			rate.Every(time.Minute/time.Duration(authPerMinute)), authPerMinute,
		))
	}
	v1.RegisterRoutes(api, svc, v1.RouterOptions{
		AuthEnabled: cfg.Auth.Enabled,
		AuthLimit:   authLimit,
	})

	return &Server{
		cfg:    cfg,
		log:    log,
		engine: engine,
		http: &http.Server{
			Addr:              cfg.Server.Address(),
			Handler:           engine,
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	if s.cfg.Server.TLSEnabled() {
		tlsCfg, err := tlsconfig.ServerConfig(s.cfg.Server.TLSCertFile, s.cfg.Server.TLSKeyFile, s.cfg.Server.ClientCAFile)
		if err != nil {
			return fmt.Errorf("loading TLS config: %w", err)
		}
		s.http.TLSConfig = tlsCfg
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server",
			zap.String("addr", s.http.Addr),
			zap.Bool("tls", s.http.TLSConfig != nil),
		)
		var err error
		if s.http.TLSConfig != nil {
			// certificates are already loaded into TLSConfig
			err = s.http.ListenAndServeTLS("", "")
		} else {
			err = s.http.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down HTTP server", zap.Duration("timeout", s.cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return nil
}

func healthHandler(ping PingFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"message": "store unavailable",
				"data":    gin.H{"status": "degraded", "store": "down"},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"status": "ok", "store": "up"},
		})
	}
}
