// Package server exposes firmware queries and metrics over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/danmuck/vcioctl/internal/config"
	"github.com/danmuck/vcioctl/internal/firmware"
	"github.com/danmuck/vcioctl/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Server serializes every firmware call behind one mutex; the vcio device
// handles a single exchange at a time per descriptor.
type Server struct {
	Name     string
	Addr     string
	Appeared time.Time

	fw           *firmware.Client
	mu           sync.Mutex
	throttleMask uint16
	token        string
	router       *gin.Engine
}

func New(cfg config.ServerConfig, fw *firmware.Client) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestID())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.Name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", observability.RequestIDHeader},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		Name:         cfg.Name,
		Addr:         cfg.Addr,
		Appeared:     time.Now(),
		fw:           fw,
		throttleMask: cfg.ThrottleMask,
		token:        cfg.Token,
		router:       r,
	}
	s.registerRoutes(cfg.Metrics)
	return s
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("server", s.Name).Str("addr", s.Addr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Str("server", s.Name).Msg("http shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// locked runs fn with exclusive use of the firmware client.
func (s *Server) locked(fn func(fw *firmware.Client) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.fw)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
