// Package server exposes a Backend over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ZaguanLabs/calinga"
)

// Reader is the part of calinga.Backend the server uses.
type Reader interface {
	Read(ctx context.Context, language, namespace string) (calinga.TranslationMap, error)
	LanguageDirectory() *calinga.LanguageDirectory
}

// Config holds router configuration options.
type Config struct {
	Reader      Reader
	Logger      zerolog.Logger
	Gatherer    prometheus.Gatherer // Served on /metrics; nil disables the route
	CORSOrigins []string            // Empty allows all origins
}

// NewRouter creates the gin engine serving the translation API.
func NewRouter(cfg Config) *gin.Engine {
	router := gin.New()

	corsConfig := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Accept", "Accept-Encoding", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader, "Content-Language"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}

	router.Use(
		cors.New(corsConfig),
		RequestID(),
		gin.Recovery(),
		gzip.Gzip(gzip.DefaultCompression),
		RequestLogger(cfg.Logger),
	)

	h := &handler{reader: cfg.Reader}
	router.GET("/healthz", h.health)
	router.GET("/languages", h.languages)
	router.GET("/translations/:language/:namespace", h.translations)

	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	return router
}

// Server runs the router on an address until shut down.
type Server struct {
	http   *http.Server
	logger zerolog.Logger
}

// New creates a Server listening on addr.
func New(addr string, cfg Config) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("server listening")
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info().Msg("shutting down server")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
