package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/ZaguanLabs/calinga"
	"github.com/ZaguanLabs/calinga/cache"
	"github.com/ZaguanLabs/calinga/internal/config"
	"github.com/ZaguanLabs/calinga/internal/logger"
	"github.com/ZaguanLabs/calinga/metrics"
	"github.com/ZaguanLabs/calinga/resources"
	"github.com/ZaguanLabs/calinga/service"
)

// app holds everything a command builds from the configuration.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	service   calinga.Service
	cache     cache.ExportableCache
	languages *calinga.LanguageDirectory
	registry  *prometheus.Registry
	backend   *calinga.Backend
	closers   []func() error
}

type appOptions struct {
	directory bool // Attach a language directory loaded in the background
}

func newApp(ctx context.Context, cfg *config.Config, stderr io.Writer, opts appOptions) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger.New(cfg.LogLevel, cfg.LogPretty, stderr),
		registry: prometheus.NewRegistry(),
	}

	svc, err := service.NewHTTPService(service.Config{
		BaseURL:       cfg.Service.BaseURL,
		Organization:  cfg.Service.Organization,
		Team:          cfg.Service.Team,
		Project:       cfg.Service.Project,
		IncludeDrafts: cfg.Service.IncludeDrafts,
		Token:         cfg.Service.Token,
		Timeout:       cfg.Service.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating service client: %w", err)
	}
	a.service = svc
	if cfg.RateLimit.RequestsPerMinute > 0 {
		a.service = calinga.NewRateLimitedService(svc, calinga.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			BurstSize:         cfg.RateLimit.Burst,
		})
	}

	c, closer, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("opening %s cache: %w", cfg.Cache.Type, err)
	}
	a.cache = c
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	backendOpts := []calinga.BackendOption{
		calinga.WithLogger(a.logger),
		calinga.WithObserver(metrics.NewCollector(a.registry)),
		calinga.WithRevalidation(cfg.Revalidate),
	}
	if a.cache != nil {
		backendOpts = append(backendOpts, calinga.WithCache(a.cache))
	}
	if cfg.ResourcesDir != "" {
		store, err := resources.LoadDir(cfg.ResourcesDir)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("loading resources: %w", err)
		}
		backendOpts = append(backendOpts, calinga.WithResources(store))
	}
	if opts.directory {
		a.languages = calinga.NewLanguageDirectory(cfg.DevMode)
		a.languages.Subscribe(func(languages []string) {
			a.logger.Info().Strs("languages", languages).Msg("project languages loaded")
		})
		backendOpts = append(backendOpts, calinga.WithLanguageDirectory(a.languages))
	}

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.backend = calinga.NewBackend(a.service, backendOpts...)
	return a, nil
}

// openCache returns a nil cache for the "none" type.
func openCache(ctx context.Context, cfg config.CacheConfig) (cache.ExportableCache, func() error, error) {
	switch cfg.Type {
	case config.CacheNone:
		return nil, nil, nil
	case config.CacheMemory:
		return cache.NewInMemoryCache(cfg.TTL), nil, nil
	case config.CacheRedis:
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			URL:       cfg.RedisURL,
			TTL:       cfg.TTL,
			KeyPrefix: cfg.KeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	case config.CacheBlob:
		c, err := cache.OpenBlobCache(ctx, cfg.BlobURL, cfg.KeyPrefix)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
