package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"

	"loan-predictor/config"
	"loan-predictor/logger"
	"loan-predictor/metrics"
	"loan-predictor/model"
	"loan-predictor/repository"
	"loan-predictor/service"
)

// app holds the process-wide state shared by every front-end. It is built
// once; a model that fails to load aborts startup.
type app struct {
	cfg         config.Config
	logger      *slog.Logger
	artifact    *model.Artifact
	registry    *prometheus.Registry
	metrics     *metrics.Metrics
	predictions *service.PredictionService
	closers     []io.Closer
}

func newApp(logOut io.Writer) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	log := logger.New(logOut, cfg.LogLevel)

	artifact, err := loadArtifact(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	log.Info("model loaded", "version", artifact.Version, "path", cfg.ModelPath)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	a := &app{
		cfg:      cfg,
		logger:   log,
		artifact: artifact,
		registry: registry,
		metrics:  m,
	}

	cache, err := a.openCache()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	repo, err := a.openStore()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	decider := service.NewDecisionService(artifact.Classifier(),
		service.WithStrictLabels(cfg.StrictLabels),
		service.WithDecisionMetrics(m),
		service.WithDecisionLogger(log),
	)
	a.predictions = service.NewPredictionService(artifact.Schema(), decider, repo,
		service.WithCache(cache),
		service.WithMetrics(m),
		service.WithLogger(log),
	)
	return a, nil
}

func loadArtifact(path string) (*model.Artifact, error) {
	if path == "" {
		return model.LoadDefault()
	}
	return model.Load(path)
}

func (a *app) openCache() (repository.CacheRepository, error) {
	switch a.cfg.Cache.Backend {
	case config.CacheRedis:
		c := repository.NewRedisCache(a.cfg.Cache.RedisAddr, a.cfg.Cache.TTL, a.cfg.Cache.Timeout)
		if err := c.Ping(context.Background()); err != nil {
			// The cache is an optimisation; predictions still work without it.
			a.logger.Warn("redis unavailable, predictions will not be cached", "addr", a.cfg.Cache.RedisAddr, "error", err)
			_ = c.Close()
			return repository.NewNoopCache(), nil
		}
		a.closers = append(a.closers, c)
		return c, nil
	case config.CacheNone:
		return repository.NewNoopCache(), nil
	default:
		return repository.NewMemoryCache(a.cfg.Cache.TTL, 2*a.cfg.Cache.TTL), nil
	}
}

func (a *app) openStore() (repository.PredictionRepository, error) {
	if a.cfg.Store.Backend == config.StoreSQLite {
		s, err := repository.OpenPredictionRepositorySQLite(a.cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	}
	return repository.NewPredictionRepositoryMemory(), nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
