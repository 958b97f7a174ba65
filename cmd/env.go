package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/powder-labs/powder/internal/catalog"
	"github.com/powder-labs/powder/internal/enrich"
	"github.com/powder-labs/powder/internal/judge"
	"github.com/powder-labs/powder/internal/model"
	"github.com/powder-labs/powder/internal/recommend"
	"github.com/powder-labs/powder/internal/resilience"
	"github.com/powder-labs/powder/pkg/anthropic"
	"github.com/powder-labs/powder/pkg/meteo"
	"github.com/powder-labs/powder/pkg/routing"
)

// env bundles the long-lived dependencies a command needs: the catalog
// store and a fully wired recommendation engine.
type env struct {
	Store  catalog.Store
	Engine *recommend.Engine
}

func (e *env) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("closing catalog store", zap.Error(err))
	}
}

// initStore opens the catalog store named by config and runs migrations.
func initStore(ctx context.Context) (catalog.Store, error) {
	var (
		store catalog.Store
		err   error
	)
	switch cfg.Catalog.Driver {
	case "sqlite", "":
		store, err = catalog.NewSQLite(cfg.Catalog.Path)
	case "postgres":
		store, err = catalog.NewPostgres(ctx, cfg.Catalog.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown catalog driver %q", cfg.Catalog.Driver)
	}
	if err != nil {
		return nil, eris.Wrap(err, "open catalog store")
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, eris.Wrap(err, "migrate catalog store")
	}
	return store, nil
}

// initEnv assembles the recommendation engine from config: live forecast
// and routing clients, the enrichment fan-out, and the optional judge.
func initEnv(ctx context.Context) (*env, error) {
	store, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	weather := meteo.NewClient(
		meteo.WithBaseURL(cfg.Meteo.BaseURL),
		meteo.WithTimezone(cfg.Meteo.Timezone),
		meteo.WithRateLimit(cfg.Meteo.RateLimit),
	)

	var router routing.Router
	if cfg.Routing.Key != "" {
		router = routing.NewClient(cfg.Routing.Key,
			routing.WithBaseURL(cfg.Routing.BaseURL),
			routing.WithRateLimit(cfg.Routing.RateLimit),
		)
	} else {
		zap.L().Debug("no routing key configured, drive times will be estimated")
	}

	enricher := enrich.New(weather, router,
		enrich.WithConcurrency(cfg.Enrich.Concurrency),
		enrich.WithTimeout(time.Duration(cfg.Enrich.TimeoutSecs)*time.Second),
		enrich.WithRetry(resilience.RetryConfig{MaxAttempts: cfg.Enrich.Retries + 1}),
	)

	scoreCfg := recommend.DefaultScoreConfig()
	if cfg.Scoring.ProfilePath != "" {
		scoreCfg, err = recommend.LoadScoreConfig(cfg.Scoring.ProfilePath)
		if err != nil {
			store.Close()
			return nil, eris.Wrap(err, "load score profile")
		}
	}

	opts := []recommend.EngineOption{
		recommend.WithDefaultOrigin(model.Origin{
			Name:   cfg.Origin.Name,
			LatLon: model.LatLon{Lat: cfg.Origin.Lat, Lon: cfg.Origin.Lon},
		}),
		recommend.WithDegradedPolicy(recommend.DegradedPolicy(cfg.Enrich.DegradedPolicy)),
	}

	if cfg.Judge.Enabled {
		if cfg.Anthropic.Key == "" {
			store.Close()
			return nil, eris.New("judge enabled but anthropic key is missing (POWDER_ANTHROPIC_KEY)")
		}
		client := anthropic.NewClient(cfg.Anthropic.Key)
		opts = append(opts, recommend.WithJudge(judge.NewClaude(client, cfg.Anthropic.Model, cfg.Judge.MaxDelta)))
	}

	engine := recommend.NewEngine(store, enricher, scoreCfg, opts...)
	return &env{Store: store, Engine: engine}, nil
}
