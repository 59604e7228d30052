package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/roadpeak/foolu/internal/infrastructure/configs"
	"github.com/roadpeak/foolu/internal/infrastructure/logging"
	"github.com/roadpeak/foolu/internal/infrastructure/metrics"
	"github.com/roadpeak/foolu/internal/infrastructure/ratelimiter"
	"github.com/roadpeak/foolu/internal/infrastructure/registry"
	"github.com/roadpeak/foolu/internal/infrastructure/tracing"
	"github.com/roadpeak/foolu/internal/infrastructure/ws"
	"github.com/roadpeak/foolu/internal/presentation/api"
	"github.com/roadpeak/foolu/internal/presentation/handler/health"
	"github.com/roadpeak/foolu/internal/presentation/handler/party"
)

const (
	serviceName = "foolu-party"
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		FilePath: cfg.Logger.FilePath,
		Level:    cfg.Logger.Level,
		Logger:   cfg.Logger.Logger,
	})

	partyRegistry := registry.New(
		registry.WithHistoryCapacity(cfg.Party.HistoryCapacity),
		registry.WithIdleExpiry(cfg.Party.IdleExpiry),
	)

	m := metrics.New()

	session := ws.NewSession(partyRegistry, logger, m)
	go session.Run()
	defer session.Stop()

	if cfg.Party.IdleExpiry > 0 {
		sweeper := registry.NewSweeper(partyRegistry, cfg.Party.SweepInterval, logger)
		go sweeper.Run()
		defer sweeper.Stop()
	}

	partyHandler := party.NewHandler(partyRegistry, session, logger, tracing.GetTracer(serviceName))
	healthHandler := health.NewHandler()

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})

	app := api.NewApplication(*cfg, *partyHandler, *healthHandler, logger, rl, m)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
