package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/roadpeak/foolu/internal/infrastructure/configs"
	"github.com/roadpeak/foolu/internal/infrastructure/logging"
	"github.com/roadpeak/foolu/internal/infrastructure/metrics"
	"github.com/roadpeak/foolu/internal/infrastructure/ratelimiter"
	healthHandler "github.com/roadpeak/foolu/internal/presentation/handler/health"
	partyHandler "github.com/roadpeak/foolu/internal/presentation/handler/party"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Application struct {
	config        configs.Config
	partyHandler  partyHandler.Handler
	healthHandler healthHandler.Handler
	logger        logging.Logger
	ratelimiter   ratelimiter.Limiter
	metrics       *metrics.Metrics
}

func NewApplication(
	config configs.Config,
	partyHandler partyHandler.Handler,
	healthHandler healthHandler.Handler,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
	metrics *metrics.Metrics,
) *Application {
	return &Application{
		config:        config,
		partyHandler:  partyHandler,
		healthHandler: healthHandler,
		logger:        logger,
		ratelimiter:   ratelimiter,
		metrics:       metrics,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   app.config.HTTP.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(app.loggerMiddleware)
	r.Use(app.rateLimiterMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/party/ws", app.partyHandler.ConnectHandler)
		r.Get("/checkWatchParty", app.partyHandler.CheckWatchPartyHandler)

		r.Get("/health", app.healthHandler.GetHealth)
		r.Get("/healthz", app.healthHandler.GetHealth)
		r.Get("/ready", app.healthHandler.GetHealth)
		r.Get("/live", app.healthHandler.GetHealth)
	})

	r.Handle("/metrics", app.metrics.Handler())

	return otelhttp.NewHandler(r, "http.server")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "signal caught", map[logging.ExtraKey]any{
			"signal": s.String(),
		})

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	return nil
}
