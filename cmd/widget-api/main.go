package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/coachsite/booking-widget/internal/api/router"
	"github.com/coachsite/booking-widget/internal/availability"
	"github.com/coachsite/booking-widget/internal/booking"
	appconfig "github.com/coachsite/booking-widget/internal/config"
	"github.com/coachsite/booking-widget/internal/http/handlers"
	"github.com/coachsite/booking-widget/internal/observability/metrics"
	"github.com/coachsite/booking-widget/internal/widget"
	"github.com/coachsite/booking-widget/pkg/logging"
)

func main() {
	// .env is optional; real deployments configure the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking-widget API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	widgetMetrics := metrics.NewWidgetMetrics(nil)

	provider := buildProvider(cfg, logger, widgetMetrics)
	backend := buildBackend(cfg, logger)

	factory := func() *widget.Controller {
		return widget.New(widget.Config{
			WindowDays:     cfg.WindowDays,
			Provider:       provider,
			Backend:        backend,
			DisplayTimeout: cfg.StatusDisplayTimeout,
			Logger:         logger,
			Metrics:        widgetMetrics,
		})
	}
	widgetHandler := handlers.NewWidgetHandler(factory, cfg.WidgetSessionTTL, logger, widgetMetrics)
	defer widgetHandler.Close()

	r := router.New(&router.Config{
		Logger:             logger,
		WidgetHandler:      widgetHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildProvider picks the availability source: the HTTP scheduling
// backend when configured, otherwise the simulated stand-in. A Redis
// cache wraps either when REDIS_ADDR is set.
func buildProvider(cfg *appconfig.Config, logger *logging.Logger, m *metrics.WidgetMetrics) availability.Provider {
	var provider availability.Provider
	if cfg.AvailabilityBackendURL != "" && !cfg.SimulateAvailability {
		provider = availability.NewHTTPProvider(cfg.AvailabilityBackendURL, logger)
		logger.Info("using HTTP availability backend", "url", cfg.AvailabilityBackendURL)
	} else {
		provider = availability.NewSimulatedProvider(rand.NewSource(time.Now().UnixNano()), cfg.SimulatedRetention)
		logger.Info("using simulated availability", "retention", cfg.SimulatedRetention)
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		provider = availability.NewCachedProvider(provider, rdb, cfg.AvailabilityCacheTTL, logger, m)
		logger.Info("availability caching enabled", "addr", cfg.RedisAddr, "ttl", cfg.AvailabilityCacheTTL)
	}
	return provider
}

// buildBackend returns the booking backend: the real HTTP backend when a
// URL is configured, otherwise the accept-all demo backend.
func buildBackend(cfg *appconfig.Config, logger *logging.Logger) booking.Backend {
	if cfg.BookingBackendURL != "" {
		logger.Info("using HTTP booking backend", "url", cfg.BookingBackendURL)
		return booking.NewHTTPBackend(cfg.BookingBackendURL, cfg.BookingBackendToken, logger)
	}
	logger.Warn("no booking backend configured, accepting all bookings in demo mode")
	return booking.NewAcceptAllBackend(logger)
}
