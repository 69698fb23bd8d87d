package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dharmasatrya/tripfares/internal/app"
	"github.com/dharmasatrya/tripfares/internal/config"
	"github.com/dharmasatrya/tripfares/internal/handler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	app.SetupLogger(cfg.Log)

	a, err := app.New(cfg, app.Options{})
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Prewarm.QueueEnabled {
		go func() {
			if err := a.Consumer().Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("prewarm consumer stopped", "error", err)
			}
		}()
		slog.Info("prewarm queue consumer started", "queue", cfg.Prewarm.Queue)
	}

	e := newServer(a)

	go func() {
		slog.Info("starting tripfares server",
			"port", cfg.Server.Port, "provider", a.Provider.Name(), "destinations", cfg.Search.Destinations)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

func newServer(a *app.App) *echo.Echo {
	cfg := a.Config

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.Info("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
	}))
	e.Use(middleware.RequestID())

	handler.Handlers{
		Search: handler.NewSearchHandler(a.Search, a.Store, cfg.Search.CacheTTL).
			WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
		Calendar: handler.NewCalendarHandler(a.Calendar, cfg.Calendar.DefaultOrigin, cfg.Calendar.DefaultPax),
		Prewarm:  handler.NewPrewarmHandler(a.Warmer, a.Dispatcher, cfg.Prewarm.Origins, cfg.Prewarm.MonthsAhead),
		Quote:    handler.NewQuoteHandler(a.Rules, a.Extras),
		Env:      handler.EnvHandler(cfg.Summary),
	}.Register(e)

	return e
}
