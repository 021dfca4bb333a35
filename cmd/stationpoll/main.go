package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	httpapi "github.com/wxtools/stationpoll/internal/api/http"
	"github.com/wxtools/stationpoll/internal/budget"
	"github.com/wxtools/stationpoll/internal/config"
	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/fetch"
	"github.com/wxtools/stationpoll/internal/normalize"
	"github.com/wxtools/stationpoll/internal/prefs"
	"github.com/wxtools/stationpoll/internal/provider"
	"github.com/wxtools/stationpoll/internal/scheduler"
	"github.com/wxtools/stationpoll/internal/trigger"
)

// logInvoker is the default trigger sink when no host is attached: fired
// triggers are only recorded in the log.
type logInvoker struct {
	log zerolog.Logger
}

func (l logInvoker) Invoke(triggerID, deviceID string) {
	l.log.Info().Str("trigger", triggerID).Str("device", deviceID).Msg("trigger fired")
}

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Scheduling state survives restarts through the local prefs database.
	store, err := prefs.New(ctx, cfg.PrefsPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open prefs store")
	}
	defer store.Close()

	httpClient := &http.Client{Timeout: provider.FetchTimeout}
	client := provider.NewClient(httpClient, cfg.APIKey, cfg.Language, cfg.APIRef, log)

	callBudget := budget.New(cfg.CallLimit, log)
	fetcher := fetch.New(client, callBudget, log)

	opts := normalize.DefaultOptions()
	opts.IgnoreEstimated = cfg.IgnoreEstimated
	opts.PressureTrend = cfg.PressureTrend
	norm := normalize.New(opts, log)

	states := device.NewStateStore()
	registry := trigger.NewRegistry()
	evaluator := trigger.NewEvaluator(registry, states, logInvoker{log: log}, log)

	sched := scheduler.New(cfg.PollInterval, fetcher, norm, callBudget,
		scheduler.StaticBindings(cfg.Bindings), states, evaluator, store, log)
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	app := fiber.New(fiber.Config{
		AppName:               "stationpoll",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "stationpoll",
		})
	})

	httpapi.RegisterRoutes(app, states, callBudget, sched)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sched.Stop(shutdownCtx)
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
