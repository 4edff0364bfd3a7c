package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lmittmann/tint"

	"notes-api/app"
	"notes-api/config"
	"notes-api/database"
	"notes-api/handlers"
	"notes-api/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	ctx := context.Background()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database initialized", "driver", cfg.Database.Driver)

	repo := database.NewRepository(db)
	application := app.New(repo, logger)

	fiberApp := fiber.New(fiber.Config{
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		DisableStartupMessage: cfg.App.Env == "production",
		ErrorHandler:          customErrorHandler(logger),
	})

	fiberApp.Use(
		recover.New(),
		middleware.StructuredLogger(logger),
		middleware.Security(),
		cors.New(cors.Config{
			AllowOrigins: cfg.HTTP.CORSOrigins,
			AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowHeaders: "Origin,Content-Type,Accept",
			MaxAge:       86400,
		}),
		limiter.New(limiter.Config{
			Max:        200,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Rate limit exceeded",
				})
			},
		}),
	)

	registerRoutes(fiberApp, application)

	logger.Info("starting server", "addr", cfg.HTTP.Addr, "env", cfg.App.Env)

	go func() {
		if err := fiberApp.Listen(cfg.HTTP.Addr); err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

func registerRoutes(fiberApp *fiber.App, application *app.App) {
	fiberApp.Get("/", handlers.Root())
	fiberApp.Get("/health", handlers.Health())
	fiberApp.Get("/health/detailed", handlers.DetailedHealth(application))

	v1 := fiberApp.Group("/v1")
	v1.Get("/notes", handlers.ListNotes(application))
	v1.Post("/notes", handlers.CreateNote(application))
	v1.Get("/notes/:id", handlers.GetNote(application))
	v1.Put("/notes/:id", handlers.ReplaceNote(application))
	v1.Patch("/notes/:id", handlers.PatchNote(application))
	v1.Delete("/notes/:id", handlers.DeleteNote(application))
}

func setupLogger(cfg config.Config) *slog.Logger {
	level := getLogLevel(cfg.App.LogLevel)

	var handler slog.Handler
	if cfg.App.Env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:     level,
			AddSource: true,
		})
	}

	return slog.New(handler)
}

func getLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func customErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		requestID := ""
		if id, ok := c.Locals("requestID").(string); ok {
			requestID = id
		}

		logger.Error("request failed",
			"request_id", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"status", code,
			"error", err,
		)

		return c.Status(code).JSON(fiber.Map{
			"error":      message,
			"request_id": requestID,
		})
	}
}
