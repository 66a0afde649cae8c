package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/airband/feed-tracker/internal/aggregate"
	"github.com/airband/feed-tracker/internal/api"
	"github.com/airband/feed-tracker/internal/cache"
	"github.com/airband/feed-tracker/internal/config"
	"github.com/airband/feed-tracker/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Printf("feedapi failed: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := store.New(cfg.DataDir)
	if err != nil {
		return err
	}

	var cacheClient *cache.Client
	if cfg.RedisAddr != "" {
		cacheClient, err = cache.New(cfg.RedisAddr)
		if err != nil {
			log.Printf("continuing without latest-status cache: %v", err)
		} else {
			defer cacheClient.Close()
		}
	}

	app := fiber.New(fiber.Config{
		AppName:               "feed-tracker",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
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
			"service": "feed-tracker",
		})
	})

	api.RegisterRoutes(app, aggregate.New(st), cacheClient)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
