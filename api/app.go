// Package api serves the pipeline analyzer over HTTP with Fiber.
package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meikuraledutech/pipeline"
	"github.com/meikuraledutech/pipeline/config"
)

// New builds the Fiber app with every route and middleware wired.
func New(cfg config.Config, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "pipelined",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler(logger),
	})

	app.Use(fiberrecover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(requestLogger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.AllowedOrigin},
		AllowMethods: []string{
			fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch,
			fiber.MethodDelete, fiber.MethodHead, fiber.MethodOptions,
			fiber.MethodConnect, fiber.MethodTrace,
		},
		AllowCredentials: true,
	}))

	h := &handler{
		logger: logger,
		strict: cfg.StrictRefs,
		opts:   pipeline.Options{IgnoreDangling: cfg.IgnoreDangling},
	}

	// ── Health ────────────────────────────────────────────────────────
	app.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"Ping": "Pong"})
	})

	// ── Pipelines ─────────────────────────────────────────────────────
	app.Post("/pipelines/parse", h.parse)

	// ── Metrics ───────────────────────────────────────────────────────
	if cfg.Metrics {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	return app
}

// errorHandler renders every returned error as {"error": ...}.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else {
			logger.Error("unhandled error",
				"request_id", requestid.FromContext(c),
				"path", c.Path(),
				"error", err,
			)
		}

		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
}
