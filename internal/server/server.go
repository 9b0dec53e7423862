// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/essink/internal/bulk"
	"github.com/mia-platform/essink/internal/info"
	"github.com/mia-platform/essink/internal/logger"
)

const (
	loggerName = "essink:server"

	batchesPath = "/batches"
	statusPath  = "/-/healthz"
)

var (
	ErrServerListen   = errors.New("server listen error")
	ErrServerShutdown = errors.New("server shutdown error")
)

// BatchHandler processes one posted change-stream batch and returns the bulk
// delivery result.
type BatchHandler func(ctx context.Context, event *events.DynamoDBEvent) (*bulk.Result, error)

type Server interface {
	Start() error
	Stop() error
	StartAsync(ctx context.Context)
}

type impServer struct {
	config

	app *fiber.App
}

// NewServer builds the HTTP server exposing the batch ingestion endpoint.
// Its listen configuration is read from environment variables.
func NewServer(ctx context.Context, handler BatchHandler) (Server, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: cfg.DisableStartupMessage,
		Immutable:             true,
	})
	log := logger.FromContext(ctx)
	app.Use(logger.RequestMiddleware(log, []string{"/-/"}))

	app.Get(statusPath, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"name": info.AppName, "version": info.Version, "status": "OK"})
	})
	app.Post(batchesPath, batchRoute(handler))

	return &impServer{
		app:    app,
		config: *cfg,
	}, nil
}

// batchRoute decodes the posted stream batch and runs it through the
// handler. Unknown fields in the payload are tolerated by the JSON decoding.
func batchRoute(handler BatchHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event := new(events.DynamoDBEvent)
		if err := json.Unmarshal(c.Body(), event); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"statusCode": http.StatusBadRequest,
				"error":      http.StatusText(http.StatusBadRequest),
				"message":    "malformed change-stream batch",
			})
		}

		result, err := handler(c.UserContext(), event)
		if err != nil {
			logger.FromContext(c.UserContext()).WithName(loggerName).Error("error processing batch", "error", err)
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"statusCode": http.StatusInternalServerError,
				"error":      http.StatusText(http.StatusInternalServerError),
				"message":    "error processing change-stream batch",
			})
		}

		return c.JSON(result)
	}
}

func (s *impServer) Start() error {
	if err := s.app.Listen(fmt.Sprintf("%s:%s", s.HTTPHost, s.HTTPPort)); err != nil {
		return fmt.Errorf("%w: %w", ErrServerListen, err)
	}
	return nil
}

func (s *impServer) Stop() error {
	if err := s.app.Shutdown(); err != nil {
		return fmt.Errorf("%w: %w", ErrServerShutdown, err)
	}
	return nil
}

func (s *impServer) StartAsync(ctx context.Context) {
	log := logger.FromContext(ctx).WithName(loggerName)
	go func() {
		if err := s.Start(); err != nil {
			log.Error(err.Error())
		}
	}()
}
