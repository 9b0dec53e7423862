// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const requestIDHeaderName = "x-request-id"

// requestID returns the inbound x-request-id header, generating a random uuid
// when the caller did not provide one.
func requestID(c *fiber.Ctx) string {
	if id := c.Get(requestIDHeaderName); id != "" {
		return id
	}

	return uuid.NewString()
}

// RequestMiddleware returns a fiber middleware that attaches a request-scoped
// logger to the user context and logs every completed request. Paths starting
// with one of excludedPrefixes are skipped.
func RequestMiddleware(log Logger, excludedPrefixes []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, prefix := range excludedPrefixes {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		start := time.Now()
		requestLog := log.WithName("request").With("requestId", requestID(c))
		c.SetUserContext(WithContext(c.UserContext(), requestLog))

		err := c.Next()

		statusCode := c.Response().StatusCode()
		if fiberErr, ok := err.(*fiber.Error); ok {
			statusCode = fiberErr.Code
		}

		requestLog.Info("request completed",
			"method", c.Method(),
			"path", path,
			"statusCode", statusCode,
			"responseTime", float64(time.Since(start).Milliseconds()),
		)

		return err
	}
}
