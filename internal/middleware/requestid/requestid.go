package requestid

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"

	"github.com/7maceX1D/assetd/internal/pkg/log"
)

const (
	// HeaderRequestID is the HTTP header name for request ID
	HeaderRequestID = "X-Request-ID"
	// ContextKeyRequestID is the key used to store request ID in Fiber context
	ContextKeyRequestID = "request_id"
)

// New creates a middleware that generates or uses an existing X-Request-ID header
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			if id, err := uuid.NewV4(); err == nil {
				requestID = id.String()
			}
		}

		c.Locals(ContextKeyRequestID, requestID)
		c.Set(HeaderRequestID, requestID)

		return c.Next()
	}
}

// GetRequestID retrieves the request ID from Fiber context
func GetRequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// Logger creates a middleware that logs each request with method, path,
// status, duration and the request id.
func Logger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		ctx := log.WithRequestID(c.UserContext(), GetRequestID(c))
		if status >= fiber.StatusInternalServerError {
			log.ErrorWithContext(ctx, "%s %s -> %d (%s)", c.Method(), c.Path(), status, time.Since(start))
		} else {
			log.InfoWithContext(ctx, "%s %s -> %d (%s)", c.Method(), c.Path(), status, time.Since(start))
		}

		return err
	}
}
