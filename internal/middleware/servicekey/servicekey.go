package servicekey

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

const (
	// HeaderServiceKey carries the shared key internal callers present.
	HeaderServiceKey = "X-Service-Key"
	// LocalsPrivileged is the Fiber locals key marking a request as coming
	// from a trusted internal caller; privileged requests skip the external
	// authorization check.
	LocalsPrivileged = "privileged"
)

// New returns a middleware that marks requests presenting the configured
// service key as privileged. An empty configured key disables the mechanism
// entirely; no request can become privileged.
func New(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key != "" {
			presented := c.Get(HeaderServiceKey)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) == 1 {
				c.Locals(LocalsPrivileged, true)
			}
		}
		return c.Next()
	}
}
