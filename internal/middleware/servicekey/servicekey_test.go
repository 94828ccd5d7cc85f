package servicekey

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(key string) *fiber.App {
	app := fiber.New()
	app.Use(New(key))
	app.Get("/", func(c *fiber.Ctx) error {
		privileged, _ := c.Locals(LocalsPrivileged).(bool)
		if privileged {
			return c.SendString("privileged")
		}
		return c.SendString("regular")
	})
	return app
}

func TestServiceKey(t *testing.T) {
	tests := []struct {
		name      string
		configKey string
		header    string
		want      string
	}{
		{name: "matching key grants privilege", configKey: "s3cret", header: "s3cret", want: "privileged"},
		{name: "wrong key stays regular", configKey: "s3cret", header: "guess", want: "regular"},
		{name: "missing header stays regular", configKey: "s3cret", header: "", want: "regular"},
		{name: "empty config disables the mechanism", configKey: "", header: "", want: "regular"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(HeaderServiceKey, tt.header)
			}

			resp, err := testApp(tt.configKey).Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
		})
	}
}
