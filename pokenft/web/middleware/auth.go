package middleware

import (
	"encoding/base64"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pokenft/pokenft/pokenft/auth"
	"github.com/pokenft/pokenft/pokenft/web/apiutil"
)

const identityKey = "identity"

// RequireAdmin authenticates the request via HTTP Basic auth against the
// given authenticator and stores the resulting identity in locals. Requests
// without valid credentials get a 401 with a challenge header.
func RequireAdmin(authenticator auth.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, password, ok := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
		if !ok {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="admin"`)
			return apiutil.SendUnauthorized(c, "Admin credentials required")
		}

		identity, err := authenticator.Authenticate(username, password)
		if err != nil {
			slog.Warn("Admin authentication failed",
				slog.String("type", "api"),
				slog.String("path", c.Path()),
				slog.String("ip", apiutil.GetIPAddress(c)),
			)
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="admin"`)
			return apiutil.SendUnauthorized(c, "Invalid admin credentials")
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// Identity returns the authenticated identity stored by RequireAdmin, if
// any.
func Identity(c *fiber.Ctx) (*auth.Identity, bool) {
	id, ok := c.Locals(identityKey).(*auth.Identity)
	return id, ok
}

func parseBasicAuth(header string) (username, password string, ok bool) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", "", false
	}
	return username, password, true
}
