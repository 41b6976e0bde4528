package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// versionAliases maps shorthand API versions to their canonical form.
var versionAliases = map[string]string{
	"1":   "1.0.0",
	"1.0": "1.0.0",
}

// VersionMiddleware resolves the X-Api-Version header to a canonical
// version and stores it in the request context.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", "1.0.0")
		if canonical, ok := versionAliases[version]; ok {
			version = canonical
		}
		c.Locals("apiVersion", version)
		return c.Next()
	}
}
