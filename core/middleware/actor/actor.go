package actor

import (
	"strconv"

	"patrimony-manager/core/session"

	"github.com/gofiber/fiber/v2"
)

// Header carries the acting operator's id on incoming requests.
const Header = "X-Actor-ID"

// New returns middleware that copies the operator id from the request
// header onto the request context, where the session provider finds it.
// Requests without the header stay anonymous.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(Header)
		if raw == "" {
			return c.Next()
		}
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid " + Header + " header",
			})
		}
		c.SetUserContext(session.WithUser(c.UserContext(), uint(id)))
		return c.Next()
	}
}
