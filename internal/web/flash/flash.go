// Package flash carries one-shot user-facing messages across a redirect.
package flash

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

const cookieName = "flash"

// Set stores a message shown on the next rendered page. The cookie
// round-trip means the message survives exactly one redirect.
func Set(c *fiber.Ctx, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    url.QueryEscape(message),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Pop returns the pending message, if any, and clears it.
func Pop(c *fiber.Ctx) string {
	raw := c.Cookies(cookieName)
	if raw == "" {
		return ""
	}
	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	message, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return message
}
