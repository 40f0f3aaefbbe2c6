package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/usercontext"
)

const (
	AUTH_KEY       string = usercontext.AuthKey
	USER_ID        string = usercontext.KeyUserID
	USER_NAME      string = usercontext.KeyUsername
	USER_IS_ADMIN  string = usercontext.KeyIsAdmin
	FROM_PROTECTED string = usercontext.KeyFromProtected
)

func isLoggedIn(c *fiber.Ctx) bool {
	var fromProtected bool
	if protectedValue := c.Locals(FROM_PROTECTED); protectedValue != nil {
		fromProtected = protectedValue.(bool)
	}

	return fromProtected
}

// ExtractUsername gets the username from Locals (set by middleware)
func ExtractUsername(c *fiber.Ctx) string {
	if userNameValue := c.Locals(USER_NAME); userNameValue != nil {
		if userName, ok := userNameValue.(string); ok {
			return userName
		}
	}

	return ""
}

// currentUserID returns the logged-in user's ID from Locals, 0 for anonymous
func currentUserID(c *fiber.Ctx) uint {
	return usercontext.GetUserID(c)
}

// csrfToken pulls the token set by the CSRF middleware; empty on non-CSRF routes
func csrfToken(c *fiber.Ctx) string {
	if v := c.Locals("csrf"); v != nil {
		if token, ok := v.(string); ok {
			return token
		}
	}
	return ""
}

// render merges the shared page context into binds and renders the template
func render(c *fiber.Ctx, template string, binds fiber.Map) error {
	if binds == nil {
		binds = fiber.Map{}
	}
	binds["IsLoggedIn"] = isLoggedIn(c)
	binds["Username"] = ExtractUsername(c)
	binds["IsAdmin"] = usercontext.IsAdmin(c)
	binds["CSRFToken"] = csrfToken(c)
	binds["Flash"] = flash.Get(c)

	return c.Render(template, binds)
}
