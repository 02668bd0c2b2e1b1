package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/varkes/adshort/internal/app/service"
)

const identityKey = "identity"

// IdentityInfo is the capability context derived from the request's
// Bearer token. A missing or undecodable token yields an anonymous
// identity, never an error.
type IdentityInfo struct {
	UserID        uint
	IsAdmin       bool
	Authenticated bool
}

// Identity decodes the Authorization header on every request and
// stores the result in Locals. Decode-or-null: handlers downstream
// see either an authenticated identity or the anonymous zero value.
func Identity(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident := IdentityInfo{}

		header := c.Get(fiber.HeaderAuthorization)
		if strings.HasPrefix(header, "Bearer ") {
			if claims, err := auth.Verify(strings.TrimPrefix(header, "Bearer ")); err == nil {
				ident = IdentityInfo{
					UserID:        claims.UserID,
					IsAdmin:       claims.IsAdmin,
					Authenticated: true,
				}
			}
		}

		c.Locals(identityKey, ident)
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by the Identity middleware.
func IdentityFrom(c *fiber.Ctx) IdentityInfo {
	if ident, ok := c.Locals(identityKey).(IdentityInfo); ok {
		return ident
	}
	return IdentityInfo{}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IdentityFrom(c).Authenticated {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}
		return c.Next()
	}
}

// RequireAdmin rejects non-admin requests with 403 (401 if anonymous).
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident := IdentityFrom(c)
		if !ident.Authenticated {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}
		if !ident.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin access required",
			})
		}
		return c.Next()
	}
}
