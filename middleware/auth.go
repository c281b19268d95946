// Package middleware provides the Fiber middleware shared by all routes.
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/apperr"
	"storefront/auth"
)

const claimsKey = "claims"

// RequireToken verifies the bearer token and stores its claims on the
// request. A missing token is a 401, a bad one a 403.
func RequireToken(tokens auth.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := tokens.Verify(bearerToken(c.Get(fiber.HeaderAuthorization)))
		if err != nil {
			if errors.Is(err, auth.ErrMissingToken) {
				return apperr.Unauthorized("Token is required")
			}
			return apperr.Forbidden("Invalid token")
		}

		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// RequireAdmin must run after RequireToken.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			return apperr.Unauthorized("Token is required")
		}
		if !claims.IsAdmin() {
			return apperr.Forbidden("Access denied")
		}
		return c.Next()
	}
}

func ClaimsFrom(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
