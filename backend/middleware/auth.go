package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"neuralnexus/backend/apperr"
	"neuralnexus/backend/utils"
)

const claimsKey = "claims"

type TokenVerifier interface {
	Verify(token string) (*utils.Claims, error)
}

// AuthMiddleware требует заголовок Authorization: Bearer <token>
func AuthMiddleware(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return utils.HandleError(c, apperr.Unauthenticated("auth", "Missing authorization token"))
		}
		claims, err := tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			return utils.HandleError(c, err)
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// Claims returns the identity stored by AuthMiddleware.
func Claims(c *fiber.Ctx) (*utils.Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*utils.Claims)
	return claims, ok
}

// UserID returns the authenticated user id, or 0 outside AuthMiddleware.
func UserID(c *fiber.Ctx) uint {
	if claims, ok := Claims(c); ok {
		return claims.UserID
	}
	return 0
}
