package middleware

import (
	"context"

	"crm-reports/internal/common/models"
	"crm-reports/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates JWT tokens and injects user claims into context
func AuthMiddleware(skipAuth bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipAuth {
			// Dev mode: identity comes from headers
			claims := &utils.UserClaims{
				UserID:   c.Get("X-User-ID", "000000000000000000000001"),
				TenantID: c.Get("X-Tenant-ID", "000000000000000000000001"),
				Roles:    []string{"admin"},
			}
			bindClaims(c, claims)
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		// Extract token from "Bearer <token>"
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		claims, err := utils.ValidateToken(authHeader[7:])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		bindClaims(c, claims)
		return c.Next()
	}
}

func bindClaims(c *fiber.Ctx, claims *utils.UserClaims) {
	c.Locals(utils.UserClaimsKey, claims)
	c.Locals("userID", claims.UserID)

	ctx := context.WithValue(c.UserContext(), utils.UserClaimsKey, claims)
	ctx = context.WithValue(ctx, models.UserIDKey, claims.UserID)
	if claims.TenantID != "" {
		ctx = context.WithValue(ctx, models.TenantIDKey, claims.TenantID)
	}
	c.SetUserContext(ctx)
}

// CurrentUserID returns the authenticated user id or "".
func CurrentUserID(c *fiber.Ctx) string {
	if claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims); ok {
		return claims.UserID
	}
	return ""
}
