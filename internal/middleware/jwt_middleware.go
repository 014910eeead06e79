package middleware

import (
	"log/slog"
	"strings"

	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthRequired.
const (
	LocalUserID = "userId"
	LocalRole   = "role"
)

// TokenVerifier validates a bearer token.
type TokenVerifier interface {
	ValidateToken(tokenString string) (*services.Claims, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(verifier TokenVerifier, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required.")
		}

		// Expected format: "Bearer <token>"
		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'.")
		}

		claims, err := verifier.ValidateToken(strings.TrimSpace(tokenString))
		if err != nil {
			log.DebugContext(c.UserContext(), "jwt validation failed", "err", err)
			return unauthorized(c, "Invalid or expired token.")
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, claims.Role)

		return c.Next()
	}
}

// Optional returns AuthRequired when enabled and a pass-through handler otherwise.
func Optional(enabled bool, verifier TokenVerifier, log *slog.Logger) fiber.Handler {
	if !enabled {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return AuthRequired(verifier, log)
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}
