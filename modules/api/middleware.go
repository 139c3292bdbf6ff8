package api

import (
	"errors"
	"strings"

	"github.com/bijaykarki4742/summer-class-web/identity"
	"github.com/bijaykarki4742/summer-class-web/modules/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	// UserContextKey is the key used to store user claims in the Fiber context.
	UserContextKey = "user"
	// TokenContextKey holds the raw bearer token for calls made on the user's behalf.
	TokenContextKey = "token"
)

// AuthMiddleware rejects requests without a valid bearer token and stores
// the caller's claims and token in the context.
func AuthMiddleware(authPort auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "Unauthorized"})
		}

		claims, err := authPort.ValidateToken(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, identity.ErrNotConfigured) {
				return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: err.Error()})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "Invalid token"})
		}

		c.Locals(UserContextKey, claims)
		c.Locals(TokenContextKey, token)
		return c.Next()
	}
}

func claimsFrom(c *fiber.Ctx) (*identity.Claims, string, bool) {
	claims, ok := c.Locals(UserContextKey).(*identity.Claims)
	if !ok {
		return nil, "", false
	}
	token, _ := c.Locals(TokenContextKey).(string)
	return claims, token, true
}
