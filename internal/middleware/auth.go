package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/dukan/internal/config"
	"github.com/example/dukan/internal/utils"
)

// SessionCookieName carries the signed session token.
const SessionCookieName = "auth-token"

const sessionContextKey = "currentSession"

// AuthMiddleware validates the session token (cookie first, then bearer
// header) and loads the session payload into context. Note that logout only
// clears the cookie: a token copied elsewhere stays valid until it expires,
// since there is no server-side revocation.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookieName)
		if tokenString == "" {
			tokenString = bearerToken(c)
		}
		if tokenString == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		payload, err := utils.ParseToken(cfg.JWTSecret, tokenString)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(sessionContextKey, payload)
		return c.Next()
	}
}

// AdminRequired rejects sessions without the admin flag. Must run after
// AuthMiddleware.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := GetSession(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		if !session.IsAdmin {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}

// GetSession extracts the authenticated session payload from context.
func GetSession(c *fiber.Ctx) (utils.SessionPayload, bool) {
	value := c.Locals(sessionContextKey)
	if value == nil {
		return utils.SessionPayload{}, false
	}

	if payload, ok := value.(utils.SessionPayload); ok {
		return payload, true
	}

	return utils.SessionPayload{}, false
}

// GetCurrentUserID extracts the authenticated user ID from context.
func GetCurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	session, ok := GetSession(c)
	if !ok {
		return uuid.Nil, false
	}
	return session.UserID, true
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return parts[1]
}
