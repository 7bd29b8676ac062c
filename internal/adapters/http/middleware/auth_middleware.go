package middleware

import (
	"context"
	"errors"
	"strings"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	localActor = "actor"
	localUser  = "user"
)

// ActorResolver turns an access token into the live user behind it
type ActorResolver interface {
	ResolveActor(ctx context.Context, accessToken string) (*models.User, error)
}

// AuthMiddleware requires a valid access token and loads the live actor
func AuthMiddleware(resolver ActorResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := extractToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		user, err := resolver.ResolveActor(c.UserContext(), accessToken)
		if err != nil {
			var derr *domain.Error
			if errors.As(err, &derr) {
				return response.Unauthorized(c, derr.Msg)
			}
			zap.L().Error("❌ Failed to resolve actor", zap.Error(err))
			return response.InternalServerError(c, "Internal server error")
		}

		c.Locals(localUser, user)
		c.Locals(localActor, user.Actor())
		return c.Next()
	}
}

// RoleMiddleware allows only the given roles
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := GetActor(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if actor.Role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly allows only ADMIN
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}

// LoanManagerOrAdmin allows LOAN_MANAGER or ADMIN
func LoanManagerOrAdmin() fiber.Handler {
	return RoleMiddleware(domain.RoleLoanManager, domain.RoleAdmin)
}

// GetActor returns the actor loaded by AuthMiddleware
func GetActor(c *fiber.Ctx) (domain.Actor, bool) {
	actor, ok := c.Locals(localActor).(domain.Actor)
	return actor, ok
}

// GetUser returns the user loaded by AuthMiddleware
func GetUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(localUser).(*models.User)
	return user, ok
}

// extractToken reads the access token from the cookie, then the
// Authorization header
func extractToken(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}
	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}
