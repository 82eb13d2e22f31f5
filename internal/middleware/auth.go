package middleware

import (
	"net/http"
	"strings"

	"inventory-service/internal/auth"
	"inventory-service/pkg/jwtutil"
	"inventory-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token and resolves the acting principal
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Resolve the principal once; handlers and the access policy never
		// probe token claims directly.
		principal := &auth.Principal{
			UserID:    claims.UserID,
			Username:  claims.Username,
			UserType:  claims.UserType,
			Staff:     claims.IsStaff,
			Superuser: claims.IsSuperuser,
		}
		c.Set("principal", principal)
		c.Set("user_id", claims.UserID)

		log.Info("Request authenticated",
			zap.Uint("user_id", principal.UserID),
			zap.String("username", principal.Username),
			zap.String("role", string(principal.Role())))

		return next(c)
	}
}

// GetPrincipal retrieves the acting principal from the context.
// Returns nil for unauthenticated requests.
func GetPrincipal(c echo.Context) *auth.Principal {
	principal, _ := c.Get("principal").(*auth.Principal)
	return principal
}
