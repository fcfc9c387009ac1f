package middleware

import (
	"net/http"
	"strings"

	"tracker-service/internal/principal"
	"tracker-service/pkg/logger"
	"tracker-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PrincipalKey is the echo context key holding the resolved Principal.
const PrincipalKey = "principal"

// AuthMiddleware validates the bearer token and resolves it into a
// Principal, the single trust anchor for everything downstream. No
// handler re-derives identity from headers or body fields.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		p, err := principal.Resolve(parts[1])
		if err != nil {
			log.Warn("Failed to resolve principal", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		c.Set(PrincipalKey, p)
		log.Debug("Request authenticated",
			zap.Uint("user_id", p.UserID),
			zap.String("role", p.Role))

		return next(c)
	}
}

// PrincipalFromContext returns the Principal set by AuthMiddleware.
func PrincipalFromContext(c echo.Context) (*principal.Principal, bool) {
	p, ok := c.Get(PrincipalKey).(*principal.Principal)
	return p, ok
}
