package handler

import (
	"net/http"

	"tracker-service/internal/apperr"
	"tracker-service/internal/middleware"
	"tracker-service/internal/principal"
	"tracker-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// respondError maps a classified error onto its HTTP status with the
// stable caller-facing message. Internal errors are logged with their
// cause but surface only a generic message.
func respondError(c echo.Context, err error) error {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		logger.FromContext(c).Error("Request failed", zap.Error(err))
	}
	return c.JSON(kind.HTTPStatus(), echo.Map{
		"success": false,
		"message": apperr.MessageOf(err),
	})
}

// currentPrincipal returns the Principal resolved by the auth
// middleware, or an Unauthenticated error for routes reached without it.
func currentPrincipal(c echo.Context) (*principal.Principal, error) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return nil, apperr.New(apperr.Unauthenticated, "authentication required")
	}
	return p, nil
}

// ok wraps a payload in the success envelope.
func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

// okMessage responds with a bare success message.
func okMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": message})
}
