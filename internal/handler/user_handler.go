package handler

import (
	"net/http"

	"tracker-service/internal/policy"
	"tracker-service/internal/service"
	"tracker-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UserHandler serves tenant user management endpoints.
type UserHandler struct {
	svc *service.UserService
}

// NewUserHandler builds the handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Create adds a user to the tenant in the path.
func (h *UserHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	tenantID, err := paramUint(c, "tenantId")
	if err != nil {
		return respondError(c, err)
	}

	var req service.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse user creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	user, err := h.svc.Create(p, tenantID, &req, c.RealIP())
	if err != nil {
		return respondError(c, err)
	}

	log.Info("User created",
		zap.Uint("user_id", user.ID),
		zap.Uint("tenant_id", tenantID),
		zap.String("role", user.Role))

	return ok(c, http.StatusCreated, user)
}

// List returns the tenant's users.
func (h *UserHandler) List(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	tenantID, err := paramUint(c, "tenantId")
	if err != nil {
		return respondError(c, err)
	}

	users, err := h.svc.List(p, tenantID)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, users)
}

// Update applies a user update under the per-role field rules.
func (h *UserHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	userID, err := paramUint(c, "userId")
	if err != nil {
		return respondError(c, err)
	}

	var upd policy.UserUpdate
	if err := c.Bind(&upd); err != nil {
		log.Warn("Failed to parse user update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	user, err := h.svc.Update(p, userID, &upd, c.RealIP())
	if err != nil {
		return respondError(c, err)
	}

	log.Info("User updated",
		zap.Uint("user_id", user.ID),
		zap.Uint("updated_by", p.UserID))

	return okMessage(c, "User updated successfully")
}

// Delete removes a user, unassigning its tasks.
func (h *UserHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	userID, err := paramUint(c, "userId")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.svc.Delete(p, userID, c.RealIP()); err != nil {
		return respondError(c, err)
	}

	log.Info("User deleted",
		zap.Uint("user_id", userID),
		zap.Uint("deleted_by", p.UserID))

	return okMessage(c, "User deleted successfully")
}
