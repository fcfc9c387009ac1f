package handler

import (
	"net/http"

	"tracker-service/internal/service"
	"tracker-service/pkg/jwtutil"
	"tracker-service/pkg/logger"
	"tracker-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler serves tenant registration, login and profile endpoints.
type AuthHandler struct {
	tenants *service.TenantService
	users   *service.UserService
}

// NewAuthHandler builds the handler.
func NewAuthHandler(tenants *service.TenantService, users *service.UserService) *AuthHandler {
	return &AuthHandler{tenants: tenants, users: users}
}

// RegisterTenant handles public tenant sign-up: a tenant plus its first
// tenant_admin, created together.
func (h *AuthHandler) RegisterTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterTenantCounter.Inc()

	var req service.RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse registration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	tenant, admin, err := h.tenants.Register(&req, c.RealIP())
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Tenant registered",
		zap.Uint("tenant_id", tenant.ID),
		zap.String("subdomain", tenant.Subdomain))

	return ok(c, http.StatusCreated, echo.Map{
		"tenantId":  tenant.ID,
		"subdomain": tenant.Subdomain,
		"adminUser": echo.Map{
			"id":       admin.ID,
			"email":    admin.Email,
			"fullName": admin.FullName,
			"role":     admin.Role,
		},
	})
}

// Login exchanges subdomain/email/password for a signed token.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email           string `json:"email"`
		Password        string `json:"password"`
		TenantSubdomain string `json:"tenantSubdomain"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	user, tenant, err := h.tenants.Authenticate(req.TenantSubdomain, req.Email, req.Password)
	if err != nil {
		prometheus.RecordAuthError("login_failure")
		return respondError(c, err)
	}

	token, err := jwtutil.GenerateToken(user.ID, user.Email, user.TenantID, user.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "token error"})
	}
	prometheus.IncreaseActiveTokens()

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.Uint("tenant_id", tenant.ID),
		zap.String("role", user.Role))

	return ok(c, http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":       user.ID,
			"email":    user.Email,
			"fullName": user.FullName,
			"role":     user.Role,
			"tenantId": tenant.ID,
		},
		"token":     token,
		"expiresIn": jwtutil.ExpiresInSeconds(),
	})
}

// Me returns the authenticated user's profile and tenant.
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}

	user, tenant, err := h.users.Current(p)
	if err != nil {
		return respondError(c, err)
	}

	return ok(c, http.StatusOK, echo.Map{
		"id":       user.ID,
		"email":    user.Email,
		"fullName": user.FullName,
		"role":     user.Role,
		"isActive": user.IsActive,
		"tenant":   tenant,
	})
}

// Logout acknowledges the logout; tokens are stateless so nothing is
// invalidated server-side.
func (h *AuthHandler) Logout(c echo.Context) error {
	return okMessage(c, "Logged out successfully")
}
