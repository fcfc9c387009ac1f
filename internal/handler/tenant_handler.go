package handler

import (
	"net/http"
	"strconv"

	"tracker-service/internal/apperr"
	"tracker-service/internal/policy"
	"tracker-service/internal/service"
	"tracker-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantHandler serves tenant detail, update and listing endpoints.
type TenantHandler struct {
	svc *service.TenantService
}

// NewTenantHandler builds the handler.
func NewTenantHandler(svc *service.TenantService) *TenantHandler {
	return &TenantHandler{svc: svc}
}

func paramUint(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, apperr.New(apperr.Validation, "invalid "+name)
	}
	return uint(id), nil
}

func queryInt(c echo.Context, name string) int {
	v, _ := strconv.Atoi(c.QueryParam(name))
	return v
}

// queryUint parses an optional unsigned query parameter; an absent
// parameter yields zero, a malformed one (including negatives) is a
// validation failure.
func queryUint(c echo.Context, name string) (uint, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperr.New(apperr.Validation, "invalid "+name)
	}
	return uint(v), nil
}

// Get returns tenant details with aggregate counts.
func (h *TenantHandler) Get(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	tenantID, err := paramUint(c, "tenantId")
	if err != nil {
		return respondError(c, err)
	}

	tenant, stats, err := h.svc.Get(p, tenantID)
	if err != nil {
		return respondError(c, err)
	}

	return ok(c, http.StatusOK, echo.Map{
		"id":               tenant.ID,
		"name":             tenant.Name,
		"subdomain":        tenant.Subdomain,
		"status":           tenant.Status,
		"subscriptionPlan": tenant.SubscriptionPlan,
		"maxUsers":         tenant.MaxUsers,
		"maxProjects":      tenant.MaxProjects,
		"createdAt":        tenant.CreatedAt,
		"stats":            stats,
	})
}

// Update applies a role-shaped tenant update.
func (h *TenantHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	tenantID, err := paramUint(c, "tenantId")
	if err != nil {
		return respondError(c, err)
	}

	var upd policy.TenantUpdate
	if err := c.Bind(&upd); err != nil {
		log.Warn("Failed to parse tenant update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	tenant, err := h.svc.Update(p, tenantID, &upd, c.RealIP())
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Tenant updated",
		zap.Uint("tenant_id", tenant.ID),
		zap.Uint("user_id", p.UserID))

	return ok(c, http.StatusOK, echo.Map{
		"id":        tenant.ID,
		"name":      tenant.Name,
		"updatedAt": tenant.UpdatedAt,
	})
}

// List returns the cross-tenant listing for super_admin.
func (h *TenantHandler) List(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}

	q := service.ListTenantsQuery{
		Status:           c.QueryParam("status"),
		SubscriptionPlan: c.QueryParam("subscriptionPlan"),
		Page:             queryInt(c, "page"),
		Limit:            queryInt(c, "limit"),
	}

	items, total, page, err := h.svc.List(p, &q)
	if err != nil {
		return respondError(c, err)
	}

	return ok(c, http.StatusOK, echo.Map{
		"tenants":    items,
		"total":      total,
		"pagination": page,
	})
}
