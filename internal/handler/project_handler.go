package handler

import (
	"net/http"

	"tracker-service/internal/service"
	"tracker-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ProjectHandler serves project CRUD endpoints.
type ProjectHandler struct {
	svc *service.ProjectService
}

// NewProjectHandler builds the handler.
func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// Create adds a project to the caller's tenant.
func (h *ProjectHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}

	var req service.CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse project creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	project, err := h.svc.Create(p, &req, c.RealIP())
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Project created",
		zap.Uint("project_id", project.ID),
		zap.Uint("tenant_id", project.TenantID),
		zap.Uint("created_by", p.UserID))

	return ok(c, http.StatusCreated, project)
}

// List returns the tenant's projects with task counts.
func (h *ProjectHandler) List(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}

	q := service.ListProjectsQuery{
		Search: c.QueryParam("search"),
		Status: c.QueryParam("status"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}

	items, total, page, err := h.svc.List(p, &q)
	if err != nil {
		return respondError(c, err)
	}

	return ok(c, http.StatusOK, echo.Map{
		"projects":   items,
		"total":      total,
		"pagination": page,
	})
}

// Update applies a partial project update.
func (h *ProjectHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	projectID, err := paramUint(c, "projectId")
	if err != nil {
		return respondError(c, err)
	}

	var req service.UpdateProjectRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse project update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	project, err := h.svc.Update(p, projectID, &req, c.RealIP())
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Project updated",
		zap.Uint("project_id", project.ID),
		zap.Uint("updated_by", p.UserID))

	return ok(c, http.StatusOK, project)
}

// Delete removes a project.
func (h *ProjectHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	projectID, err := paramUint(c, "projectId")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.svc.Delete(p, projectID, c.RealIP()); err != nil {
		return respondError(c, err)
	}

	log.Info("Project deleted",
		zap.Uint("project_id", projectID),
		zap.Uint("deleted_by", p.UserID))

	return okMessage(c, "Project deleted successfully")
}
