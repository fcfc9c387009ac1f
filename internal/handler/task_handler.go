package handler

import (
	"net/http"

	"tracker-service/internal/service"
	"tracker-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TaskHandler serves task CRUD endpoints.
type TaskHandler struct {
	svc *service.TaskService
}

// NewTaskHandler builds the handler.
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// Create adds a task to the project in the path.
func (h *TaskHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	projectID, err := paramUint(c, "projectId")
	if err != nil {
		return respondError(c, err)
	}

	var req service.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse task creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	task, err := h.svc.Create(p, projectID, &req, c.RealIP())
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Task created",
		zap.Uint("task_id", task.ID),
		zap.Uint("project_id", projectID),
		zap.Uint("created_by", p.UserID))

	return ok(c, http.StatusCreated, task)
}

// List returns one project's tasks.
func (h *TaskHandler) List(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	projectID, err := paramUint(c, "projectId")
	if err != nil {
		return respondError(c, err)
	}

	assignedTo, err := queryUint(c, "assignedTo")
	if err != nil {
		return respondError(c, err)
	}

	q := service.ListTasksQuery{
		Status:     c.QueryParam("status"),
		Priority:   c.QueryParam("priority"),
		AssignedTo: assignedTo,
		Search:     c.QueryParam("search"),
		Page:       queryInt(c, "page"),
		Limit:      queryInt(c, "limit"),
	}

	items, total, page, err := h.svc.List(p, projectID, &q)
	if err != nil {
		return respondError(c, err)
	}

	return ok(c, http.StatusOK, echo.Map{
		"tasks":      items,
		"total":      total,
		"pagination": page,
	})
}

// UpdateStatus moves a task between statuses.
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	taskID, err := paramUint(c, "taskId")
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse status update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	task, err := h.svc.UpdateStatus(p, taskID, req.Status, c.RealIP())
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Task status updated",
		zap.Uint("task_id", task.ID),
		zap.String("status", task.Status),
		zap.Uint("updated_by", p.UserID))

	return ok(c, http.StatusOK, echo.Map{
		"id":        task.ID,
		"status":    task.Status,
		"updatedAt": task.UpdatedAt,
	})
}

// Update applies a partial task update.
func (h *TaskHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	taskID, err := paramUint(c, "taskId")
	if err != nil {
		return respondError(c, err)
	}

	var req service.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse task update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	task, err := h.svc.Update(p, taskID, &req, c.RealIP())
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Task updated",
		zap.Uint("task_id", task.ID),
		zap.Uint("updated_by", p.UserID))

	return ok(c, http.StatusOK, task)
}

// Delete removes a task.
func (h *TaskHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	taskID, err := paramUint(c, "taskId")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.svc.Delete(p, taskID, c.RealIP()); err != nil {
		return respondError(c, err)
	}

	log.Info("Task deleted",
		zap.Uint("task_id", taskID),
		zap.Uint("deleted_by", p.UserID))

	return okMessage(c, "Task deleted successfully")
}
