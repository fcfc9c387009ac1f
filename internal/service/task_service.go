package service

import (
	"errors"
	"time"

	"tracker-service/internal/apperr"
	"tracker-service/internal/audit"
	"tracker-service/internal/model"
	"tracker-service/internal/policy"
	"tracker-service/internal/principal"
	"tracker-service/prometheus"

	"gorm.io/gorm"
)

// TaskService orchestrates task CRUD within a project.
type TaskService struct {
	db       *gorm.DB
	recorder audit.Recorder
}

// NewTaskService builds the service over the given handles.
func NewTaskService(db *gorm.DB, recorder audit.Recorder) *TaskService {
	return &TaskService{db: db, recorder: recorder}
}

// CreateTaskRequest carries the create payload.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	AssignedTo  *uint      `json:"assignedTo"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateTaskRequest carries a partial update. AssignedTo distinguishes
// "leave as is" (field absent) from "unassign" (explicit null).
type UpdateTaskRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Status      *string      `json:"status"`
	Priority    *string      `json:"priority"`
	AssignedTo  OptionalUint `json:"assignedTo"`
	DueDate     *time.Time   `json:"dueDate"`
}

// AssigneeSummary is the embedded assignee of a task listing row.
type AssigneeSummary struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// TaskListItem is one row of a task listing.
type TaskListItem struct {
	ID          uint             `json:"id"`
	ProjectID   uint             `json:"projectId"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
	Priority    string           `json:"priority"`
	Assignee    *AssigneeSummary `json:"assignee"`
	DueDate     *time.Time       `json:"dueDate"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// ListTasksQuery filters the task listing.
type ListTasksQuery struct {
	Status     string
	Priority   string
	AssignedTo uint
	Search     string
	Page       int
	Limit      int
}

func validTaskStatus(s string) bool {
	return s == model.TaskStatusTodo || s == model.TaskStatusInProgress || s == model.TaskStatusCompleted
}

func validPriority(p string) bool {
	return p == model.PriorityLow || p == model.PriorityMedium || p == model.PriorityHigh
}

// checkProjectRef verifies that the referenced project exists and
// belongs to the caller's tenant. A bad reference is a validation
// failure of the request, not an access decision: absent and
// cross-tenant ids produce the same response, so the reference cannot
// be used to probe other tenants' project ids.
func (s *TaskService) checkProjectRef(p *principal.Principal, projectID uint) (*model.Project, error) {
	var project model.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.Validation, "project doesn't belong to user's tenant")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load project", err)
	}
	if !p.InTenant(project.TenantID) {
		return nil, apperr.New(apperr.Validation, "project doesn't belong to user's tenant")
	}
	return &project, nil
}

// checkAssigneeRef verifies that the assignee exists and belongs to the
// caller's tenant.
func (s *TaskService) checkAssigneeRef(p *principal.Principal, userID uint) error {
	var user model.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.Validation, "assigned user doesn't belong to same tenant")
		}
		return apperr.Wrap(apperr.Internal, "failed to load user", err)
	}
	if user.TenantID == nil || !p.InTenant(*user.TenantID) {
		return apperr.New(apperr.Validation, "assigned user doesn't belong to same tenant")
	}
	return nil
}

// Create adds a task to a project of the caller's tenant.
func (s *TaskService) Create(p *principal.Principal, projectID uint, req *CreateTaskRequest, ip string) (*model.Task, error) {
	if p.TenantID == nil {
		prometheus.RecordAccessDenied(model.EntityTask)
		return nil, apperr.New(apperr.Forbidden, "not authorized")
	}
	if req.Title == "" {
		return nil, apperr.New(apperr.Validation, "title is required")
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !validPriority(priority) {
		return nil, apperr.New(apperr.Validation, "invalid priority")
	}

	if _, err := s.checkProjectRef(p, projectID); err != nil {
		return nil, err
	}
	if req.AssignedTo != nil {
		if err := s.checkAssigneeRef(p, *req.AssignedTo); err != nil {
			return nil, err
		}
	}

	task := model.Task{
		TenantID:    *p.TenantID,
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskStatusTodo,
		Priority:    priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := s.db.Create(&task).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "task creation failed", err)
	}

	prometheus.RecordMutation(model.EntityTask, model.ActionCreateTask)
	s.recorder.Record(audit.Entry{
		TenantID:   task.TenantID,
		UserID:     p.UserID,
		Action:     model.ActionCreateTask,
		EntityType: model.EntityTask,
		EntityID:   task.ID,
		IP:         ip,
	})

	return &task, nil
}

// List returns the tasks of one project, high priority first, then by
// due date.
func (s *TaskService) List(p *principal.Principal, projectID uint, q *ListTasksQuery) ([]TaskListItem, int64, Pagination, error) {
	var project model.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, Pagination{}, apperr.New(apperr.NotFound, "project not found")
		}
		return nil, 0, Pagination{}, apperr.Wrap(apperr.Internal, "failed to load project", err)
	}
	if err := policy.CanViewProject(p, &project); err != nil {
		prometheus.RecordAccessDenied(model.EntityTask)
		return nil, 0, Pagination{}, err
	}

	page := NormalizePage(q.Page, q.Limit, DefaultTaskLimit)

	defer prometheus.TrackDBOperation("query")(time.Now())
	query := s.db.Model(&model.Task{}).Where("project_id = ?", projectID)
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Priority != "" {
		query = query.Where("priority = ?", q.Priority)
	}
	if q.AssignedTo != 0 {
		query = query.Where("assigned_to = ?", q.AssignedTo)
	}
	if q.Search != "" {
		query = query.Where("title ILIKE ?", "%"+q.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, Pagination{}, apperr.Wrap(apperr.Internal, "failed to count tasks", err)
	}

	var tasks []model.Task
	err := query.
		Order("CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END").
		Order("due_date ASC NULLS LAST").
		Offset(page.Offset()).Limit(page.Limit).
		Preload("Assignee").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, Pagination{}, apperr.Wrap(apperr.Internal, "failed to list tasks", err)
	}

	items := make([]TaskListItem, 0, len(tasks))
	for _, t := range tasks {
		item := TaskListItem{
			ID:          t.ID,
			ProjectID:   t.ProjectID,
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			Priority:    t.Priority,
			DueDate:     t.DueDate,
			CreatedAt:   t.CreatedAt,
		}
		if t.Assignee != nil {
			item.Assignee = &AssigneeSummary{
				ID:       t.Assignee.ID,
				FullName: t.Assignee.FullName,
				Email:    t.Assignee.Email,
			}
		}
		items = append(items, item)
	}

	return items, total, NewPagination(page, total), nil
}

func (s *TaskService) loadScoped(p *principal.Principal, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "task not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load task", err)
	}
	if err := policy.CanAccessTask(p, &task); err != nil {
		prometheus.RecordAccessDenied(model.EntityTask)
		return nil, err
	}
	return &task, nil
}

// UpdateStatus moves a task to the given status. All direct transitions
// between the three statuses are allowed.
func (s *TaskService) UpdateStatus(p *principal.Principal, taskID uint, status string, ip string) (*model.Task, error) {
	if status == "" {
		return nil, apperr.New(apperr.Validation, "status is required")
	}
	if !validTaskStatus(status) {
		return nil, apperr.New(apperr.Validation, "invalid status")
	}

	task, err := s.loadScoped(p, taskID)
	if err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := s.db.Model(task).Update("status", status).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "task update failed", err)
	}

	prometheus.RecordMutation(model.EntityTask, model.ActionUpdateTask)
	s.recorder.Record(audit.Entry{
		TenantID:   task.TenantID,
		UserID:     p.UserID,
		Action:     model.ActionUpdateTask,
		EntityType: model.EntityTask,
		EntityID:   task.ID,
		IP:         ip,
	})

	return task, nil
}

// Update applies a partial task update, re-validating the assignee's
// tenant when the assignment changes.
func (s *TaskService) Update(p *principal.Principal, taskID uint, req *UpdateTaskRequest, ip string) (*model.Task, error) {
	task, err := s.loadScoped(p, taskID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil && !validTaskStatus(*req.Status) {
		return nil, apperr.New(apperr.Validation, "invalid status")
	}
	if req.Priority != nil && !validPriority(*req.Priority) {
		return nil, apperr.New(apperr.Validation, "invalid priority")
	}
	if req.AssignedTo.Set && req.AssignedTo.Value != nil {
		if err := s.checkAssigneeRef(p, *req.AssignedTo.Value); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.AssignedTo.Set {
		updates["assigned_to"] = req.AssignedTo.Value
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if len(updates) == 0 {
		return nil, apperr.New(apperr.Validation, "no valid fields to update")
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := s.db.Model(task).Updates(updates).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "task update failed", err)
	}

	prometheus.RecordMutation(model.EntityTask, model.ActionUpdateTask)
	s.recorder.Record(audit.Entry{
		TenantID:   task.TenantID,
		UserID:     p.UserID,
		Action:     model.ActionUpdateTask,
		EntityType: model.EntityTask,
		EntityID:   task.ID,
		IP:         ip,
	})

	return task, nil
}

// Delete removes a task. Any member of the task's tenant may delete it.
func (s *TaskService) Delete(p *principal.Principal, taskID uint, ip string) error {
	task, err := s.loadScoped(p, taskID)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := s.db.Delete(task).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "task deletion failed", err)
	}

	prometheus.RecordMutation(model.EntityTask, model.ActionDeleteTask)
	s.recorder.Record(audit.Entry{
		TenantID:   task.TenantID,
		UserID:     p.UserID,
		Action:     model.ActionDeleteTask,
		EntityType: model.EntityTask,
		EntityID:   task.ID,
		IP:         ip,
	})

	return nil
}
