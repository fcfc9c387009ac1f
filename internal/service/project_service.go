package service

import (
	"errors"
	"time"

	"tracker-service/internal/apperr"
	"tracker-service/internal/audit"
	"tracker-service/internal/model"
	"tracker-service/internal/policy"
	"tracker-service/internal/principal"
	"tracker-service/internal/quota"
	"tracker-service/prometheus"

	"gorm.io/gorm"
)

// ProjectService orchestrates project CRUD.
type ProjectService struct {
	db       *gorm.DB
	recorder audit.Recorder
}

// NewProjectService builds the service over the given handles.
func NewProjectService(db *gorm.DB, recorder audit.Recorder) *ProjectService {
	return &ProjectService{db: db, recorder: recorder}
}

// CreateProjectRequest carries the create payload.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// UpdateProjectRequest carries a partial update.
type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// CreatorSummary is the embedded creator of a project listing row.
type CreatorSummary struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
	IsActive bool   `json:"isActive"`
}

// ProjectListItem is one row of a project listing.
type ProjectListItem struct {
	ID                 uint           `json:"id"`
	TenantID           uint           `json:"tenantId"`
	Name               string         `json:"name"`
	Description        string         `json:"description"`
	Status             string         `json:"status"`
	CreatedBy          CreatorSummary `json:"createdBy"`
	TaskCount          int            `json:"taskCount"`
	CompletedTaskCount int            `json:"completedTaskCount"`
	CreatedAt          time.Time      `json:"createdAt"`
}

// ListProjectsQuery filters the project listing.
type ListProjectsQuery struct {
	Search string
	Status string
	Page   int
	Limit  int
}

func validProjectStatus(s string) bool {
	return s == model.ProjectStatusActive || s == model.ProjectStatusCompleted || s == model.ProjectStatusArchived
}

// Create adds a project to the caller's tenant. The quota reservation
// and the insert share one transaction so concurrent creates cannot
// overshoot maxProjects.
func (s *ProjectService) Create(p *principal.Principal, req *CreateProjectRequest, ip string) (*model.Project, error) {
	if err := policy.CanCreateProject(p); err != nil {
		prometheus.RecordAccessDenied(model.EntityProject)
		return nil, err
	}
	if req.Name == "" {
		return nil, apperr.New(apperr.Validation, "project name is required")
	}
	status := req.Status
	if status == "" {
		status = model.ProjectStatusActive
	}
	if !validProjectStatus(status) {
		return nil, apperr.New(apperr.Validation, "invalid status")
	}

	tenantID := *p.TenantID
	project := model.Project{
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		CreatedBy:   p.UserID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := quota.Reserve(tx, tenantID, quota.KindProject); err != nil {
			return err
		}
		if err := tx.Create(&project).Error; err != nil {
			return apperr.Wrap(apperr.Internal, "project creation failed", err)
		}
		return nil
	})
	if err != nil {
		if apperr.Is(err, apperr.QuotaExceeded) {
			prometheus.RecordQuotaRejection(tenantID, string(quota.KindProject))
		}
		return nil, err
	}

	prometheus.RecordMutation(model.EntityProject, model.ActionCreateProject)
	s.recorder.Record(audit.Entry{
		TenantID:   tenantID,
		UserID:     p.UserID,
		Action:     model.ActionCreateProject,
		EntityType: model.EntityProject,
		EntityID:   project.ID,
		IP:         ip,
	})

	return &project, nil
}

// List returns the caller's tenant projects with creator summaries and
// task counts. super_admin sees projects of all tenants.
func (s *ProjectService) List(p *principal.Principal, q *ListProjectsQuery) ([]ProjectListItem, int64, Pagination, error) {
	page := NormalizePage(q.Page, q.Limit, DefaultProjectLimit)

	defer prometheus.TrackDBOperation("query")(time.Now())
	query := s.db.Model(&model.Project{})
	if !p.IsSuperAdmin() {
		if p.TenantID == nil {
			return nil, 0, Pagination{}, apperr.New(apperr.Forbidden, "not authorized")
		}
		query = query.Where("tenant_id = ?", *p.TenantID)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Search != "" {
		query = query.Where("name ILIKE ?", "%"+q.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, Pagination{}, apperr.Wrap(apperr.Internal, "failed to count projects", err)
	}

	var projects []model.Project
	err := query.Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Preload("Creator").Preload("Tasks").
		Find(&projects).Error
	if err != nil {
		return nil, 0, Pagination{}, apperr.Wrap(apperr.Internal, "failed to list projects", err)
	}

	items := make([]ProjectListItem, 0, len(projects))
	for _, proj := range projects {
		completed := 0
		for _, t := range proj.Tasks {
			if t.Status == model.TaskStatusCompleted {
				completed++
			}
		}
		items = append(items, ProjectListItem{
			ID:          proj.ID,
			TenantID:    proj.TenantID,
			Name:        proj.Name,
			Description: proj.Description,
			Status:      proj.Status,
			CreatedBy: CreatorSummary{
				ID:       proj.Creator.ID,
				FullName: proj.Creator.FullName,
				IsActive: proj.Creator.IsActive,
			},
			TaskCount:          len(proj.Tasks),
			CompletedTaskCount: completed,
			CreatedAt:          proj.CreatedAt,
		})
	}

	return items, total, NewPagination(page, total), nil
}

// load fetches a project without tenant scoping; the policy decides
// what the caller may learn about it.
func (s *ProjectService) load(projectID uint) (*model.Project, error) {
	var project model.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "project not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load project", err)
	}
	return &project, nil
}

// Update applies a partial update, allowed for tenant_admin or the
// project's creator.
func (s *ProjectService) Update(p *principal.Principal, projectID uint, req *UpdateProjectRequest, ip string) (*model.Project, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	project, err := s.load(projectID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanMutateProject(p, project); err != nil {
		prometheus.RecordAccessDenied(model.EntityProject)
		return nil, err
	}
	if req.Status != nil && !validProjectStatus(*req.Status) {
		return nil, apperr.New(apperr.Validation, "invalid status")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		return nil, apperr.New(apperr.Validation, "no valid fields to update")
	}

	if err := s.db.Model(project).Updates(updates).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "project update failed", err)
	}

	prometheus.RecordMutation(model.EntityProject, model.ActionUpdateProject)
	s.recorder.Record(audit.Entry{
		TenantID:   project.TenantID,
		UserID:     p.UserID,
		Action:     model.ActionUpdateProject,
		EntityType: model.EntityProject,
		EntityID:   project.ID,
		IP:         ip,
	})

	return project, nil
}

// Delete removes a project, allowed for tenant_admin or the creator.
func (s *ProjectService) Delete(p *principal.Principal, projectID uint, ip string) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	project, err := s.load(projectID)
	if err != nil {
		return err
	}
	if err := policy.CanMutateProject(p, project); err != nil {
		prometheus.RecordAccessDenied(model.EntityProject)
		return err
	}

	if err := s.db.Delete(project).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "project deletion failed", err)
	}

	prometheus.RecordMutation(model.EntityProject, model.ActionDeleteProject)
	s.recorder.Record(audit.Entry{
		TenantID:   project.TenantID,
		UserID:     p.UserID,
		Action:     model.ActionDeleteProject,
		EntityType: model.EntityProject,
		EntityID:   project.ID,
		IP:         ip,
	})

	return nil
}
