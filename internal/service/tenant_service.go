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

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TenantService orchestrates tenant registration, lookup and update.
type TenantService struct {
	db       *gorm.DB
	recorder audit.Recorder
}

// NewTenantService builds the service over the given handles.
func NewTenantService(db *gorm.DB, recorder audit.Recorder) *TenantService {
	return &TenantService{db: db, recorder: recorder}
}

// RegisterRequest carries the public tenant sign-up payload.
type RegisterRequest struct {
	TenantName    string `json:"tenantName"`
	Subdomain     string `json:"subdomain"`
	AdminEmail    string `json:"adminEmail"`
	AdminPassword string `json:"adminPassword"`
	AdminFullName string `json:"adminFullName"`
}

// TenantStats are the aggregate counts embedded in tenant detail
// responses.
type TenantStats struct {
	TotalUsers    int64 `json:"totalUsers"`
	TotalProjects int64 `json:"totalProjects"`
	TotalTasks    int64 `json:"totalTasks"`
}

// TenantListItem is one row of the super_admin tenant listing.
type TenantListItem struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	Subdomain        string    `json:"subdomain"`
	Status           string    `json:"status"`
	SubscriptionPlan string    `json:"subscriptionPlan"`
	TotalUsers       int64     `json:"totalUsers"`
	TotalProjects    int64     `json:"totalProjects"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ListTenantsQuery filters the tenant listing.
type ListTenantsQuery struct {
	Status           string
	SubscriptionPlan string
	Page             int
	Limit            int
}

// Register creates a tenant and its first tenant_admin in one
// transaction. Duplicate subdomains and duplicate admin emails surface
// as Conflict.
func (s *TenantService) Register(req *RegisterRequest, ip string) (*model.Tenant, *model.User, error) {
	if req.TenantName == "" || req.Subdomain == "" || req.AdminEmail == "" ||
		req.AdminPassword == "" || req.AdminFullName == "" {
		return nil, nil, apperr.New(apperr.Validation, "missing required fields")
	}
	if len(req.AdminPassword) < 8 {
		return nil, nil, apperr.New(apperr.Validation, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Internal, "failed to hash password", err)
	}

	tenant := model.Tenant{
		Name:             req.TenantName,
		Subdomain:        req.Subdomain,
		Status:           model.TenantStatusActive,
		SubscriptionPlan: model.PlanFree,
		MaxUsers:         model.DefaultMaxUsers,
		MaxProjects:      model.DefaultMaxProjects,
	}
	admin := model.User{
		Email:        req.AdminEmail,
		PasswordHash: string(hash),
		FullName:     req.AdminFullName,
		Role:         model.RoleTenantAdmin,
		IsActive:     true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.New(apperr.Conflict, "subdomain already exists")
			}
			return apperr.Wrap(apperr.Internal, "tenant creation failed", err)
		}
		admin.TenantID = &tenant.ID
		if err := tx.Create(&admin).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.New(apperr.Conflict, "email already exists in this tenant")
			}
			return apperr.Wrap(apperr.Internal, "admin creation failed", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	prometheus.RecordMutation(model.EntityTenant, model.ActionRegisterTenant)
	s.recorder.Record(audit.Entry{
		TenantID:   tenant.ID,
		UserID:     admin.ID,
		Action:     model.ActionRegisterTenant,
		EntityType: model.EntityTenant,
		EntityID:   tenant.ID,
		IP:         ip,
	})

	return &tenant, &admin, nil
}

// Authenticate checks a subdomain/email/password triple and returns the
// matching user and tenant. Unknown users and wrong passwords are
// deliberately indistinguishable.
func (s *TenantService) Authenticate(subdomain, email, password string) (*model.User, *model.Tenant, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var tenant model.Tenant
	if err := s.db.Where("subdomain = ?", subdomain).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.New(apperr.NotFound, "tenant not found")
		}
		return nil, nil, apperr.Wrap(apperr.Internal, "failed to load tenant", err)
	}

	var user model.User
	err := s.db.Where("tenant_id = ? AND email = ?", tenant.ID, email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.New(apperr.Unauthenticated, "invalid credentials")
		}
		return nil, nil, apperr.Wrap(apperr.Internal, "failed to load user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, apperr.New(apperr.Unauthenticated, "invalid credentials")
	}
	if !user.IsActive {
		return nil, nil, apperr.New(apperr.Unauthenticated, "invalid credentials")
	}

	return &user, &tenant, nil
}

// Get returns tenant details plus aggregate counts.
func (s *TenantService) Get(p *principal.Principal, tenantID uint) (*model.Tenant, *TenantStats, error) {
	if err := policy.CanViewTenant(p, tenantID); err != nil {
		prometheus.RecordAccessDenied(model.EntityTenant)
		return nil, nil, err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var tenant model.Tenant
	if err := s.db.First(&tenant, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.New(apperr.NotFound, "tenant not found")
		}
		return nil, nil, apperr.Wrap(apperr.Internal, "failed to load tenant", err)
	}

	var stats TenantStats
	if err := s.db.Model(&model.User{}).Where("tenant_id = ?", tenantID).Count(&stats.TotalUsers).Error; err != nil {
		return nil, nil, apperr.Wrap(apperr.Internal, "failed to count users", err)
	}
	if err := s.db.Model(&model.Project{}).Where("tenant_id = ?", tenantID).Count(&stats.TotalProjects).Error; err != nil {
		return nil, nil, apperr.Wrap(apperr.Internal, "failed to count projects", err)
	}
	if err := s.db.Model(&model.Task{}).Where("tenant_id = ?", tenantID).Count(&stats.TotalTasks).Error; err != nil {
		return nil, nil, apperr.Wrap(apperr.Internal, "failed to count tasks", err)
	}

	return &tenant, &stats, nil
}

// Update applies a role-shaped tenant update. The policy decides which
// fields the caller may touch; a request containing a disallowed field
// is rejected wholesale before anything is written.
func (s *TenantService) Update(p *principal.Principal, tenantID uint, upd *policy.TenantUpdate, ip string) (*model.Tenant, error) {
	if err := policy.CanUpdateTenant(p, tenantID, upd); err != nil {
		prometheus.RecordAccessDenied(model.EntityTenant)
		return nil, err
	}
	if upd.Empty() {
		return nil, apperr.New(apperr.Validation, "no valid fields to update")
	}
	if upd.Status != nil && *upd.Status != model.TenantStatusActive && *upd.Status != model.TenantStatusSuspended {
		return nil, apperr.New(apperr.Validation, "invalid status")
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var tenant model.Tenant
	if err := s.db.First(&tenant, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "tenant not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load tenant", err)
	}

	updates := map[string]interface{}{}
	if upd.Name != nil {
		updates["name"] = *upd.Name
	}
	if upd.Status != nil {
		updates["status"] = *upd.Status
	}
	if upd.SubscriptionPlan != nil {
		updates["subscription_plan"] = *upd.SubscriptionPlan
	}
	if upd.MaxUsers != nil {
		updates["max_users"] = *upd.MaxUsers
	}
	if upd.MaxProjects != nil {
		updates["max_projects"] = *upd.MaxProjects
	}

	if err := s.db.Model(&tenant).Updates(updates).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "tenant update failed", err)
	}

	prometheus.RecordMutation(model.EntityTenant, model.ActionUpdateTenant)
	s.recorder.Record(audit.Entry{
		TenantID:   tenant.ID,
		UserID:     p.UserID,
		Action:     model.ActionUpdateTenant,
		EntityType: model.EntityTenant,
		EntityID:   tenant.ID,
		IP:         ip,
	})

	return &tenant, nil
}

// List returns the cross-tenant listing, super_admin only.
func (s *TenantService) List(p *principal.Principal, q *ListTenantsQuery) ([]TenantListItem, int64, Pagination, error) {
	if err := policy.CanListTenants(p); err != nil {
		prometheus.RecordAccessDenied(model.EntityTenant)
		return nil, 0, Pagination{}, err
	}

	page := NormalizePage(q.Page, q.Limit, DefaultTenantLimit)

	defer prometheus.TrackDBOperation("query")(time.Now())
	query := s.db.Model(&model.Tenant{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.SubscriptionPlan != "" {
		query = query.Where("subscription_plan = ?", q.SubscriptionPlan)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, Pagination{}, apperr.Wrap(apperr.Internal, "failed to count tenants", err)
	}

	var tenants []model.Tenant
	if err := query.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&tenants).Error; err != nil {
		return nil, 0, Pagination{}, apperr.Wrap(apperr.Internal, "failed to list tenants", err)
	}

	items := make([]TenantListItem, 0, len(tenants))
	for _, t := range tenants {
		item := TenantListItem{
			ID:               t.ID,
			Name:             t.Name,
			Subdomain:        t.Subdomain,
			Status:           t.Status,
			SubscriptionPlan: t.SubscriptionPlan,
			CreatedAt:        t.CreatedAt,
		}
		if err := s.db.Model(&model.User{}).Where("tenant_id = ?", t.ID).Count(&item.TotalUsers).Error; err != nil {
			return nil, 0, Pagination{}, apperr.Wrap(apperr.Internal, "failed to count users", err)
		}
		if err := s.db.Model(&model.Project{}).Where("tenant_id = ?", t.ID).Count(&item.TotalProjects).Error; err != nil {
			return nil, 0, Pagination{}, apperr.Wrap(apperr.Internal, "failed to count projects", err)
		}
		items = append(items, item)
	}

	return items, total, NewPagination(page, total), nil
}
