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

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService orchestrates tenant user management.
type UserService struct {
	db       *gorm.DB
	recorder audit.Recorder
}

// NewUserService builds the service over the given handles.
func NewUserService(db *gorm.DB, recorder audit.Recorder) *UserService {
	return &UserService{db: db, recorder: recorder}
}

// Current returns the principal's own user row plus its tenant, for
// the profile endpoint. super_admin principals have no tenant.
func (s *UserService) Current(p *principal.Principal) (*model.User, *model.Tenant, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var user model.User
	if err := s.db.First(&user, p.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, nil, apperr.Wrap(apperr.Internal, "failed to load user", err)
	}

	if user.TenantID == nil {
		return &user, nil, nil
	}
	var tenant model.Tenant
	if err := s.db.First(&tenant, *user.TenantID).Error; err != nil {
		return nil, nil, apperr.Wrap(apperr.Internal, "failed to load tenant", err)
	}
	return &user, &tenant, nil
}

// CreateUserRequest carries the add-user payload.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// Create adds a user to the tenant. The quota reservation and the insert
// share one transaction so concurrent creates cannot overshoot
// maxUsers.
func (s *UserService) Create(p *principal.Principal, tenantID uint, req *CreateUserRequest, ip string) (*model.User, error) {
	if err := policy.CanCreateUser(p, tenantID); err != nil {
		prometheus.RecordAccessDenied(model.EntityUser)
		return nil, err
	}

	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return nil, apperr.New(apperr.Validation, "missing required fields")
	}
	if len(req.Password) < 8 {
		return nil, apperr.New(apperr.Validation, "password must be at least 8 characters")
	}
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleUser && role != model.RoleTenantAdmin {
		return nil, apperr.New(apperr.Validation, "invalid role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to hash password", err)
	}

	user := model.User{
		TenantID:     &tenantID,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         role,
		IsActive:     true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := quota.Reserve(tx, tenantID, quota.KindUser); err != nil {
			return err
		}
		var existing model.User
		err := tx.Where("tenant_id = ? AND email = ?", tenantID, req.Email).First(&existing).Error
		if err == nil {
			return apperr.New(apperr.Conflict, "email already exists in this tenant")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Wrap(apperr.Internal, "failed to check email", err)
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.New(apperr.Conflict, "email already exists in this tenant")
			}
			return apperr.Wrap(apperr.Internal, "user creation failed", err)
		}
		return nil
	})
	if err != nil {
		if apperr.Is(err, apperr.QuotaExceeded) {
			prometheus.RecordQuotaRejection(tenantID, string(quota.KindUser))
		}
		return nil, err
	}

	prometheus.RecordMutation(model.EntityUser, model.ActionCreateUser)
	s.recorder.Record(audit.Entry{
		TenantID:   tenantID,
		UserID:     p.UserID,
		Action:     model.ActionCreateUser,
		EntityType: model.EntityUser,
		EntityID:   user.ID,
		IP:         ip,
	})

	return &user, nil
}

// List returns the tenant's users, newest first.
func (s *UserService) List(p *principal.Principal, tenantID uint) ([]model.User, error) {
	if err := policy.CanListUsers(p, tenantID); err != nil {
		prometheus.RecordAccessDenied(model.EntityUser)
		return nil, err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var users []model.User
	if err := s.db.Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list users", err)
	}
	return users, nil
}

// Update applies a user update under the policy's field rules. The
// decision is all-or-nothing: a self-update carrying role or isActive is
// rejected before any field is written.
func (s *UserService) Update(p *principal.Principal, userID uint, upd *policy.UserUpdate, ip string) (*model.User, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	var user model.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load user", err)
	}

	if err := policy.CanUpdateUser(p, &user, upd); err != nil {
		prometheus.RecordAccessDenied(model.EntityUser)
		return nil, err
	}
	if upd.Empty() {
		return nil, apperr.New(apperr.Validation, "no valid fields to update")
	}
	if upd.Role != nil && *upd.Role != model.RoleUser && *upd.Role != model.RoleTenantAdmin {
		return nil, apperr.New(apperr.Validation, "invalid role")
	}

	updates := map[string]interface{}{}
	if upd.FullName != nil {
		updates["full_name"] = *upd.FullName
	}
	if upd.Role != nil {
		updates["role"] = *upd.Role
	}
	if upd.IsActive != nil {
		updates["is_active"] = *upd.IsActive
	}

	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "user update failed", err)
	}

	prometheus.RecordMutation(model.EntityUser, model.ActionUpdateUser)
	s.recorder.Record(audit.Entry{
		TenantID:   *user.TenantID,
		UserID:     p.UserID,
		Action:     model.ActionUpdateUser,
		EntityType: model.EntityUser,
		EntityID:   user.ID,
		IP:         ip,
	})

	return &user, nil
}

// Delete removes a user. Tasks assigned to the user are unassigned, not
// deleted, in the same transaction.
func (s *UserService) Delete(p *principal.Principal, userID uint, ip string) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	var user model.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "user not found")
		}
		return apperr.Wrap(apperr.Internal, "failed to load user", err)
	}

	if err := policy.CanDeleteUser(p, &user); err != nil {
		prometheus.RecordAccessDenied(model.EntityUser)
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).Where("assigned_to = ?", user.ID).Update("assigned_to", nil).Error; err != nil {
			return apperr.Wrap(apperr.Internal, "failed to unassign tasks", err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return apperr.Wrap(apperr.Internal, "user deletion failed", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	prometheus.RecordMutation(model.EntityUser, model.ActionDeleteUser)
	s.recorder.Record(audit.Entry{
		TenantID:   *user.TenantID,
		UserID:     p.UserID,
		Action:     model.ActionDeleteUser,
		EntityType: model.EntityUser,
		EntityID:   user.ID,
		IP:         ip,
	})

	return nil
}
