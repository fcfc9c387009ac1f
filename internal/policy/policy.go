// Package policy holds the access decision rules. Every function here is
// a pure function of the principal, the target's tenant/owner, and the
// requested fields; identical inputs always produce identical decisions.
//
// Cross-tenant targets on read and lookup paths are reported as NotFound
// so a caller can never learn whether an entity exists in another tenant.
// Forbidden is reserved for same-tenant role failures.
package policy

import (
	"tracker-service/internal/apperr"
	"tracker-service/internal/model"
	"tracker-service/internal/principal"
)

// TenantUpdate is the requested tenant field set. Fields are pointers so
// "absent" and "set to zero value" stay distinguishable; the role check
// is all-or-nothing over the fields that are present.
type TenantUpdate struct {
	Name             *string `json:"name"`
	Status           *string `json:"status"`
	SubscriptionPlan *string `json:"subscriptionPlan"`
	MaxUsers         *int    `json:"maxUsers"`
	MaxProjects      *int    `json:"maxProjects"`
}

// Empty reports whether no field was requested at all.
func (u *TenantUpdate) Empty() bool {
	return u.Name == nil && u.Status == nil && u.SubscriptionPlan == nil &&
		u.MaxUsers == nil && u.MaxProjects == nil
}

// adminOnlyFields reports whether the request touches fields only a
// super_admin may change.
func (u *TenantUpdate) adminOnlyFields() bool {
	return u.Status != nil || u.SubscriptionPlan != nil ||
		u.MaxUsers != nil || u.MaxProjects != nil
}

// UserUpdate is the requested user field set.
type UserUpdate struct {
	FullName *string `json:"fullName"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

// Empty reports whether no field was requested at all.
func (u *UserUpdate) Empty() bool {
	return u.FullName == nil && u.Role == nil && u.IsActive == nil
}

// CanViewTenant allows tenant members and super_admin.
func CanViewTenant(p *principal.Principal, tenantID uint) error {
	if p.IsSuperAdmin() || p.InTenant(tenantID) {
		return nil
	}
	return apperr.New(apperr.NotFound, "tenant not found")
}

// CanListTenants restricts cross-tenant listing to super_admin.
func CanListTenants(p *principal.Principal) error {
	if p.IsSuperAdmin() {
		return nil
	}
	return apperr.New(apperr.Forbidden, "not authorized")
}

// CanUpdateTenant checks the requested field set against the caller's
// role. tenant_admin may change the name of its own tenant only; a
// single disallowed field rejects the whole request. super_admin may
// change any field of any tenant.
func CanUpdateTenant(p *principal.Principal, tenantID uint, upd *TenantUpdate) error {
	if p.IsSuperAdmin() {
		return nil
	}
	if !p.InTenant(tenantID) {
		return apperr.New(apperr.NotFound, "tenant not found")
	}
	if !p.IsTenantAdmin() {
		return apperr.New(apperr.Forbidden, "not authorized")
	}
	if upd.adminOnlyFields() {
		return apperr.New(apperr.Forbidden, "you are not allowed to update these fields")
	}
	return nil
}

// CanCreateUser restricts user creation to the tenant's admin.
func CanCreateUser(p *principal.Principal, tenantID uint) error {
	if !p.InTenant(tenantID) {
		return apperr.New(apperr.NotFound, "tenant not found")
	}
	if !p.IsTenantAdmin() {
		return apperr.New(apperr.Forbidden, "not authorized")
	}
	return nil
}

// CanListUsers restricts user listing to the tenant's admin.
func CanListUsers(p *principal.Principal, tenantID uint) error {
	return CanCreateUser(p, tenantID)
}

// CanUpdateUser decides a user update. The subject may change its own
// full name; only tenant_admin may touch role or isActive, or another
// user's full name. A self-update that includes role or isActive is
// rejected wholesale, no fields applied.
func CanUpdateUser(p *principal.Principal, target *model.User, upd *UserUpdate) error {
	if target.TenantID == nil || !p.InTenant(*target.TenantID) {
		return apperr.New(apperr.NotFound, "user not found")
	}

	isSelf := p.UserID == target.ID
	if isSelf && !p.IsTenantAdmin() && (upd.Role != nil || upd.IsActive != nil) {
		return apperr.New(apperr.Forbidden, "only tenant admin can update role or status")
	}
	if !isSelf && !p.IsTenantAdmin() {
		return apperr.New(apperr.Forbidden, "not authorized")
	}
	return nil
}

// CanDeleteUser restricts deletion to tenant_admin and always forbids
// self-deletion.
func CanDeleteUser(p *principal.Principal, target *model.User) error {
	if target.TenantID == nil || !p.InTenant(*target.TenantID) {
		return apperr.New(apperr.NotFound, "user not found")
	}
	if !p.IsTenantAdmin() {
		return apperr.New(apperr.Forbidden, "not authorized")
	}
	if p.UserID == target.ID {
		return apperr.New(apperr.Forbidden, "cannot delete self")
	}
	return nil
}

// CanCreateProject allows any authenticated tenant member. super_admin
// carries no tenant and therefore has nowhere to create a project.
func CanCreateProject(p *principal.Principal) error {
	if p.TenantID == nil {
		return apperr.New(apperr.Forbidden, "not authorized")
	}
	return nil
}

// CanViewProject allows tenant members of the project's tenant.
func CanViewProject(p *principal.Principal, project *model.Project) error {
	if !p.InTenant(project.TenantID) {
		return apperr.New(apperr.NotFound, "project not found")
	}
	return nil
}

// CanMutateProject allows tenant_admin or the project's creator.
func CanMutateProject(p *principal.Principal, project *model.Project) error {
	if !p.InTenant(project.TenantID) {
		return apperr.New(apperr.NotFound, "project not found")
	}
	if !p.IsTenantAdmin() && project.CreatedBy != p.UserID {
		return apperr.New(apperr.Forbidden, "not authorized")
	}
	return nil
}

// CanAccessTask allows any member of the task's tenant. Task content
// mutations and deletes carry no stricter ownership rule; referential
// checks (project/assignee tenant match) are validation concerns handled
// by the service, not access decisions.
func CanAccessTask(p *principal.Principal, task *model.Task) error {
	if !p.InTenant(task.TenantID) {
		return apperr.New(apperr.NotFound, "task not found")
	}
	return nil
}
