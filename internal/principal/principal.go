package principal

import (
	"tracker-service/internal/apperr"
	"tracker-service/internal/model"
	"tracker-service/pkg/jwtutil"
)

// Principal is the resolved, trusted identity derived from a request's
// credential. It is built exactly once per request and never mutated;
// every downstream access decision reads identity from here, never from
// request body fields.
type Principal struct {
	UserID   uint
	Email    string
	TenantID *uint
	Role     string
}

// Resolve verifies the bearer token and builds a Principal from it.
// A verifiable token whose payload lacks a user id, a role, or a tenant
// id for a non-super_admin role is rejected as Unauthenticated; there
// are no fallback fields.
func Resolve(token string) (*Principal, error) {
	if token == "" {
		return nil, apperr.New(apperr.Unauthenticated, "authentication required")
	}

	claims, err := jwtutil.ValidateToken(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unauthenticated, "invalid or expired token", err)
	}

	return FromClaims(claims)
}

// FromClaims builds a Principal from already-verified claims.
func FromClaims(claims *jwtutil.UserClaims) (*Principal, error) {
	if claims.UserID == 0 {
		return nil, apperr.New(apperr.Unauthenticated, "invalid token payload")
	}

	switch claims.Role {
	case model.RoleSuperAdmin:
		// Cross-tenant role, no tenant of its own.
	case model.RoleTenantAdmin, model.RoleUser:
		if claims.TenantID == nil || *claims.TenantID == 0 {
			return nil, apperr.New(apperr.Unauthenticated, "invalid token payload")
		}
	default:
		return nil, apperr.New(apperr.Unauthenticated, "invalid token payload")
	}

	return &Principal{
		UserID:   claims.UserID,
		Email:    claims.Email,
		TenantID: claims.TenantID,
		Role:     claims.Role,
	}, nil
}

// IsSuperAdmin reports whether the principal may act across tenants.
func (p *Principal) IsSuperAdmin() bool {
	return p.Role == model.RoleSuperAdmin
}

// IsTenantAdmin reports whether the principal administers its tenant.
func (p *Principal) IsTenantAdmin() bool {
	return p.Role == model.RoleTenantAdmin
}

// InTenant reports whether the principal belongs to the given tenant.
// super_admin belongs to none; callers grant it access explicitly.
func (p *Principal) InTenant(tenantID uint) bool {
	return p.TenantID != nil && *p.TenantID == tenantID
}
