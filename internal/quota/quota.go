// Package quota enforces per-tenant resource limits. The check and the
// subsequent insert must share one transaction: Reserve takes the open
// transaction handle and locks the tenant row, so two concurrent
// creators serialize on the row and the count each of them reads is the
// count its insert will extend.
package quota

import (
	"tracker-service/internal/apperr"
	"tracker-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Kind identifies the counted resource.
type Kind string

const (
	KindUser    Kind = "user"
	KindProject Kind = "project"
)

// Reserve verifies that the tenant has capacity for one more resource of
// the given kind. It must be called inside the transaction that performs
// the insert; the FOR UPDATE lock on the tenant row holds until that
// transaction commits or rolls back.
func Reserve(tx *gorm.DB, tenantID uint, kind Kind) error {
	var tenant model.Tenant
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tenant, tenantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperr.New(apperr.NotFound, "tenant not found")
		}
		return apperr.Wrap(apperr.Internal, "failed to load tenant", err)
	}

	var count int64
	var limit int
	switch kind {
	case KindUser:
		limit = tenant.MaxUsers
		if err := tx.Model(&model.User{}).Where("tenant_id = ?", tenantID).Count(&count).Error; err != nil {
			return apperr.Wrap(apperr.Internal, "failed to count users", err)
		}
	case KindProject:
		limit = tenant.MaxProjects
		if err := tx.Model(&model.Project{}).Where("tenant_id = ?", tenantID).Count(&count).Error; err != nil {
			return apperr.Wrap(apperr.Internal, "failed to count projects", err)
		}
	default:
		return apperr.New(apperr.Internal, "unknown quota kind")
	}

	return Decide(kind, count, limit)
}

// Decide is the pure limit comparison behind Reserve.
func Decide(kind Kind, count int64, limit int) error {
	if count >= int64(limit) {
		switch kind {
		case KindProject:
			return apperr.New(apperr.QuotaExceeded, "project limit reached")
		default:
			return apperr.New(apperr.QuotaExceeded, "subscription limit reached")
		}
	}
	return nil
}
