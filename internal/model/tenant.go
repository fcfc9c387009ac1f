package model

import (
	"time"

	"gorm.io/gorm"
)

// Tenant status values.
const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

// Subscription plans. Quota limits are stored denormalized on the tenant
// row so quota checks never need a plan lookup.
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Default limits assigned to newly registered tenants (free plan).
const (
	DefaultMaxUsers    = 5
	DefaultMaxProjects = 3
)

// Tenant represents an isolated customer organization, the unit of data
// partitioning. Tenants are never hard-deleted.
type Tenant struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	Name             string         `json:"name" gorm:"type:varchar(100);not null"`
	Subdomain        string         `json:"subdomain" gorm:"type:varchar(63);uniqueIndex;not null"`
	Status           string         `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	SubscriptionPlan string         `json:"subscriptionPlan" gorm:"type:varchar(20);not null;default:'free'"`
	MaxUsers         int            `json:"maxUsers" gorm:"not null;default:5"`
	MaxProjects      int            `json:"maxProjects" gorm:"not null;default:3"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}
