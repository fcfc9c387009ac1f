package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles. super_admin principals operate across tenants and carry no
// tenant of their own; tenant_admin and user are always tenant-scoped.
const (
	RoleSuperAdmin  = "super_admin"
	RoleTenantAdmin = "tenant_admin"
	RoleUser        = "user"
)

// User represents a member of a tenant. Email is unique within a tenant,
// not globally; the same address may exist under different subdomains.
// TenantID is nil only for super_admin accounts and is immutable after
// creation.
type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	TenantID     *uint          `json:"tenantId" gorm:"index;uniqueIndex:idx_users_tenant_email"`
	Email        string         `json:"email" gorm:"type:varchar(100);not null;uniqueIndex:idx_users_tenant_email"`
	PasswordHash string         `json:"-" gorm:"type:varchar(255);not null"`
	FullName     string         `json:"fullName" gorm:"type:varchar(100);not null"`
	Role         string         `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	IsActive     bool           `json:"isActive" gorm:"not null;default:true"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
