package model

import "time"

// Audit actions, one per mutating operation.
const (
	ActionRegisterTenant = "REGISTER_TENANT"
	ActionUpdateTenant   = "UPDATE_TENANT"
	ActionCreateUser     = "CREATE_USER"
	ActionUpdateUser     = "UPDATE_USER"
	ActionDeleteUser     = "DELETE_USER"
	ActionCreateProject  = "CREATE_PROJECT"
	ActionUpdateProject  = "UPDATE_PROJECT"
	ActionDeleteProject  = "DELETE_PROJECT"
	ActionCreateTask     = "CREATE_TASK"
	ActionUpdateTask     = "UPDATE_TASK"
	ActionDeleteTask     = "DELETE_TASK"
)

// Entity types referenced by audit entries.
const (
	EntityTenant  = "tenant"
	EntityUser    = "user"
	EntityProject = "project"
	EntityTask    = "task"
)

// AuditLog is an append-only record of who did what to which entity.
// Rows are written after the business mutation commits and are never
// updated or deleted.
type AuditLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TenantID   uint      `json:"tenantId" gorm:"index;not null"`
	UserID     uint      `json:"userId" gorm:"index;not null"`
	Action     string    `json:"action" gorm:"type:varchar(50);not null"`
	EntityType string    `json:"entityType" gorm:"type:varchar(20);not null"`
	EntityID   uint      `json:"entityId" gorm:"not null"`
	IP         string    `json:"ip" gorm:"type:varchar(45)"`
	CreatedAt  time.Time `json:"timestamp"`
}
