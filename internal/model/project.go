package model

import (
	"time"

	"gorm.io/gorm"
)

// Project status values.
const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusArchived  = "archived"
)

// Project belongs to exactly one tenant. The tenant id is set at creation
// and never changes.
type Project struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	TenantID    uint           `json:"tenantId" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"type:varchar(200);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Status      string         `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	CreatedBy   uint           `json:"createdBy" gorm:"index;not null"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Creator User   `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	Tasks   []Task `json:"tasks,omitempty" gorm:"foreignKey:ProjectID"`
}
