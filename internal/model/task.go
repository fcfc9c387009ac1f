package model

import (
	"time"

	"gorm.io/gorm"
)

// Task status values. Any status may transition directly to any other;
// there is no enforced ordering between them.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

// Task priority values.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task lives inside a project of the same tenant. AssignedTo, when set,
// must reference a user of that tenant; deleting the assignee unassigns
// the task rather than deleting it.
type Task struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	TenantID    uint           `json:"tenantId" gorm:"index;not null"`
	ProjectID   uint           `json:"projectId" gorm:"index;not null"`
	Title       string         `json:"title" gorm:"type:varchar(200);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Status      string         `json:"status" gorm:"type:varchar(20);not null;default:'todo'"`
	Priority    string         `json:"priority" gorm:"type:varchar(10);not null;default:'medium'"`
	AssignedTo  *uint          `json:"assignedTo" gorm:"index"`
	DueDate     *time.Time     `json:"dueDate"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Assignee *User `json:"assignee,omitempty" gorm:"foreignKey:AssignedTo"`
}
