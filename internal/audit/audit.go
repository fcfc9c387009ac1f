// Package audit appends one log row per successful mutating operation.
// Recording happens after the business transaction commits; a failed
// audit write never rolls back or masks the committed mutation, it is
// reported on the operator channel (zap error log + prometheus counter)
// instead.
package audit

import (
	"sync"

	"tracker-service/internal/model"
	"tracker-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Entry describes who did what to which entity.
type Entry struct {
	TenantID   uint
	UserID     uint
	Action     string
	EntityType string
	EntityID   uint
	IP         string
}

// Recorder persists audit entries.
type Recorder interface {
	Record(e Entry)
}

// DBRecorder appends entries to the audit_logs table.
type DBRecorder struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewDBRecorder builds a recorder over the given database handle.
func NewDBRecorder(db *gorm.DB, log *zap.Logger) *DBRecorder {
	return &DBRecorder{db: db, log: log}
}

// Record appends one row. Failures are logged and counted, never
// returned: by the time Record runs the business mutation is final.
func (r *DBRecorder) Record(e Entry) {
	row := model.AuditLog{
		TenantID:   e.TenantID,
		UserID:     e.UserID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		IP:         e.IP,
	}

	if err := r.db.Create(&row).Error; err != nil {
		prometheus.RecordAuditFailure(e.Action)
		r.log.Error("Failed to write audit log entry",
			zap.Error(err),
			zap.Uint("tenant_id", e.TenantID),
			zap.Uint("user_id", e.UserID),
			zap.String("action", e.Action),
			zap.String("entity_type", e.EntityType),
			zap.Uint("entity_id", e.EntityID))
	}
}

// MemoryRecorder collects entries in memory, for tests.
type MemoryRecorder struct {
	mu      sync.Mutex
	Entries []Entry
}

// Record appends the entry to the in-memory slice.
func (r *MemoryRecorder) Record(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, e)
}

// Last returns the most recent entry, or false when none was recorded.
func (r *MemoryRecorder) Last() (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Entries) == 0 {
		return Entry{}, false
	}
	return r.Entries[len(r.Entries)-1], true
}
