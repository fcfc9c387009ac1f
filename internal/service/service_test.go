package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"tracker-service/internal/apperr"
	"tracker-service/internal/audit"
	"tracker-service/internal/model"
	"tracker-service/internal/principal"
)

// newTestDB opens an in-memory database with the full schema. The pool
// is capped at one connection so concurrent transactions serialize the
// same way the postgres row lock serializes them.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Tenant{},
		&model.User{},
		&model.Project{},
		&model.Task{},
		&model.AuditLog{},
	))
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, maxUsers, maxProjects int) *model.Tenant {
	t.Helper()
	tenant := model.Tenant{
		Name:             "Acme",
		Subdomain:        fmt.Sprintf("acme-%d", maxUsers*100+maxProjects),
		Status:           model.TenantStatusActive,
		SubscriptionPlan: model.PlanFree,
		MaxUsers:         maxUsers,
		MaxProjects:      maxProjects,
	}
	require.NoError(t, db.Create(&tenant).Error)
	return &tenant
}

func seedUser(t *testing.T, db *gorm.DB, tenantID uint, email, role string) *model.User {
	t.Helper()
	user := model.User{
		TenantID:     &tenantID,
		Email:        email,
		PasswordHash: "x",
		FullName:     "Seeded User",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func adminOf(user *model.User) *principal.Principal {
	return &principal.Principal{UserID: user.ID, Email: user.Email, TenantID: user.TenantID, Role: model.RoleTenantAdmin}
}

func memberOf(user *model.User) *principal.Principal {
	return &principal.Principal{UserID: user.ID, Email: user.Email, TenantID: user.TenantID, Role: model.RoleUser}
}

func TestUserCreateQuotaUnderConcurrency(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, 3, 10)
	svc := NewUserService(db, &audit.MemoryRecorder{})
	admin := &principal.Principal{UserID: 99, TenantID: &tenant.ID, Role: model.RoleTenantAdmin}

	const attempts = 5
	results := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Create(admin, tenant.ID, &CreateUserRequest{
				Email:    fmt.Sprintf("worker%d@acme.test", i),
				Password: "password123",
				FullName: fmt.Sprintf("Worker %d", i),
			}, "10.0.0.1")
		}(i)
	}
	wg.Wait()

	successes, rejections := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case apperr.Is(err, apperr.QuotaExceeded):
			rejections++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 3, successes)
	assert.Equal(t, 2, rejections)

	var count int64
	require.NoError(t, db.Model(&model.User{}).Where("tenant_id = ?", tenant.ID).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestProjectQuota(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, 10, 2)
	creator := seedUser(t, db, tenant.ID, "admin@acme.test", model.RoleTenantAdmin)
	svc := NewProjectService(db, &audit.MemoryRecorder{})
	p := adminOf(creator)

	for i := 0; i < 2; i++ {
		_, err := svc.Create(p, &CreateProjectRequest{Name: fmt.Sprintf("Project %d", i)}, "10.0.0.1")
		require.NoError(t, err)
	}

	_, err := svc.Create(p, &CreateProjectRequest{Name: "One Too Many"}, "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, apperr.QuotaExceeded, apperr.KindOf(err))

	var count int64
	require.NoError(t, db.Model(&model.Project{}).Where("tenant_id = ?", tenant.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestDeleteUserUnassignsTasks(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, 10, 10)
	admin := seedUser(t, db, tenant.ID, "admin@acme.test", model.RoleTenantAdmin)
	victim := seedUser(t, db, tenant.ID, "worker@acme.test", model.RoleUser)

	project := model.Project{TenantID: tenant.ID, Name: "Cleanup", Status: model.ProjectStatusActive, CreatedBy: admin.ID}
	require.NoError(t, db.Create(&project).Error)
	for i := 0; i < 3; i++ {
		task := model.Task{
			TenantID:   tenant.ID,
			ProjectID:  project.ID,
			Title:      fmt.Sprintf("Task %d", i),
			Status:     model.TaskStatusTodo,
			Priority:   model.PriorityMedium,
			AssignedTo: &victim.ID,
		}
		require.NoError(t, db.Create(&task).Error)
	}

	rec := &audit.MemoryRecorder{}
	svc := NewUserService(db, rec)
	require.NoError(t, svc.Delete(adminOf(admin), victim.ID, "10.0.0.1"))

	var assigned int64
	require.NoError(t, db.Model(&model.Task{}).Where("assigned_to = ?", victim.ID).Count(&assigned).Error)
	assert.Equal(t, int64(0), assigned)

	var remaining int64
	require.NoError(t, db.Model(&model.Task{}).Where("project_id = ?", project.ID).Count(&remaining).Error)
	assert.Equal(t, int64(3), remaining)

	entry, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, model.ActionDeleteUser, entry.Action)
	assert.Equal(t, tenant.ID, entry.TenantID)
	assert.Equal(t, admin.ID, entry.UserID)
	assert.Equal(t, victim.ID, entry.EntityID)
}

func TestCrossTenantProjectFetch(t *testing.T) {
	db := newTestDB(t)
	t1 := seedTenant(t, db, 10, 10)
	t2 := seedTenant(t, db, 10, 11)
	outsider := seedUser(t, db, t1.ID, "outsider@acme.test", model.RoleUser)
	owner := seedUser(t, db, t2.ID, "owner@other.test", model.RoleTenantAdmin)

	project := model.Project{TenantID: t2.ID, Name: "Secret", Status: model.ProjectStatusActive, CreatedBy: owner.ID}
	require.NoError(t, db.Create(&project).Error)

	svc := NewTaskService(db, &audit.MemoryRecorder{})
	_, _, _, err := svc.List(memberOf(outsider), project.ID, &ListTasksQuery{})
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Equal(t, "project not found", apperr.MessageOf(err))
}

func TestTaskCreateBadProjectRefIsUniform(t *testing.T) {
	db := newTestDB(t)
	t1 := seedTenant(t, db, 10, 10)
	t2 := seedTenant(t, db, 10, 11)
	caller := seedUser(t, db, t1.ID, "caller@acme.test", model.RoleUser)
	owner := seedUser(t, db, t2.ID, "owner@other.test", model.RoleTenantAdmin)

	foreign := model.Project{TenantID: t2.ID, Name: "Foreign", Status: model.ProjectStatusActive, CreatedBy: owner.ID}
	require.NoError(t, db.Create(&foreign).Error)

	svc := NewTaskService(db, &audit.MemoryRecorder{})
	req := &CreateTaskRequest{Title: "Probe"}

	// Absent and cross-tenant project ids must produce the same
	// response, otherwise the create endpoint becomes an existence
	// oracle for other tenants' project ids.
	_, crossErr := svc.Create(memberOf(caller), foreign.ID, req, "10.0.0.1")
	_, absentErr := svc.Create(memberOf(caller), foreign.ID+1000, req, "10.0.0.1")

	require.Error(t, crossErr)
	require.Error(t, absentErr)
	assert.Equal(t, apperr.KindOf(crossErr), apperr.KindOf(absentErr))
	assert.Equal(t, apperr.MessageOf(crossErr), apperr.MessageOf(absentErr))
	assert.Equal(t, apperr.Validation, apperr.KindOf(crossErr))
}

func TestTaskListOrdersByPriority(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, 10, 10)
	admin := seedUser(t, db, tenant.ID, "admin@acme.test", model.RoleTenantAdmin)

	project := model.Project{TenantID: tenant.ID, Name: "Board", Status: model.ProjectStatusActive, CreatedBy: admin.ID}
	require.NoError(t, db.Create(&project).Error)
	for _, prio := range []string{model.PriorityLow, model.PriorityHigh, model.PriorityMedium} {
		task := model.Task{
			TenantID:  tenant.ID,
			ProjectID: project.ID,
			Title:     prio + " task",
			Status:    model.TaskStatusTodo,
			Priority:  prio,
		}
		require.NoError(t, db.Create(&task).Error)
	}

	svc := NewTaskService(db, &audit.MemoryRecorder{})
	items, total, _, err := svc.List(adminOf(admin), project.ID, &ListTasksQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 3)
	assert.Equal(t, model.PriorityHigh, items[0].Priority)
	assert.Equal(t, model.PriorityMedium, items[1].Priority)
	assert.Equal(t, model.PriorityLow, items[2].Priority)
}

func TestEveryMutationRecordsOneAuditEntry(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, 10, 10)
	admin := seedUser(t, db, tenant.ID, "admin@acme.test", model.RoleTenantAdmin)
	rec := &audit.MemoryRecorder{}
	p := adminOf(admin)

	projects := NewProjectService(db, rec)
	tasks := NewTaskService(db, rec)

	project, err := projects.Create(p, &CreateProjectRequest{Name: "Audited"}, "10.0.0.1")
	require.NoError(t, err)
	require.Len(t, rec.Entries, 1)
	assert.Equal(t, model.ActionCreateProject, rec.Entries[0].Action)
	assert.Equal(t, project.ID, rec.Entries[0].EntityID)

	task, err := tasks.Create(p, project.ID, &CreateTaskRequest{Title: "Step one"}, "10.0.0.1")
	require.NoError(t, err)
	require.Len(t, rec.Entries, 2)
	assert.Equal(t, model.ActionCreateTask, rec.Entries[1].Action)

	_, err = tasks.UpdateStatus(p, task.ID, model.TaskStatusCompleted, "10.0.0.1")
	require.NoError(t, err)
	require.Len(t, rec.Entries, 3)
	assert.Equal(t, model.ActionUpdateTask, rec.Entries[2].Action)

	require.NoError(t, tasks.Delete(p, task.ID, "10.0.0.1"))
	require.Len(t, rec.Entries, 4)
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, model.ActionDeleteTask, last.Action)
	assert.Equal(t, tenant.ID, last.TenantID)
	assert.Equal(t, admin.ID, last.UserID)
	assert.Equal(t, task.ID, last.EntityID)
}
