package audit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker-service/internal/model"
)

func TestMemoryRecorder(t *testing.T) {
	var rec MemoryRecorder

	_, ok := rec.Last()
	assert.False(t, ok)

	rec.Record(Entry{TenantID: 1, UserID: 2, Action: model.ActionCreateProject, EntityType: model.EntityProject, EntityID: 7, IP: "10.0.0.1"})
	rec.Record(Entry{TenantID: 1, UserID: 2, Action: model.ActionDeleteProject, EntityType: model.EntityProject, EntityID: 7, IP: "10.0.0.1"})

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, model.ActionDeleteProject, last.Action)
	assert.Len(t, rec.Entries, 2)
}

func TestMemoryRecorderConcurrent(t *testing.T) {
	var rec MemoryRecorder
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			rec.Record(Entry{TenantID: 1, UserID: id, Action: model.ActionCreateTask, EntityType: model.EntityTask, EntityID: id})
		}(uint(i))
	}
	wg.Wait()
	assert.Len(t, rec.Entries, 50)
}
