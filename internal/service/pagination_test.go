package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
	}{
		{"defaults applied", 0, 0, 1, DefaultProjectLimit},
		{"negative page floors at one", -3, 20, 1, 20},
		{"negative limit falls back", 2, -1, 2, DefaultProjectLimit},
		{"limit capped", 1, 500, 1, MaxLimit},
		{"valid input passes through", 4, 25, 4, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePage(tt.page, tt.limit, DefaultProjectLimit)
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 10, PageRequest{Page: 2, Limit: 10}.Offset())
	assert.Equal(t, 100, PageRequest{Page: 3, Limit: 50}.Offset())
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		total     int64
		wantPages int
	}{
		{"empty result set", 10, 0, 0},
		{"exact multiple", 10, 30, 3},
		{"partial last page", 10, 31, 4},
		{"single row", 50, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(PageRequest{Page: 2, Limit: tt.limit}, tt.total)
			assert.Equal(t, 2, p.CurrentPage)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.limit, p.Limit)
		})
	}
}
