package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker-service/internal/middleware"
	"tracker-service/internal/model"
	"tracker-service/internal/principal"
)

func listContext(t *testing.T, query string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/projects/1/tasks"+query, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("projectId")
	c.SetParamValues("1")
	tenantID := uint(1)
	c.Set(middleware.PrincipalKey, &principal.Principal{UserID: 10, TenantID: &tenantID, Role: model.RoleUser})
	return c
}

func TestTaskListRejectsMalformedAssignedTo(t *testing.T) {
	h := NewTaskHandler(nil)

	// A negative id must fail validation, not wrap around to a huge
	// unsigned value that silently matches nothing.
	for _, query := range []string{"?assignedTo=-5", "?assignedTo=abc"} {
		t.Run(query, func(t *testing.T) {
			c := listContext(t, query)
			require.NoError(t, h.List(c))
			assert.Equal(t, http.StatusBadRequest, c.Response().Status)
		})
	}
}
