package principal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker-service/internal/apperr"
	"tracker-service/internal/model"
	"tracker-service/internal/principal"
	"tracker-service/pkg/jwtutil"
)

func uintPtr(v uint) *uint { return &v }

func TestFromClaims(t *testing.T) {
	t.Run("tenant member resolves", func(t *testing.T) {
		p, err := principal.FromClaims(&jwtutil.UserClaims{
			UserID:   10,
			Email:    "alice@acme.test",
			TenantID: uintPtr(1),
			Role:     model.RoleUser,
		})
		require.NoError(t, err)
		assert.Equal(t, uint(10), p.UserID)
		assert.Equal(t, uint(1), *p.TenantID)
		assert.False(t, p.IsSuperAdmin())
		assert.True(t, p.InTenant(1))
		assert.False(t, p.InTenant(2))
	})

	t.Run("super admin needs no tenant", func(t *testing.T) {
		p, err := principal.FromClaims(&jwtutil.UserClaims{
			UserID: 1,
			Role:   model.RoleSuperAdmin,
		})
		require.NoError(t, err)
		assert.True(t, p.IsSuperAdmin())
		assert.Nil(t, p.TenantID)
		assert.False(t, p.InTenant(1))
	})

	t.Run("rejected payloads", func(t *testing.T) {
		cases := map[string]*jwtutil.UserClaims{
			"missing user id":            {Role: model.RoleUser, TenantID: uintPtr(1)},
			"missing tenant for user":    {UserID: 10, Role: model.RoleUser},
			"missing tenant for admin":   {UserID: 10, Role: model.RoleTenantAdmin},
			"zero tenant id":             {UserID: 10, Role: model.RoleUser, TenantID: uintPtr(0)},
			"unknown role":               {UserID: 10, Role: "owner", TenantID: uintPtr(1)},
			"empty role":                 {UserID: 10, TenantID: uintPtr(1)},
		}
		for name, claims := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := principal.FromClaims(claims)
				require.Error(t, err)
				assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
			})
		}
	})
}

func TestResolve(t *testing.T) {
	jwtutil.Initialize(&jwtutil.Config{SigningKey: "principal-test-key", ExpirationHours: 1})

	t.Run("round trip", func(t *testing.T) {
		token, err := jwtutil.GenerateToken(10, "alice@acme.test", uintPtr(1), model.RoleTenantAdmin)
		require.NoError(t, err)

		p, err := principal.Resolve(token)
		require.NoError(t, err)
		assert.Equal(t, uint(10), p.UserID)
		assert.Equal(t, "alice@acme.test", p.Email)
		assert.Equal(t, uint(1), *p.TenantID)
		assert.True(t, p.IsTenantAdmin())
	})

	t.Run("empty credential", func(t *testing.T) {
		_, err := principal.Resolve("")
		assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
	})

	t.Run("garbage credential", func(t *testing.T) {
		_, err := principal.Resolve("not.a.token")
		assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
	})

	t.Run("tampered credential", func(t *testing.T) {
		token, err := jwtutil.GenerateToken(10, "alice@acme.test", uintPtr(1), model.RoleUser)
		require.NoError(t, err)

		_, err = principal.Resolve(token + "x")
		assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
	})
}
