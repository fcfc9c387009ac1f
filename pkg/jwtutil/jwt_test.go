package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	Initialize(&Config{SigningKey: "jwt-test-key", ExpirationHours: 2})

	tenantID := uint(9)
	token, err := GenerateToken(3, "admin@acme.test", &tenantID, "tenant_admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)
	assert.Equal(t, "admin@acme.test", claims.Email)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, uint(9), *claims.TenantID)
	assert.Equal(t, "tenant_admin", claims.Role)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestGenerateTokenSuperAdmin(t *testing.T) {
	Initialize(&Config{SigningKey: "jwt-test-key", ExpirationHours: 1})

	token, err := GenerateToken(1, "root@platform.test", nil, "super_admin")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.TenantID)
	assert.Equal(t, "super_admin", claims.Role)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	Initialize(&Config{SigningKey: "jwt-test-key", ExpirationHours: 1})
	token, err := GenerateToken(3, "admin@acme.test", nil, "super_admin")
	require.NoError(t, err)

	Initialize(&Config{SigningKey: "rotated-key", ExpirationHours: 1})
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsUnsignedAlg(t *testing.T) {
	Initialize(&Config{SigningKey: "jwt-test-key", ExpirationHours: 1})

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, UserClaims{UserID: 3, Role: "super_admin"})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateToken(raw)
	assert.Error(t, err)
}

func TestExpiresInSeconds(t *testing.T) {
	Initialize(&Config{SigningKey: "jwt-test-key", ExpirationHours: 24})
	assert.Equal(t, 86400, ExpiresInSeconds())
}
