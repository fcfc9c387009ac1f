package jwtutil

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	secret     = []byte("tracker-secret-key")
	expiration = 24 * time.Hour
)

// Config holds the signing parameters, filled from pkg/config.
type Config struct {
	SigningKey      string
	ExpirationHours int
}

// Initialize sets the signing key and token lifetime for the package.
func Initialize(cfg *Config) {
	if cfg.SigningKey != "" {
		secret = []byte(cfg.SigningKey)
	}
	if cfg.ExpirationHours > 0 {
		expiration = time.Duration(cfg.ExpirationHours) * time.Hour
	}
}

// UserClaims represents the JWT claims for an authenticated user.
// TenantID is omitted only for super_admin accounts.
type UserClaims struct {
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	TenantID *uint  `json:"tenant_id,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT carrying the user's identity, role
// and tenant.
func GenerateToken(userID uint, email string, tenantID *uint, role string) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID:   userID,
		Email:    email,
		TenantID: tenantID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ExpiresInSeconds returns the configured token lifetime, for login
// responses.
func ExpiresInSeconds() int {
	return int(expiration / time.Second)
}

// ValidateToken validates and parses the JWT token.
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
