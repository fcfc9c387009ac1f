package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "tracker_test")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_LOG_LEVEL", "error")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "5433", cfg.DB.Port)
	assert.Equal(t, "tracker_test", cfg.DB.DBName)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, logger.Error, cfg.DB.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.DB.ConnMaxLifetime)

	assert.Contains(t, cfg.DB.GetDSN(), "host=db.internal")
	assert.Contains(t, cfg.DB.GetDSN(), "dbname=tracker_test")
}

func TestLogConfig(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	fields := cfg.LogConfig()
	require.Len(t, fields, 6)

	byKey := map[string]string{}
	for _, f := range fields {
		byKey[f.Key] = f.String
	}
	assert.Equal(t, "db.internal", byKey["db_host"])
	assert.Equal(t, "9090", byKey["server_port"])
	assert.NotContains(t, byKey, "db_password")
}
