package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BOT_TOKEN", "AUTHORIZED_USER_ID", "DATABASE_PATH", "DATABASE_TIMEOUT",
		"MAX_USER_STATES", "MAX_DB_CONNECTIONS", "BACKUP_ENABLED", "BACKUP_RETENTION_DAYS",
		"PORT", "MAX_LOG_SIZE", "LOG_BACKUP_COUNT",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvRequiresBotToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTHORIZED_USER_ID", "123")
	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnvRequiresAuthorizedUserID(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "secret")
	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnvAppliesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "secret")
	t.Setenv("AUTHORIZED_USER_ID", "555")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, int64(555), cfg.AuthorizedUserID)
	require.Equal(t, "finanzas.db", cfg.DatabasePath)
	require.Equal(t, 5, cfg.MaxDBConnections)
	require.True(t, cfg.BackupEnabled)
	require.Equal(t, 7, cfg.BackupRetention)
}

func TestFromEnvRejectsNonPositiveDatabaseTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "secret")
	t.Setenv("AUTHORIZED_USER_ID", "555")
	t.Setenv("DATABASE_TIMEOUT", "0")

	_, err := FromEnv()
	require.Error(t, err)
}
