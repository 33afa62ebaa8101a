// Package config loads FinanceBot's process configuration from
// environment variables, following the same getenv-with-fallback and
// explicit-required-field pattern used across the gateway services this
// module was adapted from.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	BotToken          string
	AuthorizedUserID  int64
	DatabasePath      string
	DatabaseTimeout   int
	MaxUserStates     int
	MaxDBConnections  int
	BackupEnabled     bool
	BackupRetention   int
	Port              int
	Host              string
	LogLevel          string
	LogFile           string
	MaxLogSizeBytes   int
	LogBackupCount    int
	OTELEndpoint      string
	OTELInsecure      bool
	OTELHeaders       string
	OTELTracesEnabled bool
	OTELMetricsEnable bool
}

// FromEnv loads and validates the process configuration. BOT_TOKEN and
// AUTHORIZED_USER_ID are required; every other field has a default.
func FromEnv() (Config, error) {
	cfg := Config{
		BotToken:         strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		DatabasePath:     getenvDefault("DATABASE_PATH", "finanzas.db"),
		Host:             getenvDefault("FLASK_HOST", "0.0.0.0"),
		LogLevel:         getenvDefault("LOG_LEVEL", "INFO"),
		LogFile:          getenvDefault("LOG_FILE", "finance_bot.log"),
		OTELEndpoint:     getenvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELHeaders:      getenvDefault("OTEL_EXPORTER_OTLP_HEADERS", ""),
	}
	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("config: BOT_TOKEN is required")
	}

	userID, err := getenvInt64("AUTHORIZED_USER_ID", 0)
	if err != nil {
		return Config{}, fmt.Errorf("config: AUTHORIZED_USER_ID: %w", err)
	}
	if userID == 0 {
		return Config{}, fmt.Errorf("config: AUTHORIZED_USER_ID is required")
	}
	cfg.AuthorizedUserID = userID

	if cfg.DatabaseTimeout, err = getenvInt("DATABASE_TIMEOUT", 30); err != nil {
		return Config{}, fmt.Errorf("config: DATABASE_TIMEOUT: %w", err)
	}
	if cfg.DatabaseTimeout <= 0 {
		return Config{}, fmt.Errorf("config: DATABASE_TIMEOUT must be > 0")
	}
	if cfg.MaxUserStates, err = getenvInt("MAX_USER_STATES", 100); err != nil {
		return Config{}, fmt.Errorf("config: MAX_USER_STATES: %w", err)
	}
	if cfg.MaxDBConnections, err = getenvInt("MAX_DB_CONNECTIONS", 5); err != nil {
		return Config{}, fmt.Errorf("config: MAX_DB_CONNECTIONS: %w", err)
	}
	if cfg.BackupEnabled, err = getenvBool("BACKUP_ENABLED", true); err != nil {
		return Config{}, fmt.Errorf("config: BACKUP_ENABLED: %w", err)
	}
	if cfg.BackupRetention, err = getenvInt("BACKUP_RETENTION_DAYS", 7); err != nil {
		return Config{}, fmt.Errorf("config: BACKUP_RETENTION_DAYS: %w", err)
	}
	if cfg.Port, err = getenvInt("PORT", 5000); err != nil {
		return Config{}, fmt.Errorf("config: PORT: %w", err)
	}
	if cfg.MaxLogSizeBytes, err = getenvInt("MAX_LOG_SIZE", 10*1024*1024); err != nil {
		return Config{}, fmt.Errorf("config: MAX_LOG_SIZE: %w", err)
	}
	if cfg.LogBackupCount, err = getenvInt("LOG_BACKUP_COUNT", 5); err != nil {
		return Config{}, fmt.Errorf("config: LOG_BACKUP_COUNT: %w", err)
	}
	if cfg.OTELInsecure, err = getenvBool("OTEL_EXPORTER_OTLP_INSECURE", true); err != nil {
		return Config{}, fmt.Errorf("config: OTEL_EXPORTER_OTLP_INSECURE: %w", err)
	}
	if cfg.OTELTracesEnabled, err = getenvBool("OTEL_TRACES_ENABLED", false); err != nil {
		return Config{}, fmt.Errorf("config: OTEL_TRACES_ENABLED: %w", err)
	}
	if cfg.OTELMetricsEnable, err = getenvBool("OTEL_METRICS_ENABLED", false); err != nil {
		return Config{}, fmt.Errorf("config: OTEL_METRICS_ENABLED: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func getenvInt64(key string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func getenvBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseBool(strings.ToLower(raw))
}
