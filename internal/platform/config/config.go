package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	TotalsPolicyTrustClient = "trust-client"
	TotalsPolicyRecompute   = "always-recompute"
)

type Config struct {
	Addr                   string
	DatabaseURL            string
	JWTSecret              string
	Environment            string
	SeedAdminServiceNumber string
	SeedAdminFullName      string
	SeedAdminEmail         string
	SeedAdminPassword      string
	RunMigrations          bool
	RunSeed                bool
	MaxBodyBytes           int64
	PayrollTotalsPolicy    string
	MetricsEnabled         bool
	DataEncryptionKey      string
	AuditRetentionDays     int
	AuditPruneInterval     time.Duration
}

func Load() Config {
	return Config{
		Addr:                   getEnv("APP_ADDR", ":8080"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		Environment:            getEnv("APP_ENV", "development"),
		SeedAdminServiceNumber: getEnv("SEED_ADMIN_SERVICE_NUMBER", ""),
		SeedAdminFullName:      getEnv("SEED_ADMIN_FULL_NAME", "Administrator"),
		SeedAdminEmail:         getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:      getEnv("SEED_ADMIN_PASSWORD", ""),
		RunMigrations:          getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:                getEnvBool("RUN_SEED", true),
		MaxBodyBytes:           int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		PayrollTotalsPolicy:    getEnv("PAYROLL_TOTALS_POLICY", TotalsPolicyTrustClient),
		MetricsEnabled:         getEnvBool("METRICS_ENABLED", true),
		DataEncryptionKey:      getEnv("DATA_ENCRYPTION_KEY", ""),
		AuditRetentionDays:     getEnvInt("AUDIT_RETENTION_DAYS", 0),
		AuditPruneInterval:     getEnvDuration("AUDIT_PRUNE_INTERVAL", 0),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.AuditRetentionDays < 0 {
		return fmt.Errorf("AUDIT_RETENTION_DAYS must not be negative")
	}
	switch c.PayrollTotalsPolicy {
	case TotalsPolicyTrustClient, TotalsPolicyRecompute:
	default:
		return fmt.Errorf("PAYROLL_TOTALS_POLICY must be %q or %q", TotalsPolicyTrustClient, TotalsPolicyRecompute)
	}
	return nil
}
