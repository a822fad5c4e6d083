// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
	IsAuthRequired() bool
	GetDefaultTenantID() string
	GetDefaultSourceType() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// ModelConfig provides settings for the chat-completions model service.
type ModelConfig interface {
	GetModelAPIKey() string
	GetModelBaseURL() string
	GetModelName() string
	GetModelTimeout() time.Duration
}

// CatalogConfig provides settings for the property catalog loader.
type CatalogConfig interface {
	GetCatalogCSVPath() string
}

// SessionConfig provides settings for the conversation session store.
type SessionConfig interface {
	GetRedisURL() string
	GetSessionTTL() time.Duration
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// EmailConfig provides settings for handoff notification email.
type EmailConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetHandoffNotifyAddress() string
	IsEmailEnabled() bool
}

// BotConfig provides settings for the conversation orchestrator.
type BotConfig interface {
	GetBotConfigPath() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	DatabaseURL          string
	JWTAccessSecret      string
	RequireAuth          bool
	DefaultTenantID      string
	DefaultSourceType    string
	CORSAllowAll         bool
	CORSOrigins          []string
	CORSAllowCreds       bool
	ModelAPIKey          string
	ModelBaseURL         string
	ModelName            string
	ModelTimeout         time.Duration
	CatalogCSVPath       string
	RedisURL             string
	SessionTTL           time.Duration
	AsynqQueueName       string
	AsynqConcurrency     int
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	EmailFromName        string
	EmailFromAddress     string
	HandoffNotifyAddress string
	BotConfigPath        string
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string   { return c.JWTAccessSecret }
func (c *Config) IsAuthRequired() bool         { return c.RequireAuth }
func (c *Config) GetDefaultTenantID() string   { return c.DefaultTenantID }
func (c *Config) GetDefaultSourceType() string { return c.DefaultSourceType }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// ModelConfig implementation
func (c *Config) GetModelAPIKey() string         { return c.ModelAPIKey }
func (c *Config) GetModelBaseURL() string        { return c.ModelBaseURL }
func (c *Config) GetModelName() string           { return c.ModelName }
func (c *Config) GetModelTimeout() time.Duration { return c.ModelTimeout }

// CatalogConfig implementation
func (c *Config) GetCatalogCSVPath() string { return c.CatalogCSVPath }

// SessionConfig implementation (GetRedisURL is shared with SchedulerConfig)
func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) GetSessionTTL() time.Duration { return c.SessionTTL }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// EmailConfig implementation
func (c *Config) GetSMTPHost() string             { return c.SMTPHost }
func (c *Config) GetSMTPPort() int                { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string         { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string         { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string        { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string     { return c.EmailFromAddress }
func (c *Config) GetHandoffNotifyAddress() string { return c.HandoffNotifyAddress }
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.HandoffNotifyAddress != ""
}

// BotConfig implementation
func (c *Config) GetBotConfigPath() string { return c.BotConfigPath }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		JWTAccessSecret:      getEnv("JWT_ACCESS_SECRET", ""),
		RequireAuth:          !strings.EqualFold(getEnv("REQUIRE_AUTH", "true"), "false"),
		DefaultTenantID:      getEnv("DEFAULT_TENANT_ID", "00000000-0000-0000-0000-000000000001"),
		DefaultSourceType:    getEnv("DEFAULT_SOURCE_TYPE", "web_chat"),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		CORSAllowCreds:       strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		ModelAPIKey:          getEnv("OPENAI_API_KEY", ""),
		ModelBaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		ModelName:            getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
		ModelTimeout:         mustDuration(getEnv("OPENAI_TIMEOUT", "45s")),
		CatalogCSVPath:       getEnv("CATALOG_CSV_PATH", "data/zonaprop-argentina-dataset.csv"),
		RedisURL:             getEnv("REDIS_URL", ""),
		SessionTTL:           mustDuration(getEnv("SESSION_TTL", "24h")),
		AsynqQueueName:       getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:     mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:         getEnv("SMTP_USERNAME", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		EmailFromName:        getEnv("EMAIL_FROM_NAME", "Inmo24x7"),
		EmailFromAddress:     getEnv("EMAIL_FROM_ADDRESS", ""),
		HandoffNotifyAddress: getEnv("HANDOFF_NOTIFY_ADDRESS", ""),
		BotConfigPath:        getEnv("BOT_CONFIG_PATH", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ModelAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.RequireAuth && cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required when REQUIRE_AUTH is true")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
