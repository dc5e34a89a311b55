// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver       string `yaml:"driver"`
	Filename     string `yaml:"filename" env:"DATABASE_FILENAME"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type LoggingConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
	// File enables rotated file output in addition to stderr.
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type EmailConfig struct {
	Enabled         bool   `yaml:"enabled" env:"EMAIL_ENABLED"`
	Region          string `yaml:"region" env:"AWS_REGION"`
	FromAddress     string `yaml:"from_address"`
	AccessKeyID     string `yaml:"-" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"-" env:"AWS_SECRET_ACCESS_KEY"`
}

type CognitoConfig struct {
	Enabled    bool   `yaml:"enabled"`
	UserPoolID string `yaml:"user_pool_id" env:"COGNITO_USER_POOL_ID"`
	ClientID   string `yaml:"client_id" env:"COGNITO_CLIENT_ID"`
}

type ClerkConfig struct {
	Enabled   bool   `yaml:"enabled"`
	SecretKey string `yaml:"-" env:"CLERK_SECRET_KEY"`
}

type RateLimitConfig struct {
	MaxLoginAttempts   int           `yaml:"max_login_attempts"`
	LockoutDuration    time.Duration `yaml:"lockout_duration"`
	OTPSendCooldown    time.Duration `yaml:"otp_send_cooldown"`
	MaxOTPSendsPerHour int           `yaml:"max_otp_sends_per_hour"`
}

type AuthConfig struct {
	SessionTTL   time.Duration   `yaml:"session_ttl"`
	CookieSecure bool            `yaml:"cookie_secure" env:"COOKIE_SECURE"`
	Cognito      CognitoConfig   `yaml:"cognito"`
	Clerk        ClerkConfig     `yaml:"clerk"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

type SchedulerConfig struct {
	Enabled      bool   `yaml:"enabled"`
	ReminderCron string `yaml:"reminder_cron"`
}

type Config struct {
	App struct {
		Name            string        `yaml:"name"`
		Environment     string        `yaml:"environment" env:"ENVIRONMENT"`
		Port            int           `yaml:"port" env:"PORT"`
		BaseURL         string        `yaml:"base_url"`
		BaseDomain      string        `yaml:"base_domain" env:"BASE_DOMAIN"`
		StaticDir       string        `yaml:"static_dir" env:"STATIC_DIR"`
		TrustProxy      bool          `yaml:"trust_proxy"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SecretKey       string        `yaml:"-" env:"APP_SECRET_KEY"`
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	Email     EmailConfig     `yaml:"email"`
	Auth      AuthConfig      `yaml:"auth"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// Load loads .env, the yaml file, then environment overrides, and validates the result.
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes yaml data, applies environment overrides and defaults, and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.ShutdownTimeout == 0 {
		c.App.ShutdownTimeout = 30 * time.Second
	}
	if c.App.StaticDir == "" {
		c.App.StaticDir = "build/bin/static"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 50
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = 8 * time.Hour
	}
	if c.Auth.RateLimit.MaxLoginAttempts == 0 {
		c.Auth.RateLimit.MaxLoginAttempts = 5
	}
	if c.Auth.RateLimit.LockoutDuration == 0 {
		c.Auth.RateLimit.LockoutDuration = 15 * time.Minute
	}
	if c.Auth.RateLimit.OTPSendCooldown == 0 {
		c.Auth.RateLimit.OTPSendCooldown = 60 * time.Second
	}
	if c.Auth.RateLimit.MaxOTPSendsPerHour == 0 {
		c.Auth.RateLimit.MaxOTPSendsPerHour = 5
	}
	if c.Scheduler.ReminderCron == "" {
		c.Scheduler.ReminderCron = "*/15 * * * *"
	}
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if !c.IsDevelopment() && len(c.App.SecretKey) < 32 {
		return fmt.Errorf("APP_SECRET_KEY must be at least 32 characters outside development")
	}
	if c.App.BaseDomain != "" && strings.Contains(c.App.BaseDomain, "://") {
		return fmt.Errorf("base_domain must be a host name, not a URL")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", c.Logging.Level)
	}

	if c.Email.Enabled {
		if c.Email.Region == "" {
			return fmt.Errorf("email region is required when email is enabled")
		}
		if c.Email.FromAddress == "" {
			return fmt.Errorf("email from_address is required when email is enabled")
		}
	}

	if c.Auth.Cognito.Enabled && (c.Auth.Cognito.UserPoolID == "" || c.Auth.Cognito.ClientID == "") {
		return fmt.Errorf("cognito user_pool_id and client_id are required when cognito is enabled")
	}
	if c.Auth.Clerk.Enabled && c.Auth.Clerk.SecretKey == "" {
		return fmt.Errorf("CLERK_SECRET_KEY is required when clerk is enabled")
	}

	if c.Scheduler.Enabled {
		if _, err := cron.ParseStandard(c.Scheduler.ReminderCron); err != nil {
			return fmt.Errorf("invalid reminder_cron %q: %w", c.Scheduler.ReminderCron, err)
		}
	}

	return nil
}
