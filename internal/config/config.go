package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/clinicportal/clinic-scheduler/internal/timezone"
)

const (
	StrategyFirstAvailable = "first_available"
	StrategyLeastLoaded    = "least_loaded"

	maxAlternatives = 10
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	RedisURL       string `mapstructure:"REDIS_URL"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	ClinicTimezone     string        `mapstructure:"CLINIC_TIMEZONE"`
	StoreTimeout       time.Duration `mapstructure:"STORE_TIMEOUT"`
	LockTTL            time.Duration `mapstructure:"LOCK_TTL"`
	LockWait           time.Duration `mapstructure:"LOCK_WAIT"`
	AssignmentStrategy string        `mapstructure:"ASSIGNMENT_STRATEGY"`
	AlternativeDates   int           `mapstructure:"ALTERNATIVE_DATES"`

	CORSOrigins []string `mapstructure:"-"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"DATABASE_URL", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "REDIS_URL",
	"JWT_SECRET",
	"CLINIC_TIMEZONE", "STORE_TIMEOUT", "LOCK_TTL", "LOCK_WAIT",
	"ASSIGNMENT_STRATEGY", "ALTERNATIVE_DATES",
	"CORS_ORIGINS",
}

// Load reads the environment. It does not validate; call Validate.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("JWT_SECRET", "changeme")
	v.SetDefault("CLINIC_TIMEZONE", timezone.DefaultTimezone)
	v.SetDefault("STORE_TIMEOUT", "3s")
	v.SetDefault("LOCK_TTL", "5s")
	v.SetDefault("LOCK_WAIT", "2s")
	v.SetDefault("ASSIGNMENT_STRATEGY", StrategyFirstAvailable)
	v.SetDefault("ALTERNATIVE_DATES", 3)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	for _, o := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if cfg.AlternativeDates < 1 {
		cfg.AlternativeDates = 1
	}
	if cfg.AlternativeDates > maxAlternatives {
		cfg.AlternativeDates = maxAlternatives
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if !timezone.IsValid(c.ClinicTimezone) {
		return fmt.Errorf("CLINIC_TIMEZONE %q is not a known location", c.ClinicTimezone)
	}
	switch c.AssignmentStrategy {
	case StrategyFirstAvailable, StrategyLeastLoaded:
	default:
		return fmt.Errorf("ASSIGNMENT_STRATEGY %q is not supported", c.AssignmentStrategy)
	}
	if c.StoreTimeout <= 0 || c.LockTTL <= 0 || c.LockWait <= 0 {
		return fmt.Errorf("STORE_TIMEOUT, LOCK_TTL and LOCK_WAIT must be positive")
	}
	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin")
	}
	return nil
}

// RequireDatabase is checked by commands that open the store.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.Port)
}
