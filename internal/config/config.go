package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL       string        `mapstructure:"REDIS_URL"`
	DefaultClinic  string        `mapstructure:"DEFAULT_CLINIC"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	// Calendar grid geometry.
	CalMinHour     int    `mapstructure:"CAL_MIN_HOUR"`
	CalMaxHour     int    `mapstructure:"CAL_MAX_HOUR"`
	CalStepMinutes int    `mapstructure:"CAL_STEP_MINUTES"`
	CalWeekStart   string `mapstructure:"CAL_WEEK_START"`
	CalMaxPerCell  int    `mapstructure:"CAL_MAX_PER_CELL"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DEFAULT_CLINIC", "default")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("CAL_MIN_HOUR", 8)
	v.SetDefault("CAL_MAX_HOUR", 18)
	v.SetDefault("CAL_STEP_MINUTES", 30)
	v.SetDefault("CAL_WEEK_START", "monday")
	v.SetDefault("CAL_MAX_PER_CELL", 3)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("REDIS_URL")
	v.BindEnv("DEFAULT_CLINIC")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("REQUEST_TIMEOUT")
	v.BindEnv("CAL_MIN_HOUR")
	v.BindEnv("CAL_MAX_HOUR")
	v.BindEnv("CAL_STEP_MINUTES")
	v.BindEnv("CAL_WEEK_START")
	v.BindEnv("CAL_MAX_PER_CELL")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

var weekStarts = map[string]bool{
	"monday": true, "sunday": true, "saturday": true,
}

// Validate checks that the calendar geometry makes sense. A window that does
// not fit at least one step, or a step that does not divide the hour, would
// render an unusable grid.
func (c *Config) Validate() error {
	if c.CalMinHour < 0 || c.CalMinHour > 23 {
		return fmt.Errorf("CAL_MIN_HOUR must be between 0 and 23, got %d", c.CalMinHour)
	}
	if c.CalMaxHour < 1 || c.CalMaxHour > 24 {
		return fmt.Errorf("CAL_MAX_HOUR must be between 1 and 24, got %d", c.CalMaxHour)
	}
	if c.CalMaxHour <= c.CalMinHour {
		return fmt.Errorf("CAL_MAX_HOUR (%d) must be greater than CAL_MIN_HOUR (%d)", c.CalMaxHour, c.CalMinHour)
	}
	switch c.CalStepMinutes {
	case 5, 10, 15, 20, 30, 60:
	default:
		return fmt.Errorf("CAL_STEP_MINUTES must divide an hour evenly, got %d", c.CalStepMinutes)
	}
	if !weekStarts[strings.ToLower(c.CalWeekStart)] {
		return fmt.Errorf("CAL_WEEK_START must be monday, sunday or saturday, got %q", c.CalWeekStart)
	}
	if c.CalMaxPerCell < 1 {
		return fmt.Errorf("CAL_MAX_PER_CELL must be at least 1, got %d", c.CalMaxPerCell)
	}
	return nil
}
