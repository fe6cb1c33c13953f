package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string        `mapstructure:"PORT"`
	Env              string        `mapstructure:"ENV"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	DBMaxConns       int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns       int32         `mapstructure:"DB_MIN_CONNS"`
	JWTSecret        string        `mapstructure:"JWT_SECRET"`
	JWTExpiry        time.Duration `mapstructure:"JWT_EXPIRY"`
	CORSOrigins      []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS     float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst   int           `mapstructure:"RATE_LIMIT_BURST"`
	WorkStartHour    int           `mapstructure:"WORK_START_HOUR"`
	WorkEndHour      int           `mapstructure:"WORK_END_HOUR"`
	SlotMinutes      int           `mapstructure:"SLOT_MINUTES"`
	ReminderInterval time.Duration `mapstructure:"REMINDER_INTERVAL"`
	SendGridAPIKey   string        `mapstructure:"SENDGRID_API_KEY"`
	EmailFrom        string        `mapstructure:"EMAIL_FROM"`
	TwilioSID        string        `mapstructure:"TWILIO_SID"`
	TwilioToken      string        `mapstructure:"TWILIO_TOKEN"`
	TwilioWhatsFrom  string        `mapstructure:"TWILIO_WHATSAPP_FROM"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("JWT_EXPIRY", "168h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("WORK_START_HOUR", 9)
	v.SetDefault("WORK_END_HOUR", 18)
	v.SetDefault("SLOT_MINUTES", 30)
	v.SetDefault("REMINDER_INTERVAL", "1m")
	v.SetDefault("EMAIL_FROM", "no-reply@misonrisa.local")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("JWT_EXPIRY")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("WORK_START_HOUR")
	v.BindEnv("WORK_END_HOUR")
	v.BindEnv("SLOT_MINUTES")
	v.BindEnv("REMINDER_INTERVAL")
	v.BindEnv("SENDGRID_API_KEY")
	v.BindEnv("EMAIL_FROM")
	v.BindEnv("TWILIO_SID")
	v.BindEnv("TWILIO_TOKEN")
	v.BindEnv("TWILIO_WHATSAPP_FROM")

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
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks settings that only fail at runtime if left inconsistent,
// in particular the working-hours window the slot generator derives from.
func (c *Config) Validate() error {
	if c.WorkStartHour < 0 || c.WorkStartHour > 23 {
		return fmt.Errorf("WORK_START_HOUR must be within [0,23], got %d", c.WorkStartHour)
	}
	if c.WorkEndHour < 1 || c.WorkEndHour > 24 {
		return fmt.Errorf("WORK_END_HOUR must be within [1,24], got %d", c.WorkEndHour)
	}
	if c.WorkStartHour >= c.WorkEndHour {
		return fmt.Errorf("WORK_START_HOUR (%d) must be before WORK_END_HOUR (%d)", c.WorkStartHour, c.WorkEndHour)
	}
	if c.SlotMinutes <= 0 || c.SlotMinutes > 60 {
		return fmt.Errorf("SLOT_MINUTES must be within [1,60], got %d", c.SlotMinutes)
	}
	if c.ReminderInterval < time.Second {
		return fmt.Errorf("REMINDER_INTERVAL must be at least 1s, got %s", c.ReminderInterval)
	}
	return nil
}
