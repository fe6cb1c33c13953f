package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/clinic")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.WorkStartHour != 9 || cfg.WorkEndHour != 18 {
		t.Errorf("expected default working hours 9-18, got %d-%d", cfg.WorkStartHour, cfg.WorkEndHour)
	}
	if cfg.SlotMinutes != 30 {
		t.Errorf("expected default slot granularity 30, got %d", cfg.SlotMinutes)
	}
	if cfg.ReminderInterval != time.Minute {
		t.Errorf("expected default reminder interval 1m, got %s", cfg.ReminderInterval)
	}
	if !cfg.IsDev() {
		t.Error("default ENV should be development")
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/clinic")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when JWT_SECRET is missing")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("WORK_START_HOUR", "8")
	t.Setenv("WORK_END_HOUR", "16")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WorkStartHour != 8 || cfg.WorkEndHour != 16 {
		t.Errorf("expected working hours 8-16, got %d-%d", cfg.WorkStartHour, cfg.WorkEndHour)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("expected 2 CORS origins, got %v", cfg.CORSOrigins)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults ok", func(c *Config) {}, false},
		{"start after end", func(c *Config) { c.WorkStartHour = 18; c.WorkEndHour = 9 }, true},
		{"start out of range", func(c *Config) { c.WorkStartHour = -1 }, true},
		{"end out of range", func(c *Config) { c.WorkEndHour = 25 }, true},
		{"zero slot", func(c *Config) { c.SlotMinutes = 0 }, true},
		{"slot over an hour", func(c *Config) { c.SlotMinutes = 90 }, true},
		{"interval too small", func(c *Config) { c.ReminderInterval = time.Millisecond }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				WorkStartHour:    9,
				WorkEndHour:      18,
				SlotMinutes:      30,
				ReminderInterval: time.Minute,
			}
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
