package config

import (
	"os"
	"testing"
	"time"
)

var configEnvVars = []string{
	"COMMS_URL", "SERVICE_NAME", "COMMS_CLIENT_URL",
	"REGISTRY_SUBJECT", "REGISTRY_CHANGE_EVENT_SUBJECT",
	"REGISTRY_DEFAULT_ENV", "REGISTRY_REQUEST_TIMEOUT", "REGISTRY_INVOKE_TIMEOUT",
	"DATABASE_URL", "RUN_MIGRATIONS", "MIGRATION_PATH",
	"REGISTRY_HTTP_ADDR", "HTTP_PORT", "HEALTH_CHECK_TIMEOUT", "LOG_LEVEL",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, env := range configEnvVars {
		os.Unsetenv(env)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}

	if cfg.COMMSURL != "nats://127.0.0.1:4222" {
		t.Errorf("config:config_test - COMMSURL = %q, want %q", cfg.COMMSURL, "nats://127.0.0.1:4222")
	}
	if cfg.COMMSName != "interface-registry" {
		t.Errorf("config:config_test - COMMSName = %q, want %q", cfg.COMMSName, "interface-registry")
	}
	if cfg.DefaultEnv != "development" {
		t.Errorf("config:config_test - DefaultEnv = %q, want development", cfg.DefaultEnv)
	}
	if cfg.RequestTimeout != 25*time.Second {
		t.Errorf("config:config_test - RequestTimeout = %v, want 25s", cfg.RequestTimeout)
	}
	if cfg.InvokeTimeout != 5*time.Second {
		t.Errorf("config:config_test - InvokeTimeout = %v, want 5s", cfg.InvokeTimeout)
	}
	if cfg.RunMigrations {
		t.Error("config:config_test - expected RunMigrations=false by default")
	}
	if cfg.MigrationPath != "migrations" {
		t.Errorf("config:config_test - MigrationPath = %q, want %q", cfg.MigrationPath, "migrations")
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("config:config_test - HTTPPort = %d, want 8080", cfg.HTTPPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("config:config_test - LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	clearConfigEnv(t)

	overrides := map[string]string{
		"COMMS_URL":                     "nats://custom:4222",
		"SERVICE_NAME":                  "test-server",
		"REGISTRY_SUBJECT":              "custom.registry",
		"REGISTRY_CHANGE_EVENT_SUBJECT": "custom.changed",
		"REGISTRY_DEFAULT_ENV":          "production",
		"REGISTRY_REQUEST_TIMEOUT":      "10s",
		"REGISTRY_INVOKE_TIMEOUT":       "2s",
		"DATABASE_URL":                  "postgres://test@localhost/test",
		"RUN_MIGRATIONS":                "true",
		"HTTP_PORT":                     "9090",
		"LOG_LEVEL":                     "debug",
	}
	for k, v := range overrides {
		os.Setenv(k, v)
	}
	t.Cleanup(func() { clearConfigEnv(t) })

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}

	if cfg.COMMSURL != "nats://custom:4222" {
		t.Errorf("config:config_test - COMMSURL = %q", cfg.COMMSURL)
	}
	if cfg.RegistrySubject != "custom.registry" {
		t.Errorf("config:config_test - RegistrySubject = %q", cfg.RegistrySubject)
	}
	if cfg.DefaultEnv != "production" {
		t.Errorf("config:config_test - DefaultEnv = %q", cfg.DefaultEnv)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("config:config_test - RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.InvokeTimeout != 2*time.Second {
		t.Errorf("config:config_test - InvokeTimeout = %v", cfg.InvokeTimeout)
	}
	if !cfg.RunMigrations {
		t.Error("config:config_test - expected RunMigrations=true")
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("config:config_test - HTTPPort = %d", cfg.HTTPPort)
	}
}

func TestValidateForServe(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}
	if err := cfg.ValidateForServe(); err != nil {
		t.Errorf("config:config_test - defaults should validate: %v", err)
	}

	cfg.DatabaseURL = ""
	if err := cfg.ValidateForServe(); err == nil {
		t.Error("config:config_test - expected error for empty DATABASE_URL")
	}

	cfg.DatabaseURL = "postgres://test@localhost/test"
	cfg.InvokeTimeout = 0
	if err := cfg.ValidateForServe(); err == nil {
		t.Error("config:config_test - expected error for zero invoke timeout")
	}
}
