package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_missingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.ConfigStore.Driver != "postgres" {
		t.Errorf("driver = %q, want postgres", cfg.ConfigStore.Driver)
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.Observability.LogLevel)
	}
}

func TestLoad_fileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: 9090
  read_timeout: 10s
config_store:
  driver: memory
observability:
  log_level: debug
  metrics:
    enabled: false
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("read timeout = %v, want 10s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("write timeout = %v, want default 30s", cfg.Server.WriteTimeout)
	}
	if cfg.ConfigStore.Driver != "memory" {
		t.Errorf("driver = %q, want memory", cfg.ConfigStore.Driver)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Observability.LogLevel)
	}
	if cfg.Observability.Metrics.Enabled {
		t.Error("metrics should be disabled")
	}
}

func TestLoad_envOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ESTIMATOR_SERVER_PORT", "7000")
	t.Setenv("ESTIMATOR_CONFIG_STORE_DRIVER", "memory")
	t.Setenv("ESTIMATOR_OBSERVABILITY_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("port = %d, want env override 7000", cfg.Server.Port)
	}
	if cfg.ConfigStore.Driver != "memory" {
		t.Errorf("driver = %q, want env override memory", cfg.ConfigStore.Driver)
	}
	if cfg.Observability.LogLevel != "warn" {
		t.Errorf("log level = %q, want env override warn", cfg.Observability.LogLevel)
	}
}

func TestLoad_malformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(*Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"unsupported driver", func(c *Config) { c.ConfigStore.Driver = "sqlite" }, true},
		{"memory driver", func(c *Config) { c.ConfigStore.Driver = "memory" }, false},
		{"auth without secret env", func(c *Config) {
			c.Auth.Enabled = true
			c.Auth.SecretEnv = ""
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
