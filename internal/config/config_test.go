package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestLoadDefaults tests that default configuration values are loaded correctly.
func TestLoadDefaults(t *testing.T) {
	// Load configuration without a config file
	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	// Test Server defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected default server host '0.0.0.0', got '%s'", cfg.Server.Host)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Expected default server port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Expected default read timeout 30s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected default shutdown timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.TLSEnabled {
		t.Errorf("Expected default tls_enabled false, got %v", cfg.Server.TLSEnabled)
	}

	// Test Inventory defaults
	if cfg.Inventory.Path != "hostconf.yml" {
		t.Errorf("Expected default inventory path 'hostconf.yml', got '%s'", cfg.Inventory.Path)
	}
	if cfg.Inventory.MACPolicy != "normalized" {
		t.Errorf("Expected default mac policy 'normalized', got '%s'", cfg.Inventory.MACPolicy)
	}

	// Test Render defaults
	if cfg.Render.TemplatesDir != "" {
		t.Errorf("Expected no templates dir by default, got '%s'", cfg.Render.TemplatesDir)
	}
	if cfg.Render.ExposeIsRouter {
		t.Error("Expected expose_is_router false by default")
	}
	if cfg.Render.AllowCustomTemplates {
		t.Error("Expected allow_custom_templates false by default")
	}
	if cfg.Render.CustomTemplateMaxBytes != 65536 {
		t.Errorf("Expected custom template limit 65536, got %d", cfg.Render.CustomTemplateMaxBytes)
	}
	if cfg.Render.CustomTimeout != 2*time.Second {
		t.Errorf("Expected custom timeout 2s, got %v", cfg.Render.CustomTimeout)
	}

	// Test Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default logging level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected default logging format 'json', got '%s'", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default logging output 'stdout', got '%s'", cfg.Logging.Output)
	}

	// Test Security defaults
	if cfg.Security.RateLimit != 100 {
		t.Errorf("Expected default rate limit 100, got %d", cfg.Security.RateLimit)
	}
	if len(cfg.Security.AllowedOrigins) != 1 || cfg.Security.AllowedOrigins[0] != "*" {
		t.Errorf("Expected default allowed origins ['*'], got %v", cfg.Security.AllowedOrigins)
	}

	// Test Metrics defaults
	if !cfg.Metrics.Enabled {
		t.Error("Expected metrics enabled by default")
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Expected default metrics path '/metrics', got '%s'", cfg.Metrics.Path)
	}
}

// TestDefault tests that Default matches an empty Load.
func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != 8000 {
		t.Errorf("Expected port 8000, got %d", cfg.Server.Port)
	}
	if err := validate(cfg); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

// TestLoadFile tests reading an explicit configuration file.
func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
inventory:
  path: /srv/hostconf.yml
  mac_policy: exact
render:
  expose_is_router: true
  allow_custom_templates: true
  custom_timeout: 500ms
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected unset host to keep its default, got '%s'", cfg.Server.Host)
	}
	if cfg.Inventory.Path != "/srv/hostconf.yml" {
		t.Errorf("Expected inventory path '/srv/hostconf.yml', got '%s'", cfg.Inventory.Path)
	}
	if cfg.Inventory.MACPolicy != "exact" {
		t.Errorf("Expected mac policy 'exact', got '%s'", cfg.Inventory.MACPolicy)
	}
	if !cfg.Render.ExposeIsRouter || !cfg.Render.AllowCustomTemplates {
		t.Errorf("Expected render toggles on, got %+v", cfg.Render)
	}
	if cfg.Render.CustomTimeout != 500*time.Millisecond {
		t.Errorf("Expected custom timeout 500ms, got %v", cfg.Render.CustomTimeout)
	}
}

// TestLoadInvalidFile tests that a malformed config file is rejected.
func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed config file, got nil")
	}
}

// TestValidation tests the configuration validation logic.
func TestValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr bool
		errMsg    string
	}{
		{
			name:      "valid configuration",
			mutate:    func(c *Config) {},
			expectErr: false,
		},
		{
			name:      "invalid port - too low",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			expectErr: true,
			errMsg:    "server.port",
		},
		{
			name:      "invalid port - too high",
			mutate:    func(c *Config) { c.Server.Port = 70000 },
			expectErr: true,
			errMsg:    "server.port",
		},
		{
			name:      "tls without certificate",
			mutate:    func(c *Config) { c.Server.TLSEnabled = true },
			expectErr: true,
			errMsg:    "server.tls_cert",
		},
		{
			name:      "missing inventory path",
			mutate:    func(c *Config) { c.Inventory.Path = "" },
			expectErr: true,
			errMsg:    "inventory.path",
		},
		{
			name:      "unknown mac policy",
			mutate:    func(c *Config) { c.Inventory.MACPolicy = "fuzzy" },
			expectErr: true,
			errMsg:    "inventory.mac_policy",
		},
		{
			name:      "unknown log format",
			mutate:    func(c *Config) { c.Logging.Format = "xml" },
			expectErr: true,
			errMsg:    "logging.format",
		},
		{
			name:      "negative rate limit",
			mutate:    func(c *Config) { c.Security.RateLimit = -1 },
			expectErr: true,
			errMsg:    "security.rate_limit",
		},
		{
			name:      "relative metrics path",
			mutate:    func(c *Config) { c.Metrics.Path = "metrics" },
			expectErr: true,
			errMsg:    "metrics.path",
		},
		{
			name:      "zero custom timeout",
			mutate:    func(c *Config) { c.Render.CustomTimeout = 0 },
			expectErr: true,
			errMsg:    "render.custom_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := validate(cfg)
			if tt.expectErr {
				if err == nil {
					t.Errorf("Expected error containing '%s', got nil", tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error containing '%s', got '%s'", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

// TestEnvironmentVariableOverride tests that environment variables override config values.
func TestEnvironmentVariableOverride(t *testing.T) {
	t.Setenv("HC_SERVER_PORT", "9999")
	t.Setenv("HC_SERVER_HOST", "127.0.0.1")
	t.Setenv("HC_INVENTORY_MAC_POLICY", "exact")
	t.Setenv("HC_RENDER_EXPOSE_IS_ROUTER", "true")

	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port 9999 from environment, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected host '127.0.0.1' from environment, got '%s'", cfg.Server.Host)
	}
	if cfg.Inventory.MACPolicy != "exact" {
		t.Errorf("Expected mac policy 'exact' from environment, got '%s'", cfg.Inventory.MACPolicy)
	}
	if !cfg.Render.ExposeIsRouter {
		t.Error("Expected expose_is_router true from environment")
	}
}

// TestConfigKey tests the validator namespace to config key conversion.
func TestConfigKey(t *testing.T) {
	tests := map[string]string{
		"Config.Server.Port":                   "server.port",
		"Config.Server.TLSCert":                "server.tls_cert",
		"Config.Inventory.MACPolicy":           "inventory.mac_policy",
		"Config.Render.CustomTemplateMaxBytes": "render.custom_template_max_bytes",
		"Port":                                 "port",
	}

	for input, expected := range tests {
		if got := configKey(input); got != expected {
			t.Errorf("configKey(%q) = %q, want %q", input, got, expected)
		}
	}
}
