// Package config provides configuration management for hostconf.
//
// This package handles loading configuration from multiple sources:
//   - YAML configuration files
//   - Environment variables (with HC_ prefix)
//   - .env files
//   - Default values
//
// The server configuration is distinct from the inventory: this file says
// where the inventory lives and how it is served, the inventory itself
// (hostconf.yml) declares the hosts.
//
// # Configuration Sources Priority
//
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Default values (hardcoded)
//  2. Configuration files (./config.yaml, ./configs/config.yaml, ~/.hostconf/config.yaml, /etc/hostconf/config.yaml)
//  3. .env files
//  4. Environment variables (HC_ prefix)
//
// # Usage Example
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Server: %s:%d\n", cfg.Server.Host, cfg.Server.Port)
//
// # Environment Variables
//
// Environment variables override all other configuration sources.
// Use HC_ prefix and underscores for nested keys:
//   - HC_SERVER_PORT=8000
//   - HC_INVENTORY_PATH=/srv/hostconf/hostconf.yml
//   - HC_RENDER_EXPOSE_IS_ROUTER=true
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "HC"

// Config is the root configuration structure for hostconf.
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Inventory locates the host inventory
	Inventory InventoryConfig `mapstructure:"inventory" yaml:"inventory"`

	// Render contains template and projection settings
	Render RenderConfig `mapstructure:"render" yaml:"render"`

	// Logging contains logging settings
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Security contains CORS and rate limiting settings
	Security SecurityConfig `mapstructure:"security" yaml:"security"`

	// Metrics contains the prometheus endpoint settings
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Host is the server bind address (default: 0.0.0.0)
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the server listen port (default: 8000)
	Port int `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`

	// ReadTimeout is the maximum duration for reading requests
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing responses
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// ShutdownTimeout is the maximum duration for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// Debug enables debug logging and verbose error responses
	Debug bool `mapstructure:"debug" yaml:"debug"`

	// TLSEnabled enables HTTPS
	TLSEnabled bool `mapstructure:"tls_enabled" yaml:"tls_enabled"`

	// TLSCert is the path to the TLS certificate file
	TLSCert string `mapstructure:"tls_cert" yaml:"tls_cert" validate:"required_if=TLSEnabled true"`

	// TLSKey is the path to the TLS private key file
	TLSKey string `mapstructure:"tls_key" yaml:"tls_key" validate:"required_if=TLSEnabled true"`
}

// InventoryConfig locates the host inventory.
type InventoryConfig struct {
	// Path is the inventory file (default: hostconf.yml)
	Path string `mapstructure:"path" yaml:"path" validate:"required"`

	// MACPolicy is normalized (case and separator insensitive) or exact
	MACPolicy string `mapstructure:"mac_policy" yaml:"mac_policy" validate:"oneof=normalized exact"`
}

// RenderConfig contains template and projection settings.
type RenderConfig struct {
	// TemplatesDir replaces the built-in templates when set
	TemplatesDir string `mapstructure:"templates_dir" yaml:"templates_dir"`

	// ExposeIsRouter passes is_router to user-data and unattend templates
	ExposeIsRouter bool `mapstructure:"expose_is_router" yaml:"expose_is_router"`

	// AllowCustomTemplates enables PUT /unattend/:mac
	AllowCustomTemplates bool `mapstructure:"allow_custom_templates" yaml:"allow_custom_templates"`

	// CustomTemplateMaxBytes bounds the size of a caller template
	CustomTemplateMaxBytes int `mapstructure:"custom_template_max_bytes" yaml:"custom_template_max_bytes" validate:"gt=0"`

	// CustomOutputMaxBytes bounds the output of a caller template
	CustomOutputMaxBytes int `mapstructure:"custom_output_max_bytes" yaml:"custom_output_max_bytes" validate:"gt=0"`

	// CustomTimeout bounds the execution time of a caller template
	CustomTimeout time.Duration `mapstructure:"custom_timeout" yaml:"custom_timeout" validate:"gt=0"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`

	// Format is the log format (json, text)
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json text"`

	// Output is the log destination (stdout, stderr or a file path)
	Output string `mapstructure:"output" yaml:"output"`
}

// SecurityConfig contains security and rate limiting settings.
type SecurityConfig struct {
	// RateLimit is the maximum requests per second per client (0 disables)
	RateLimit int `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"`

	// AllowedOrigins are the CORS allowed origins
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// MetricsConfig contains the prometheus endpoint settings.
type MetricsConfig struct {
	// Enabled serves prometheus metrics
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Path is the metrics endpoint (default: /metrics)
	Path string `mapstructure:"path" yaml:"path" validate:"startswith=/"`
}

// Load reads configuration from a file and environment variables.
// If cfgFile is empty, it searches for config.yaml in standard locations.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (HC_ prefix)
//  2. .env file
//  3. Configuration file
//  4. Default values
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.hostconf")
		v.AddConfigPath("/etc/hostconf")
	}

	if err := v.ReadInConfig(); err != nil {
		// An explicit file that does not exist falls back to defaults;
		// any other read or parse error is fatal.
		if cfgFile != "" {
			if !isFileNotFoundError(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.MergeInConfig() // Ignore error if .env file doesn't exist

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration produced by the built-in defaults alone.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// Defaults always decode.
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.tls_enabled", false)
	v.SetDefault("server.tls_cert", "")
	v.SetDefault("server.tls_key", "")

	v.SetDefault("inventory.path", "hostconf.yml")
	v.SetDefault("inventory.mac_policy", "normalized")

	v.SetDefault("render.templates_dir", "")
	v.SetDefault("render.expose_is_router", false)
	v.SetDefault("render.allow_custom_templates", false)
	v.SetDefault("render.custom_template_max_bytes", 64<<10)
	v.SetDefault("render.custom_output_max_bytes", 1<<20)
	v.SetDefault("render.custom_timeout", "2s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("security.rate_limit", 100)
	v.SetDefault("security.allowed_origins", []string{"*"})

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

var structValidator = validator.New()

func validate(cfg *Config) error {
	if err := structValidator.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, len(fieldErrs))
			for i, fe := range fieldErrs {
				msgs[i] = fmt.Sprintf("%s: failed %q (got %v)", configKey(fe.Namespace()), fe.Tag(), fe.Value())
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// configKey turns a validator namespace (Config.Server.Port) into the
// configuration key users write (server.port).
func configKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isFileNotFoundError checks if an error is a file not found error.
func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
