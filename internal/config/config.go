// Package config loads and validates the imageforge configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "imageforge.yaml"

// Config represents the application configuration.
type Config struct {
	Image         ImageConfig         `yaml:"image"`
	Registry      RegistryConfig      `yaml:"registry"`
	Source        *SourceConfig       `yaml:"source,omitempty"`
	ErrorHandling ErrorHandlingConfig `yaml:"error_handling"`
	Events        EventsConfig        `yaml:"events"`
	Store         StoreConfig         `yaml:"store"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ImageConfig describes the image to produce.
type ImageConfig struct {
	Name          string   `yaml:"name"`
	Tag           string   `yaml:"tag,omitempty"`
	BaseImage     string   `yaml:"base_image,omitempty"`
	Architectures []string `yaml:"architectures,omitempty"`
	Dockerfile    string   `yaml:"dockerfile,omitempty"`
	ContextDir    string   `yaml:"context_dir,omitempty"`
}

// RegistryConfig describes where images are pushed.
type RegistryConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Insecure bool   `yaml:"insecure,omitempty"`
}

// SourceConfig points at a git repository holding the build context.
type SourceConfig struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch,omitempty"`
	Token  string `yaml:"token,omitempty"`
}

// ErrorHandlingConfig tunes the failure handling engine.
type ErrorHandlingConfig struct {
	MaxRetries                 *int  `yaml:"max_retries,omitempty"`
	RetryDelayMs               *int  `yaml:"retry_delay_ms,omitempty"`
	MaxErrorHistory            *int  `yaml:"max_error_history,omitempty"`
	EnableRecovery             *bool `yaml:"enable_recovery,omitempty"`
	EnableClassification       *bool `yaml:"enable_classification,omitempty"`
	EnableUserFriendlyMessages *bool `yaml:"enable_user_friendly_messages,omitempty"`
}

// EventsConfig configures NATS error event publishing.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// StoreConfig configures the persistent error store.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint used in watch mode.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen,omitempty"`
}

// LoggingConfig tunes slog output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug|info|warn|error
	Format string `yaml:"format,omitempty"` // text|json
}

// Load loads configuration from the specified file. A .env file beside the
// working directory is loaded first so ${VAR} references in the YAML resolve.
func Load(configPath string) (*Config, error) {
	// Missing .env files are not an error.
	_ = godotenv.Load(".env", ".env.local")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Image.Tag == "" {
		c.Image.Tag = "latest"
	}
	if len(c.Image.Architectures) == 0 {
		c.Image.Architectures = []string{"amd64"}
	}
	if c.Image.Dockerfile == "" {
		c.Image.Dockerfile = "Dockerfile"
	}
	if c.Image.ContextDir == "" {
		c.Image.ContextDir = "."
	}
	if c.Source != nil && c.Source.Branch == "" {
		c.Source.Branch = "main"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "imageforge.errors"
	}
	if c.Store.Path == "" {
		c.Store.Path = "imageforge-errors.db"
	}
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = ":9464"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks invariants that would otherwise surface mid-operation.
func (c *Config) Validate() error {
	if c.Image.Name == "" {
		return fmt.Errorf("image.name is required")
	}
	for _, arch := range c.Image.Architectures {
		switch arch {
		case "amd64", "arm64", "arm", "386":
		default:
			return fmt.Errorf("unsupported architecture: %s", arch)
		}
	}
	if c.Events.Enabled && c.Events.NATSURL == "" {
		return fmt.Errorf("events.nats_url is required when events are enabled")
	}
	if eh := c.ErrorHandling; eh.MaxRetries != nil && *eh.MaxRetries < 0 {
		return fmt.Errorf("error_handling.max_retries cannot be negative")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Logging.Format)
	}
	return nil
}
