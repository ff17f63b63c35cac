package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	retries := 3
	example := Config{
		Image: ImageConfig{
			Name:          "my-app",
			Tag:           "latest",
			BaseImage:     "docker.io/library/alpine:3.20",
			Architectures: []string{"amd64", "arm64"},
			Dockerfile:    "Dockerfile",
			ContextDir:    ".",
		},
		Registry: RegistryConfig{
			URL:      "registry.example.com/my-team",
			Username: "${REGISTRY_USER}",
			Password: "${REGISTRY_PASSWORD}",
		},
		Source: &SourceConfig{
			URL:    "https://github.com/example/my-app.git",
			Branch: "main",
		},
		ErrorHandling: ErrorHandlingConfig{
			MaxRetries: &retries,
		},
		Events: EventsConfig{
			Enabled: false,
			NATSURL: "nats://localhost:4222",
			Subject: "imageforge.errors",
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    "imageforge-errors.db",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9464",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
