package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/prismanotify/prismanotify/internal/evaluator"
)

// Environment variables holding the API endpoint and credentials.
const (
	EnvEndpoint  = "PRISMA_API_ENDPOINT"
	EnvAccessKey = "PRISMA_ACCESS_KEY"
	EnvSecretKey = "PRISMA_SECRET_KEY"
)

// MissingEnvError reports a required environment variable that is unset or empty.
type MissingEnvError struct {
	Name string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("environment variable %s is not defined", e.Name)
}

// DefaultPath returns $XDG_CONFIG_HOME/prismanotify/settings.yaml, falling
// back to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "settings.yaml"
	}
	return filepath.Join(dir, "prismanotify", "settings.yaml")
}

// Default returns the configuration used when no settings file exists
func Default() *Config {
	return &Config{
		API: APIConfig{
			Timeout: 30 * time.Second,
		},
		State: StateConfig{
			Path:      "config.json",
			Retention: evaluator.RetentionAccumulate,
		},
		Notify: NotifyConfig{
			Desktop: true,
			Icon:    "alert",
			AppName: "prisma-cloud",
			Sticky:  true,
			Urgency: "critical",
			Apprise: AppriseConfig{Type: "warning"},
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// LoadConfig loads the settings file at path on top of Default. A missing
// file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing settings file %s: %w", path, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// ApplyEnv reads the endpoint and credentials through lookup (normally
// os.LookupEnv). The first missing variable is reported as *MissingEnvError.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	values := make(map[string]string, 3)
	for _, name := range []string{EnvEndpoint, EnvAccessKey, EnvSecretKey} {
		v, ok := lookup(name)
		if !ok || strings.TrimSpace(v) == "" {
			return &MissingEnvError{Name: name}
		}
		values[name] = strings.TrimSpace(v)
	}

	endpoint := strings.TrimRight(values[EnvEndpoint], "/")
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", EnvEndpoint, values[EnvEndpoint])
	}

	c.Environment = Environment{
		Endpoint:  endpoint,
		AccessKey: values[EnvAccessKey],
		SecretKey: values[EnvSecretKey],
	}
	return nil
}

// ValidateConfig validates the configuration
func ValidateConfig(cfg *Config) error {
	var errs []string

	if cfg.API.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("api.timeout must not be negative, got %s", cfg.API.Timeout))
	}

	if cfg.State.Path == "" {
		errs = append(errs, "state.path is required")
	}
	if cfg.State.Retention != evaluator.RetentionAccumulate && cfg.State.Retention != evaluator.RetentionReplace {
		errs = append(errs, fmt.Sprintf("state.retention must be 'accumulate' or 'replace', got %q", cfg.State.Retention))
	}

	switch cfg.Notify.Urgency {
	case "low", "normal", "critical":
	default:
		errs = append(errs, fmt.Sprintf("notify.urgency must be 'low', 'normal' or 'critical', got %q", cfg.Notify.Urgency))
	}
	if cfg.Notify.Apprise.URL != "" {
		if cfg.Notify.Apprise.Key == "" {
			errs = append(errs, "notify.apprise.key is required when notify.apprise.url is set")
		}
		switch cfg.Notify.Apprise.Type {
		case "info", "success", "warning", "failure":
		default:
			errs = append(errs, fmt.Sprintf("notify.apprise.type must be 'info', 'success', 'warning' or 'failure', got %q", cfg.Notify.Apprise.Type))
		}
	}

	if cfg.Log.Format != "json" && cfg.Log.Format != "console" {
		errs = append(errs, fmt.Sprintf("log.format must be 'json' or 'console', got %q", cfg.Log.Format))
	}
	if cfg.Log.File != "" && cfg.Log.MaxSizeMB < 1 {
		errs = append(errs, fmt.Sprintf("log.max_size_mb must be positive, got %d", cfg.Log.MaxSizeMB))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
