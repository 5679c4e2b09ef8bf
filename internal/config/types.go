package config

import "time"

// Config represents the complete prismanotify configuration
type Config struct {
	API    APIConfig    `yaml:"api"`
	State  StateConfig  `yaml:"state"`
	Notify NotifyConfig `yaml:"notify"`
	Log    LogConfig    `yaml:"log"`

	// Environment is never read from or written to the settings file.
	Environment Environment `yaml:"-"`
}

// Environment holds the required values supplied through environment variables
type Environment struct {
	Endpoint  string
	AccessKey string
	SecretKey string
}

// APIConfig tunes the HTTP transport
type APIConfig struct {
	// Timeout bounds each request; zero disables the limit.
	Timeout time.Duration `yaml:"timeout"`
}

// StateConfig locates the persisted state document
type StateConfig struct {
	Path      string `yaml:"path"`
	Retention string `yaml:"retention"` // "accumulate" or "replace"
}

// NotifyConfig defines the notification sinks
type NotifyConfig struct {
	Desktop  bool          `yaml:"desktop"`
	Icon     string        `yaml:"icon"`
	AppName  string        `yaml:"app_name"`
	Sticky   bool          `yaml:"sticky"`
	Urgency  string        `yaml:"urgency"` // "low", "normal" or "critical"
	FailFast bool          `yaml:"fail_fast"`
	Apprise  AppriseConfig `yaml:"apprise,omitempty"`
}

// AppriseConfig points at an Apprise API server. Disabled when URL is empty.
type AppriseConfig struct {
	URL  string `yaml:"url"`
	Key  string `yaml:"key"`
	Type string `yaml:"type"` // "info", "success", "warning" or "failure"
}

// LogConfig defines log output
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // "json" or "console"
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}
