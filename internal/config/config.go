package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sajjad939/safechild-lite/internal/safety"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	LLM      LLMConfig      `mapstructure:"llm"`
	SMS      SMSConfig      `mapstructure:"sms"`
	Database DatabaseConfig `mapstructure:"database"`
	Safety   SafetyConfig   `mapstructure:"safety"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	Mode               string        `mapstructure:"mode"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	MaxRequestBodySize int           `mapstructure:"max_request_body_size"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	AddSource bool   `mapstructure:"add_source"`
}

// LLMConfig configures the external language model.
type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url"` // empty uses the provider default
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Mock        bool          `mapstructure:"mock"` // use canned replies instead of a real provider
}

// SMSConfig configures guardian SMS notifications via Twilio.
type SMSConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	AccountSID string   `mapstructure:"account_sid"`
	AuthToken  string   `mapstructure:"auth_token"`
	From       string   `mapstructure:"from"`
	Guardians  []string `mapstructure:"guardians"` // guardian phone numbers
}

// DatabaseConfig configures the SQLite store for alerts and complaints.
type DatabaseConfig struct {
	Path         string `mapstructure:"path"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// SafetyConfig tunes the safety engine.
type SafetyConfig struct {
	// Rules override the built-in keyword rules when non-empty.
	Rules []safety.KeywordRule `mapstructure:"rules"`
	// HistoryWindow is how many recent messages are sent to the LLM.
	HistoryWindow int `mapstructure:"history_window"`
	// PDFDir is where rendered complaint PDFs are written.
	PDFDir string `mapstructure:"pdf_dir"`
}

// Load reads and validates the configuration file.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SAFECHILD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Note: don't log here, the logger is initialized after config load.

	return &cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server mode: %s, must be 'debug' or 'release'", c.Server.Mode)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s, must be 'json' or 'text'", c.Log.Format)
	}

	if !c.LLM.Mock {
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required unless llm.mock is set")
		}
		if c.LLM.Model == "" {
			return fmt.Errorf("llm.model is required unless llm.mock is set")
		}
	}

	if c.SMS.Enabled {
		if c.SMS.AccountSID == "" || c.SMS.AuthToken == "" {
			return fmt.Errorf("sms.account_sid and sms.auth_token are required when sms is enabled")
		}
		if c.SMS.From == "" {
			return fmt.Errorf("sms.from is required when sms is enabled")
		}
		if len(c.SMS.Guardians) == 0 {
			return fmt.Errorf("sms.guardians must list at least one number when sms is enabled")
		}
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	for _, r := range c.Safety.Rules {
		if len(r.Keywords) == 0 {
			return fmt.Errorf("safety rule for category %q has no keywords", r.Category)
		}
	}
	if c.Safety.HistoryWindow < 0 {
		return fmt.Errorf("safety.history_window must not be negative")
	}

	return nil
}

// GetServerAddr returns the listen address.
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetReadTimeout returns the read timeout with a default.
func (c *Config) GetReadTimeout() time.Duration {
	if c.Server.ReadTimeout == 0 {
		return 60 * time.Second
	}
	return c.Server.ReadTimeout
}

// GetWriteTimeout returns the write timeout with a default.
func (c *Config) GetWriteTimeout() time.Duration {
	if c.Server.WriteTimeout == 0 {
		return 60 * time.Second
	}
	return c.Server.WriteTimeout
}

// HistoryWindow returns the configured history window with a default.
func (c *Config) HistoryWindow() int {
	if c.Safety.HistoryWindow == 0 {
		return 10
	}
	return c.Safety.HistoryWindow
}
