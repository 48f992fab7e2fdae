package config

import (
	"errors"
	"fmt"
)

// Config is the root configuration for the service.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	Verbose  bool   `mapstructure:"verbose"`

	Server    ServerConfig    `mapstructure:"server"`
	Translate TranslateConfig `mapstructure:"translate"`
}

// ServerConfig holds HTTP server and rate-limiting settings.
type ServerConfig struct {
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	CORSOrigin       string `mapstructure:"cors_origin"`
	MaxUploadMB      int64  `mapstructure:"max_upload_mb"`
	TimeoutSec       int    `mapstructure:"timeout_sec"`
	ShutdownTimeout  int    `mapstructure:"shutdown_timeout"`
	CooldownSec      int    `mapstructure:"cooldown_sec"`
	SweepIntervalSec int    `mapstructure:"sweep_interval_sec"`
}

// TranslateConfig holds the settings for the translation backends.
type TranslateConfig struct {
	TargetLanguage string  `mapstructure:"target_language"`
	Model          string  `mapstructure:"model"`
	Temperature    float32 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Verbose:  false,
		Server: ServerConfig{
			Host:             "localhost",
			Port:             8080,
			CORSOrigin:       "*",
			MaxUploadMB:      10,
			TimeoutSec:       60,
			ShutdownTimeout:  10,
			CooldownSec:      60,
			SweepIntervalSec: 300,
		},
		Translate: TranslateConfig{
			TargetLanguage: "en",
			Model:          "gpt-4o",
			Temperature:    0.3,
			MaxTokens:      2000,
		},
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("invalid max upload size: %d MB", c.Server.MaxUploadMB)
	}
	if c.Server.CooldownSec < 1 {
		return fmt.Errorf("invalid cooldown: %d seconds", c.Server.CooldownSec)
	}
	if c.Server.SweepIntervalSec < 1 {
		return fmt.Errorf("invalid sweep interval: %d seconds", c.Server.SweepIntervalSec)
	}
	if c.Translate.TargetLanguage == "" {
		return errors.New("target language must not be empty")
	}
	if c.Translate.Temperature < 0 || c.Translate.Temperature > 2 {
		return fmt.Errorf("invalid temperature: %v (must be between 0 and 2)", c.Translate.Temperature)
	}
	if c.Translate.MaxTokens < 1 {
		return fmt.Errorf("invalid max tokens: %d", c.Translate.MaxTokens)
	}
	return nil
}
