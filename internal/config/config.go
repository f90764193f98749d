// Package config provides configuration for the kiosk commands.
// Settings come from an optional YAML file with environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for the kiosk.
const (
	DefaultServerURL   = "http://localhost:5000"
	DefaultUIPort      = 8090
	DefaultDeviceID    = 0
	DefaultWidth       = 640
	DefaultHeight      = 480
	DefaultFacingMode  = "user"
	DefaultJPEGQuality = 95
)

// DefaultRedirectDelayMS is how long, in milliseconds, a successful
// verification waits before navigating away from the verify screen.
const DefaultRedirectDelayMS = 1500

// Config holds all kiosk settings.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Camera CameraConfig `yaml:"camera"`
	UI     UIConfig     `yaml:"ui"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig describes the remote biometric service.
type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
}

// CameraConfig describes the capture device and constraints.
type CameraConfig struct {
	DeviceID    int    `yaml:"device_id"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	FacingMode  string `yaml:"facing_mode"`
	JPEGQuality int    `yaml:"jpeg_quality"`
}

// UIConfig describes the local dashboard server.
type UIConfig struct {
	Port int `yaml:"port"`

	// RedirectDelayMS is the post-verification navigation delay in
	// milliseconds. yaml.v3 has no native duration syntax.
	RedirectDelayMS int `yaml:"redirect_delay_ms"`
}

// RedirectDelay returns the navigation delay as a duration.
func (u UIConfig) RedirectDelay() time.Duration {
	return time.Duration(u.RedirectDelayMS) * time.Millisecond
}

// LogConfig describes logging behaviour.
type LogConfig struct {
	Level string `yaml:"level"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{BaseURL: DefaultServerURL},
		Camera: CameraConfig{
			DeviceID:    DefaultDeviceID,
			Width:       DefaultWidth,
			Height:      DefaultHeight,
			FacingMode:  DefaultFacingMode,
			JPEGQuality: DefaultJPEGQuality,
		},
		UI: UIConfig{
			Port:            DefaultUIPort,
			RedirectDelayMS: DefaultRedirectDelayMS,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path and applies environment overrides.
// A missing file is not an error; defaults are used.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the config.
// Only the settings an operator commonly changes are exposed.
func (c *Config) applyEnv() {
	if v := os.Getenv("KIOSK_SERVER_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("KIOSK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("config: server.base_url is required")
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("config: camera dimensions must be positive, got %dx%d",
			c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.JPEGQuality < 1 || c.Camera.JPEGQuality > 100 {
		return fmt.Errorf("config: jpeg_quality must be 1-100, got %d", c.Camera.JPEGQuality)
	}
	return nil
}
