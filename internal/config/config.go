// Package config loads handsphere settings from an optional JSON file in the
// config directory, environment overrides and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "handsphere.cfg.json"

// EnvPrefix prefixes environment overrides, e.g. HANDSPHERE_SERVER_ADDR.
const EnvPrefix = "HANDSPHERE"

type ServerConfig struct {
	Addr      string `json:"addr" mapstructure:"addr"`
	StaticDir string `json:"staticDir" mapstructure:"staticDir"`
}

type CameraConfig struct {
	DeviceID int  `json:"deviceId" mapstructure:"deviceId"`
	Width    int  `json:"width" mapstructure:"width"`
	Height   int  `json:"height" mapstructure:"height"`
	Mirror   bool `json:"mirror" mapstructure:"mirror"`
}

// TrackerConfig controls how often frames are pulled from the camera.
type TrackerConfig struct {
	Enabled     bool          `json:"enabled" mapstructure:"enabled"`
	IdleFPS     int           `json:"idleFps" mapstructure:"idleFps"`
	ActiveFPS   int           `json:"activeFps" mapstructure:"activeFps"`
	IdleTimeout time.Duration `json:"idleTimeout" mapstructure:"idleTimeout"`
	// WakeThreshold is the percentage of changed pixels that makes an idle
	// tracker run hand detection.
	WakeThreshold float64 `json:"wakeThreshold" mapstructure:"wakeThreshold"`
}

type RenderConfig struct {
	FPS int `json:"fps" mapstructure:"fps"`
}

type SphereConfig struct {
	Radius float64 `json:"radius" mapstructure:"radius"`
}

type GalleryConfig struct {
	MaxImages int `json:"maxImages" mapstructure:"maxImages"`
	ImageSize int `json:"imageSize" mapstructure:"imageSize"`
}

type StoreConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

type DetectorConfig struct {
	MinConfidence   float64 `json:"minConfidence" mapstructure:"minConfidence"`
	MinTrackingConf float64 `json:"minTrackingConf" mapstructure:"minTrackingConf"`
}

type TrayConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// HooksConfig locates the external programs run on gesture events.
type HooksConfig struct {
	Dir     string        `json:"dir" mapstructure:"dir"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// Config is the fully resolved configuration.
type Config struct {
	Dir      string         `json:"-" mapstructure:"-"`
	LogLevel string         `json:"logLevel" mapstructure:"logLevel"`
	LogsDir  string         `json:"logsDir" mapstructure:"logsDir"`
	Server   ServerConfig   `json:"server" mapstructure:"server"`
	Camera   CameraConfig   `json:"camera" mapstructure:"camera"`
	Tracker  TrackerConfig  `json:"tracker" mapstructure:"tracker"`
	Render   RenderConfig   `json:"render" mapstructure:"render"`
	Sphere   SphereConfig   `json:"sphere" mapstructure:"sphere"`
	Gallery  GalleryConfig  `json:"gallery" mapstructure:"gallery"`
	Store    StoreConfig    `json:"store" mapstructure:"store"`
	Detector DetectorConfig `json:"detector" mapstructure:"detector"`
	Tray     TrayConfig     `json:"tray" mapstructure:"tray"`
	Hooks    HooksConfig    `json:"hooks" mapstructure:"hooks"`
}

// DefaultDir returns ~/.handsphere, or .handsphere when the home directory
// cannot be determined.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".handsphere"
	}
	return filepath.Join(home, ".handsphere")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logsDir", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.staticDir", "")

	v.SetDefault("camera.deviceId", 0)
	v.SetDefault("camera.width", 640)
	v.SetDefault("camera.height", 480)
	v.SetDefault("camera.mirror", false)

	v.SetDefault("tracker.enabled", true)
	v.SetDefault("tracker.idleFps", 5)
	v.SetDefault("tracker.activeFps", 30)
	v.SetDefault("tracker.idleTimeout", "2s")
	v.SetDefault("tracker.wakeThreshold", 1.0)

	v.SetDefault("render.fps", 60)

	v.SetDefault("sphere.radius", 5.0)

	v.SetDefault("gallery.maxImages", 100)
	v.SetDefault("gallery.imageSize", 512)

	v.SetDefault("store.path", "")

	v.SetDefault("detector.minConfidence", 0.5)
	v.SetDefault("detector.minTrackingConf", 0.5)

	v.SetDefault("tray.enabled", false)

	v.SetDefault("hooks.dir", "")
	v.SetDefault("hooks.timeout", "5s")
}

// Load reads FileName from dir if it exists and resolves the configuration.
// A missing file is not an error; a malformed one is.
func Load(dir string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(FileName)
	v.SetConfigType("json")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Dir = dir
	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(dir, "handsphere.db")
	}
	if cfg.LogsDir == "" {
		cfg.LogsDir = filepath.Join(dir, "logs")
	}
	if cfg.Hooks.Dir == "" {
		cfg.Hooks.Dir = filepath.Join(dir, "hooks")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Tracker.IdleFPS <= 0 || c.Tracker.ActiveFPS <= 0:
		return fmt.Errorf("tracker fps must be positive (idle %d, active %d)", c.Tracker.IdleFPS, c.Tracker.ActiveFPS)
	case c.Render.FPS <= 0:
		return fmt.Errorf("render fps must be positive, got %d", c.Render.FPS)
	case !(c.Sphere.Radius > 0):
		return fmt.Errorf("sphere radius must be positive, got %v", c.Sphere.Radius)
	case c.Gallery.MaxImages <= 0 || c.Gallery.ImageSize <= 0:
		return fmt.Errorf("gallery limits must be positive (maxImages %d, imageSize %d)", c.Gallery.MaxImages, c.Gallery.ImageSize)
	case c.Hooks.Timeout <= 0:
		return fmt.Errorf("hook timeout must be positive, got %v", c.Hooks.Timeout)
	}
	return nil
}
