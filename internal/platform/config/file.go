package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"kiosk-signage/internal/catalog"
	"kiosk-signage/internal/layout"
	"kiosk-signage/internal/rotation"
)

// Server holds listener and logging settings.
type Server struct {
	Port      string `toml:"port"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Media locates and classifies the media library.
type Media struct {
	Root            string   `toml:"media_root"`
	Folder          string   `toml:"folder"`
	ImageExtensions []string `toml:"image_extensions"`
	VideoExtensions []string `toml:"video_extensions"`
	RecentStrategy  string   `toml:"recent_strategy"`
	Watch           bool     `toml:"watch"`
}

// Dir returns the directory that holds the media files.
func (m Media) Dir() string {
	return filepath.Join(m.Root, m.Folder)
}

// Display controls rounds and the browser adapter.
type Display struct {
	RefreshSeconds    int      `toml:"refresh_seconds"`
	MirrorVideos      bool     `toml:"mirror_videos"`
	RequireAtLeast    int      `toml:"require_at_least"`
	StaticCenterImage string   `toml:"static_center_image"`
	Policy            string   `toml:"policy"`
	Slots             []string `toml:"slots"`
	Overflow          string   `toml:"overflow"`
	// SessionTTLSeconds of 0 means ten refresh intervals.
	SessionTTLSeconds int `toml:"session_ttl_seconds"`
}

// Config is the complete kiosk configuration.
type Config struct {
	Server  Server  `toml:"server"`
	Media   Media   `toml:"media"`
	Display Display `toml:"display"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Port:      "3000",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Media: Media{
			Root:           ".",
			Folder:         "media",
			RecentStrategy: string(catalog.StrategyBirthTime),
			Watch:          true,
		},
		Display: Display{
			RefreshSeconds: 60,
			RequireAtLeast: 10,
			Policy:         string(rotation.PolicyFresh),
			Overflow:       string(layout.OverflowDrop),
		},
	}
}

// Resolve builds the effective configuration: defaults, then the TOML file
// at path (skipped when path is empty), then environment overrides. The
// result is validated.
func Resolve(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) decodeFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	dec := toml.NewDecoder(file)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables that are set.
func (c *Config) ApplyEnv() {
	c.Server.Port = GetEnv("PORT", c.Server.Port)
	c.Server.LogLevel = GetEnv("LOG_LEVEL", c.Server.LogLevel)
	c.Server.LogFormat = GetEnv("LOG_FORMAT", c.Server.LogFormat)

	c.Media.Root = GetEnv("MEDIA_ROOT", c.Media.Root)
	c.Media.Folder = GetEnv("MEDIA_FOLDER", c.Media.Folder)
	c.Media.RecentStrategy = GetEnv("RECENT_STRATEGY", c.Media.RecentStrategy)
	c.Media.Watch = GetEnvBool("WATCH_MEDIA", c.Media.Watch)

	c.Display.RefreshSeconds = GetEnvInt("REFRESH_SECONDS", c.Display.RefreshSeconds)
	c.Display.MirrorVideos = GetEnvBool("MIRROR_VIDEOS", c.Display.MirrorVideos)
	c.Display.RequireAtLeast = GetEnvInt("REQUIRE_AT_LEAST", c.Display.RequireAtLeast)
	c.Display.StaticCenterImage = GetEnv("STATIC_CENTER_IMAGE", c.Display.StaticCenterImage)
	c.Display.Policy = GetEnv("ROTATION_POLICY", c.Display.Policy)
	c.Display.Overflow = GetEnv("LAYOUT_OVERFLOW", c.Display.Overflow)
	c.Display.SessionTTLSeconds = GetEnvInt("SESSION_TTL_SECONDS", c.Display.SessionTTLSeconds)
}

func (c *Config) normalize() {
	c.Server.Port = strings.TrimPrefix(strings.TrimSpace(c.Server.Port), ":")
	c.Server.LogFormat = strings.ToLower(strings.TrimSpace(c.Server.LogFormat))
	c.Media.Root = strings.TrimSpace(c.Media.Root)
	c.Media.Folder = strings.TrimSpace(c.Media.Folder)
	c.Display.StaticCenterImage = strings.TrimSpace(c.Display.StaticCenterImage)
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if n, err := strconv.Atoi(c.Server.Port); err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("server.port %q must be a number between 1 and 65535", c.Server.Port)
	}
	switch c.Server.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("server.log_format %q must be json or text", c.Server.LogFormat)
	}
	if c.Media.Root == "" {
		return errors.New("media.media_root must be set")
	}
	if _, err := catalog.ParseStrategy(c.Media.RecentStrategy); err != nil {
		return fmt.Errorf("media.recent_strategy: %w", err)
	}
	if c.Display.RefreshSeconds <= 0 {
		return errors.New("display.refresh_seconds must be positive")
	}
	if c.Display.RequireAtLeast < 0 {
		return errors.New("display.require_at_least must not be negative")
	}
	if c.Display.SessionTTLSeconds < 0 {
		return errors.New("display.session_ttl_seconds must not be negative")
	}
	if _, err := rotation.ParsePolicy(c.Display.Policy); err != nil {
		return fmt.Errorf("display.policy: %w", err)
	}
	if _, err := layout.ParseOverflow(c.Display.Overflow); err != nil {
		return fmt.Errorf("display.overflow: %w", err)
	}
	if _, err := layout.ParseSlots(c.Display.Slots); err != nil {
		return fmt.Errorf("display.slots: %w", err)
	}
	return nil
}

// RefreshInterval returns the display refresh period.
func (d Display) RefreshInterval() time.Duration {
	return time.Duration(d.RefreshSeconds) * time.Second
}

// SessionTTL returns how long an idle display session is kept.
func (d Display) SessionTTL() time.Duration {
	if d.SessionTTLSeconds > 0 {
		return time.Duration(d.SessionTTLSeconds) * time.Second
	}
	return 10 * d.RefreshInterval()
}
