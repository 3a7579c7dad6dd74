// Package config centralizes all agent configuration into typed structs.
//
// Go Learning Note — Layered Configuration:
// Settings are resolved in layers, each overriding the previous one:
//  1. NewDefaultConfig() struct literal
//  2. an optional YAML file ("gopkg.in/yaml.v3")
//  3. a .env file loaded into the process environment ("github.com/joho/godotenv")
//  4. SMALLBASKET_* environment variables ("github.com/joeshaw/envdecode")
//
// Typed structs (not raw strings/maps) still give compile-time safety at every
// call site; the layers only decide which values end up in them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration container.
type Config struct {
	// DataDir holds the file-backed stores. Empty means <user config dir>/smallbasket.
	DataDir       string              `yaml:"data_dir" env:"SMALLBASKET_DATA_DIR"`
	API           APIConfig           `yaml:"api"`
	Auth          AuthConfig          `yaml:"auth"`
	Device        DeviceConfig        `yaml:"device"`
	Connectivity  ConnectivityConfig  `yaml:"connectivity"`
	Location      LocationConfig      `yaml:"location"`
	Map           MapConfig           `yaml:"map"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Server        ServerConfig        `yaml:"server"`
	Log           LogConfig           `yaml:"log"`
}

// APIConfig points at the SmallBasket backend.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" env:"SMALLBASKET_API_URL"`
	Timeout   time.Duration `yaml:"timeout" env:"SMALLBASKET_API_TIMEOUT"`
	UserAgent string        `yaml:"user_agent" env:"SMALLBASKET_USER_AGENT"`
}

// AuthConfig tells the agent where the signed-in user's ID token lives.
// Token wins over TokenFile when both are set.
type AuthConfig struct {
	Token     string `yaml:"token" env:"SMALLBASKET_TOKEN"`
	TokenFile string `yaml:"token_file" env:"SMALLBASKET_TOKEN_FILE"`
}

// DeviceConfig overrides what the host reports about itself.
type DeviceConfig struct {
	ID         string `yaml:"id" env:"SMALLBASKET_DEVICE_ID"`
	Model      string `yaml:"model" env:"SMALLBASKET_DEVICE_MODEL"`
	AppVersion string `yaml:"app_version" env:"SMALLBASKET_APP_VERSION"`
}

// ConnectivityConfig controls the connectivity status manager.
//
// Go Learning Note — time.Duration:
// yaml.v3 and envdecode both understand strings such as "30s" or "3m" for
// time.Duration fields, so the file and the environment stay readable.
type ConnectivityConfig struct {
	Tick            time.Duration `yaml:"tick" env:"SMALLBASKET_CONNECTIVITY_TICK"`
	OnlineInterval  time.Duration `yaml:"online_interval" env:"SMALLBASKET_CONNECTIVITY_ONLINE_INTERVAL"`
	OfflineInterval time.Duration `yaml:"offline_interval" env:"SMALLBASKET_CONNECTIVITY_OFFLINE_INTERVAL"`
	ErrorBackoff    time.Duration `yaml:"error_backoff"`
	WatchInterval   time.Duration `yaml:"watch_interval"`
	AvailableDelay  time.Duration `yaml:"available_delay"`
	ValidatedDelay  time.Duration `yaml:"validated_delay"`
	ProbeTimeout    time.Duration `yaml:"probe_timeout"`
	StopTimeout     time.Duration `yaml:"stop_timeout"`
}

// LocationConfig controls the background location sync worker.
type LocationConfig struct {
	TrackingEnabled   bool          `yaml:"tracking_enabled" env:"SMALLBASKET_TRACKING_ENABLED"`
	PermissionGranted bool          `yaml:"permission_granted" env:"SMALLBASKET_LOCATION_PERMISSION"`
	Source            string        `yaml:"source" env:"SMALLBASKET_LOCATION_SOURCE"` // "static" or "file"
	File              string        `yaml:"file" env:"SMALLBASKET_LOCATION_FILE"`
	Latitude          float64       `yaml:"latitude" env:"SMALLBASKET_LATITUDE"`
	Longitude         float64       `yaml:"longitude" env:"SMALLBASKET_LONGITUDE"`
	Accuracy          float64       `yaml:"accuracy"`
	Schedule          string        `yaml:"schedule" env:"SMALLBASKET_LOCATION_SCHEDULE"`
	InitDelay         time.Duration `yaml:"init_delay"`
	CacheMaxAge       time.Duration `yaml:"cache_max_age"`
	FixTimeout        time.Duration `yaml:"fix_timeout"`
	MaxAttempts       int           `yaml:"max_attempts"`
	BaseBackoff       time.Duration `yaml:"base_backoff"`
	RetryBackoff      time.Duration `yaml:"retry_backoff"`
	MaxRetryBackoff   time.Duration `yaml:"max_retry_backoff"`
}

// MapConfig controls map and reachability lookups.
type MapConfig struct {
	NearbyRadiusMeters float64       `yaml:"nearby_radius_meters"`
	ReachableEvery     time.Duration `yaml:"reachable_every" env:"SMALLBASKET_REACHABLE_EVERY"`
	ReachableBurst     int           `yaml:"reachable_burst"`
}

// NotificationsConfig selects where the notification history lives.
type NotificationsConfig struct {
	Store     string `yaml:"store" env:"SMALLBASKET_NOTIFICATION_STORE"` // "file", "memory" or "redis"
	MaxItems  int    `yaml:"max_items"`
	RedisAddr string `yaml:"redis_addr" env:"SMALLBASKET_REDIS_ADDR"`
	RedisKey  string `yaml:"redis_key"`
}

// ServerConfig holds the local control API settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"SMALLBASKET_CONTROL_ADDR"`
	ControlToken string        `yaml:"control_token" env:"SMALLBASKET_CONTROL_TOKEN"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	StartupDelay time.Duration `yaml:"startup_delay"`
}

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string `yaml:"level" env:"SMALLBASKET_LOG_LEVEL"`
	Format string `yaml:"format" env:"SMALLBASKET_LOG_FORMAT"` // "text" or "json"
}

// NewDefaultConfig returns a Config populated with the agent's defaults.
func NewDefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://smallbasket-backend.onrender.com/",
			Timeout:   15 * time.Second,
			UserAgent: "smallbasket-agent",
		},
		Connectivity: ConnectivityConfig{
			Tick:            30 * time.Second,
			OnlineInterval:  3 * time.Minute,
			OfflineInterval: 30 * time.Second,
			ErrorBackoff:    60 * time.Second,
			WatchInterval:   5 * time.Second,
			AvailableDelay:  2 * time.Second,
			ValidatedDelay:  1 * time.Second,
			ProbeTimeout:    3 * time.Second,
			StopTimeout:     5 * time.Second,
		},
		Location: LocationConfig{
			TrackingEnabled:   true,
			PermissionGranted: true,
			Source:            "static",
			Schedule:          "@every 15m",
			InitDelay:         2 * time.Second,
			CacheMaxAge:       10 * time.Minute,
			FixTimeout:        5 * time.Second,
			MaxAttempts:       3,
			BaseBackoff:       1 * time.Second,
			RetryBackoff:      30 * time.Second,
			MaxRetryBackoff:   5 * time.Minute,
		},
		Map: MapConfig{
			NearbyRadiusMeters: 5000,
			ReachableEvery:     5 * time.Second,
			ReachableBurst:     2,
		},
		Notifications: NotificationsConfig{
			Store:    "file",
			MaxItems: 100,
			RedisKey: "smallbasket:notifications",
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8765",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			StartupDelay: 3 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load resolves the configuration from defaults, an optional YAML file, an
// optional .env file in the working directory, and the environment.
// An empty path skips the YAML layer; a missing .env file is not an error.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	_ = godotenv.Load()

	// envdecode reports ErrNoTargetFieldsAreSet when no variable is present,
	// which just means the environment adds nothing.
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the agent cannot run with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("config: api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return errors.New("config: api.timeout must be positive")
	}
	if c.Connectivity.Tick <= 0 || c.Connectivity.OnlineInterval <= 0 || c.Connectivity.OfflineInterval <= 0 {
		return errors.New("config: connectivity intervals must be positive")
	}
	if c.Connectivity.WatchInterval <= 0 || c.Connectivity.ErrorBackoff <= 0 {
		return errors.New("config: connectivity watch interval and error backoff must be positive")
	}
	if c.Location.BaseBackoff <= 0 || c.Location.RetryBackoff <= 0 || c.Location.MaxRetryBackoff <= 0 {
		return errors.New("config: location backoffs must be positive")
	}
	if c.Location.MaxAttempts <= 0 {
		return errors.New("config: location.max_attempts must be positive")
	}
	if c.Map.ReachableEvery <= 0 || c.Map.ReachableBurst <= 0 {
		return errors.New("config: map reachable rate limit must be positive")
	}
	if c.Notifications.MaxItems <= 0 {
		return errors.New("config: notifications.max_items must be positive")
	}
	switch c.Notifications.Store {
	case "file", "memory", "redis":
	default:
		return fmt.Errorf("config: unknown notifications.store %q", c.Notifications.Store)
	}
	return nil
}

// ResolveDataDir returns DataDir, falling back to the user config directory.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}
	return filepath.Join(base, "smallbasket"), nil
}
