package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "pauseonlock"

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrUnsupportedFormat  = errors.New("unsupported config file format")
)

// Config represents the application configuration
type Config struct {
	Player  PlayerConfig  `json:"player"`
	Session SessionConfig `json:"session"`
	Journal JournalConfig `json:"journal"`
	Log     LogConfig     `json:"log"`
}

// PlayerConfig selects and configures the player backend
type PlayerConfig struct {
	Backend            string      `json:"backend"` // "mpris" or "mpd"
	CallTimeoutSeconds int         `json:"call_timeout_seconds"`
	MPRIS              MPRISConfig `json:"mpris"`
	MPD                MPDConfig   `json:"mpd"`
}

// MPRISConfig contains MPRIS settings
type MPRISConfig struct {
	Instance string `json:"instance"` // e.g. "spotify"; empty = first player found
}

// MPDConfig contains MPD connection settings
type MPDConfig struct {
	Network  string `json:"network"` // "tcp" or "unix"
	Address  string `json:"address"`
	Password string `json:"password"`
}

// SessionConfig selects the session notification source
type SessionConfig struct {
	Source string `json:"source"` // "wts", "logind", "screensaver", "signal"; empty = platform default
}

// JournalConfig controls the transition journal
type JournalConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json or text
	Path   string `json:"path"`   // empty = stdout
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	backend := "mpd"
	if runtime.GOOS == "linux" {
		backend = "mpris"
	}

	return &Config{
		Player: PlayerConfig{
			Backend:            backend,
			CallTimeoutSeconds: 5,
			MPD: MPDConfig{
				Network: "tcp",
				Address: "localhost:6600",
			},
		},
		Journal: JournalConfig{
			Path: DefaultJournalPath(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultPath returns the config file location under the XDG config home
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.json")
}

// DefaultJournalPath returns the journal location under the XDG data home
func DefaultJournalPath() string {
	return filepath.Join(xdg.DataHome, appName, "journal.db")
}

// CallTimeout returns the per-call player timeout
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.Player.CallTimeoutSeconds) * time.Second
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Player.Backend {
	case "mpris", "mpd":
	default:
		return fmt.Errorf("%w: unknown player backend %q", ErrInvalidConfig, c.Player.Backend)
	}

	if c.Player.CallTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: call timeout must be positive", ErrInvalidConfig)
	}

	if c.Player.Backend == "mpd" {
		if c.Player.MPD.Network != "tcp" && c.Player.MPD.Network != "unix" {
			return fmt.Errorf("%w: mpd network must be tcp or unix", ErrInvalidConfig)
		}
		if c.Player.MPD.Address == "" {
			return fmt.Errorf("%w: mpd address is required", ErrInvalidConfig)
		}
	}

	switch c.Session.Source {
	case "", "wts", "logind", "screensaver", "signal":
	default:
		return fmt.Errorf("%w: unknown session source %q", ErrInvalidConfig, c.Session.Source)
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("%w: journal path is required when the journal is enabled", ErrInvalidConfig)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: invalid log level %q", ErrInvalidConfig, c.Log.Level)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("%w: log format must be json or text", ErrInvalidConfig)
	}

	return nil
}

// Load loads configuration from a JSON or TOML file on top of the defaults
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigFileNotFound
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	config := DefaultConfig()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".toml":
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		if err := k.UnmarshalWithConf("", config, koanf.UnmarshalConf{Tag: "json"}); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadOrDefault loads path, or the default path when path is empty. A
// missing default file yields the default configuration.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	config, err := Load(DefaultPath())
	if errors.Is(err, ErrConfigFileNotFound) {
		return DefaultConfig(), nil
	}
	return config, err
}

// ApplyEnv overrides fields from PAUSEONLOCK_* environment variables
// and re-validates
func (c *Config) ApplyEnv() error {
	c.Player.Backend = getEnv("PAUSEONLOCK_PLAYER", c.Player.Backend)
	c.Player.CallTimeoutSeconds = getEnvInt("PAUSEONLOCK_CALL_TIMEOUT", c.Player.CallTimeoutSeconds)
	c.Player.MPRIS.Instance = getEnv("PAUSEONLOCK_MPRIS_INSTANCE", c.Player.MPRIS.Instance)
	c.Player.MPD.Network = getEnv("PAUSEONLOCK_MPD_NETWORK", c.Player.MPD.Network)
	c.Player.MPD.Address = getEnv("PAUSEONLOCK_MPD_ADDRESS", c.Player.MPD.Address)
	c.Player.MPD.Password = getEnv("PAUSEONLOCK_MPD_PASSWORD", c.Player.MPD.Password)
	c.Session.Source = getEnv("PAUSEONLOCK_SESSION_SOURCE", c.Session.Source)
	c.Journal.Enabled = getEnvBool("PAUSEONLOCK_JOURNAL_ENABLED", c.Journal.Enabled)
	if path := os.Getenv("PAUSEONLOCK_JOURNAL_PATH"); path != "" {
		c.Journal.Path = path
		c.Journal.Enabled = true
	}
	c.Log.Level = getEnv("PAUSEONLOCK_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("PAUSEONLOCK_LOG_FORMAT", c.Log.Format)
	c.Log.Path = getEnv("PAUSEONLOCK_LOG_PATH", c.Log.Path)

	return c.Validate()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		fmt.Sscanf(value, "%d", &intVal)
		return intVal
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
