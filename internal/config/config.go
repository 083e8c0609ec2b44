package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/workbench/internal/runtimepath"
)

const (
	DefaultCellWidth       = 8
	DefaultCellHeight      = 16
	DefaultIconColumns     = 4
	DefaultFrameIntervalMS = 16
	DefaultFeedReconnect   = 5
	DefaultChainID         = 1
)

// FeedConfig configures the live WebSocket feed.
type FeedConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"ENABLED"`
	URL     string `yaml:"url" envconfig:"URL"`
	// ReconnectSeconds is the pause between dial attempts.
	ReconnectSeconds int `yaml:"reconnect_seconds" envconfig:"RECONNECT_SECONDS"`
}

// AuthConfig configures the Sign-In-With-Ethereum login gate.
type AuthConfig struct {
	Enabled    bool   `yaml:"enabled" envconfig:"ENABLED"`
	APIBaseURL string `yaml:"api_base_url" envconfig:"API_BASE_URL"`
	Address    string `yaml:"address" envconfig:"ADDRESS"`
	ChainID    int    `yaml:"chain_id" envconfig:"CHAIN_ID"`
	// Domain and URI go into the signed message. Both default to values
	// derived from APIBaseURL.
	Domain string `yaml:"domain,omitempty" envconfig:"DOMAIN"`
	URI    string `yaml:"uri,omitempty" envconfig:"URI"`
	// SignerCommand receives the message on stdin and prints the signature.
	SignerCommand string `yaml:"signer_command" envconfig:"SIGNER_COMMAND"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" envconfig:"LEVEL"`
	// File receives desktop logs (default: ~/.local/share/workbench/desktop.log).
	File string `yaml:"file,omitempty" envconfig:"FILE"`
	// Development switches to the console encoder.
	Development bool `yaml:"development,omitempty" envconfig:"DEVELOPMENT"`
}

// Config is the effective workbench configuration.
type Config struct {
	Include []string `yaml:"include,omitempty" ignored:"true"`

	// StateFile is where window state persists. A .cbor extension selects
	// the binary encoding.
	StateFile string `yaml:"state_file,omitempty" envconfig:"STATE_FILE"`

	// Terminal cell size in desktop pixels.
	CellWidth  int `yaml:"cell_width" envconfig:"CELL_WIDTH"`
	CellHeight int `yaml:"cell_height" envconfig:"CELL_HEIGHT"`

	IconColumns     int  `yaml:"icon_columns" envconfig:"ICON_COLUMNS"`
	Sounds          bool `yaml:"sounds" envconfig:"SOUNDS"`
	FrameIntervalMS int  `yaml:"frame_interval_ms" envconfig:"FRAME_INTERVAL_MS"`

	Feed    FeedConfig    `yaml:"feed" envconfig:"FEED"`
	Auth    AuthConfig    `yaml:"auth" envconfig:"AUTH"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOG"`
}

func DefaultConfig() *Config {
	return &Config{
		CellWidth:       DefaultCellWidth,
		CellHeight:      DefaultCellHeight,
		IconColumns:     DefaultIconColumns,
		Sounds:          true,
		FrameIntervalMS: DefaultFrameIntervalMS,
		Feed: FeedConfig{
			Enabled:          false,
			URL:              "ws://localhost:3001",
			ReconnectSeconds: DefaultFeedReconnect,
		},
		Auth: AuthConfig{
			Enabled:    false,
			APIBaseURL: "http://localhost:3000",
			ChainID:    DefaultChainID,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ValidationError points at the offending config key.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.CellWidth <= 0 {
		return &ValidationError{Path: "cell_width", Err: fmt.Errorf("cell_width must be > 0")}
	}
	if c.CellHeight <= 0 {
		return &ValidationError{Path: "cell_height", Err: fmt.Errorf("cell_height must be > 0")}
	}
	if c.IconColumns <= 0 {
		return &ValidationError{Path: "icon_columns", Err: fmt.Errorf("icon_columns must be > 0")}
	}
	if c.FrameIntervalMS <= 0 || c.FrameIntervalMS > 1000 {
		return &ValidationError{Path: "frame_interval_ms", Err: fmt.Errorf("frame_interval_ms must be between 1 and 1000")}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Feed.Enabled {
		if !strings.HasPrefix(c.Feed.URL, "ws://") && !strings.HasPrefix(c.Feed.URL, "wss://") {
			return &ValidationError{Path: "feed.url", Err: fmt.Errorf("url must start with ws:// or wss://")}
		}
		if c.Feed.ReconnectSeconds <= 0 {
			return &ValidationError{Path: "feed.reconnect_seconds", Err: fmt.Errorf("reconnect_seconds must be > 0")}
		}
	}
	if c.Auth.Enabled {
		if !strings.HasPrefix(c.Auth.APIBaseURL, "http://") && !strings.HasPrefix(c.Auth.APIBaseURL, "https://") {
			return &ValidationError{Path: "auth.api_base_url", Err: fmt.Errorf("api_base_url must be an http(s) URL")}
		}
		if strings.TrimSpace(c.Auth.Address) == "" {
			return &ValidationError{Path: "auth.address", Err: fmt.Errorf("address is required when auth is enabled")}
		}
		if c.Auth.ChainID <= 0 {
			return &ValidationError{Path: "auth.chain_id", Err: fmt.Errorf("chain_id must be > 0")}
		}
		if strings.TrimSpace(c.Auth.SignerCommand) == "" {
			return &ValidationError{Path: "auth.signer_command", Err: fmt.Errorf("signer_command is required when auth is enabled")}
		}
	}
	return nil
}

// StatePath resolves the state file, expanding a leading ~/.
func (c *Config) StatePath() (string, error) {
	if c.StateFile == "" {
		return runtimepath.StatePath()
	}
	return expandHome(c.StateFile)
}

// LogPath resolves the desktop log file.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File == "" {
		return runtimepath.LogPath()
	}
	return expandHome(c.Logging.File)
}

// Marshal renders the effective config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	save := *c
	save.Include = nil
	data, err := yaml.Marshal(&save)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
