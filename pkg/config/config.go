package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/stakelist/pkg/biglist"
	"github.com/ssargent/stakelist/pkg/codec"
)

// EnvPrefix is the prefix for environment overrides, e.g. STAKELIST_BUFFER_CAPACITY_BYTES.
const EnvPrefix = "STAKELIST"

// Snapshot backends
const (
	BackendPebble = "pebble"
	BackendBolt   = "bolt"
)

// Config represents the stakelist configuration
type Config struct {
	DataDir  string   `yaml:"data_dir" toml:"data_dir" envconfig:"data_dir"`
	Port     int      `yaml:"port" toml:"port" envconfig:"port"`
	Bind     string   `yaml:"bind" toml:"bind" envconfig:"bind"`
	Buffer   Buffer   `yaml:"buffer" toml:"buffer" envconfig:"buffer"`
	Snapshot Snapshot `yaml:"snapshot" toml:"snapshot" envconfig:"snapshot"`
	Security Security `yaml:"security" toml:"security" envconfig:"security"`
	Logging  Logging  `yaml:"logging" toml:"logging" envconfig:"logging"`
}

// Buffer describes the fixed-size file that backs the validator list
type Buffer struct {
	File          string `yaml:"file" toml:"file" envconfig:"file"`
	CapacityBytes int    `yaml:"capacity_bytes" toml:"capacity_bytes" envconfig:"capacity_bytes"`
	HeaderWidth   int    `yaml:"header_width" toml:"header_width" envconfig:"header_width"`
}

// Snapshot selects where buffer snapshots are kept
type Snapshot struct {
	Backend string `yaml:"backend" toml:"backend" envconfig:"backend"`
	Dir     string `yaml:"dir" toml:"dir" envconfig:"dir"`
}

// Security contains security-related configuration
type Security struct {
	APIKey string `yaml:"api_key" toml:"api_key" envconfig:"api_key"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level" toml:"level" envconfig:"level"`
	Format string `yaml:"format" toml:"format" envconfig:"format"`
}

// APIKeyPlaceholder marks a config whose API key has not been generated yet
const APIKeyPlaceholder = "auto"

// ErrNoAPIKey is returned when serving without a bootstrapped API key
var ErrNoAPIKey = errors.New("config: no API key configured, run 'stakelist init'")

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Port:    8080,
		Bind:    "127.0.0.1",
		Buffer: Buffer{
			File:          "validators.buf",
			CapacityBytes: 10 * 1024,
			HeaderWidth:   int(biglist.DefaultHeaderWidth),
		},
		Snapshot: Snapshot{
			Backend: BackendPebble,
			Dir:     "snapshots",
		},
		Security: Security{
			APIKey: APIKeyPlaceholder,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks that the configuration describes a usable buffer and server
func (c *Config) Validate() error {
	width, err := biglist.ParseHeaderWidth(c.Buffer.HeaderWidth)
	if err != nil {
		return fmt.Errorf("invalid buffer header width: %w", err)
	}
	if c.Buffer.CapacityBytes < int(width)+codec.Size {
		return fmt.Errorf("buffer capacity %d bytes cannot hold a single record", c.Buffer.CapacityBytes)
	}
	if c.Buffer.File == "" {
		return fmt.Errorf("buffer file is required")
	}
	switch c.Snapshot.Backend {
	case BackendPebble, BackendBolt:
	default:
		return fmt.Errorf("unknown snapshot backend %q", c.Snapshot.Backend)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// RequireAPIKey fails unless a real API key is configured
func (c *Config) RequireAPIKey() error {
	if c.Security.APIKey == "" || c.Security.APIKey == APIKeyPlaceholder {
		return ErrNoAPIKey
	}
	return nil
}

// HeaderWidth returns the validated buffer header width
func (c *Config) HeaderWidth() biglist.HeaderWidth {
	return biglist.HeaderWidth(c.Buffer.HeaderWidth)
}

// BufferPath resolves the buffer file against the data directory
func (c *Config) BufferPath() string {
	return c.resolve(c.Buffer.File)
}

// SnapshotDir resolves the snapshot directory against the data directory
func (c *Config) SnapshotDir() string {
	return c.resolve(c.Snapshot.Dir)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// LoadConfig loads configuration from the specified path. Files ending in
// .toml are parsed as TOML, everything else as YAML.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if isTOML(configPath) {
		err = toml.Unmarshal(data, config)
	} else {
		err = yaml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides config fields from STAKELIST_* environment variables
func ApplyEnv(config *Config) error {
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return nil
}

// Resolve loads configPath if it exists (defaults otherwise), applies
// environment overrides and validates the result.
func Resolve(configPath string) (*Config, error) {
	config := DefaultConfig()
	if configPath != "" && ConfigExists(configPath) {
		loaded, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	}
	if err := ApplyEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	var err error
	if isTOML(configPath) {
		var sb strings.Builder
		err = toml.NewEncoder(&sb).Encode(config)
		data = []byte(sb.String())
	} else {
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig writes a new configuration with a generated API key
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	apiKey, err := GenerateSecureKey(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate api key: %w", err)
	}
	config.Security.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./stakelist.yaml"
	}
	return filepath.Join(homeDir, ".config", "stakelist", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
