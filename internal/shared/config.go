package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Extractor  ExtractorConfig  `toml:"extractor"`
	Matcher    MatcherConfig    `toml:"matcher"`
	Search     SearchConfig     `toml:"search"`
	Downloader DownloaderConfig `toml:"downloader"`
}

// ExtractorConfig contains playlist page fetch settings.
type ExtractorConfig struct {
	UserAgent   string `toml:"user_agent"`
	FixturePath string `toml:"fixture_path"` // local HTML file used instead of a live fetch when set
	HeadersFrom string `toml:"headers_from"` // optional path to a saved cURL command whose headers are replayed
}

// MatcherConfig contains candidate scoring settings.
type MatcherConfig struct {
	Threshold float64 `toml:"threshold"`
}

// SearchConfig contains YouTube search settings.
type SearchConfig struct {
	MaxResults int     `toml:"max_results"`
	RateLimit  float64 `toml:"rate_limit"` // searches per second across the worker pool
	Workers    int     `toml:"workers"`
}

// DownloaderConfig contains audio download settings.
type DownloaderConfig struct {
	Directory string `toml:"directory"`
	Codec     string `toml:"codec"`
	Bitrate   string `toml:"bitrate"`
	Archive   string `toml:"archive"` // ledger of downloaded video IDs, relative to Directory when not absolute
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Decoding starts from [DefaultConfig], so keys omitted from the file keep
// their defaults while explicit values, including zeros, are preserved.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
