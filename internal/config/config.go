package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig holds the backend connection settings.
type APIConfig struct {
	// BaseURL is the root URL of the sprint-manager backend.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec is the plain HTTP client timeout in seconds.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// Config is the top-level application configuration.
type Config struct {
	API APIConfig `mapstructure:"api" yaml:"api"`

	// Organisation is the fallback used for roster lookups when the
	// session user's profile has none.
	Organisation string `mapstructure:"organisation" yaml:"organisation"`

	// DataDir holds the local client-state database.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`

	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/sprintboard/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "sprintboard", "config.yaml")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "sprintboard")
}

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "http://localhost:8000",
			TimeoutSec: 30,
		},
		Organisation: "Symphonize",
		DataDir:      defaultDataDir(),
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// Load reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout_sec", 30)
	v.SetDefault("organisation", "Symphonize")
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the given configuration to a YAML file at path, creating
// parent directories if needed.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("organisation", cfg.Organisation)
	v.Set("data_dir", cfg.DataDir)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
