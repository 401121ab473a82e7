package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("vigil version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Logging LoggingConfig `mapstructure:"logging"`
	State   StateConfig   `mapstructure:"state"`
	Map     MapConfig     `mapstructure:"map"`
}

// APIConfig describes the pin service the client talks to.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StateConfig locates persisted client state (tokens, display name).
type StateConfig struct {
	Dir string `mapstructure:"dir"`
}

// MapConfig holds the initial camera position used before any fit.
type MapConfig struct {
	CenterLat float64 `mapstructure:"center_lat"`
	CenterLng float64 `mapstructure:"center_lng"`
	Zoom      int     `mapstructure:"zoom"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	Color             bool   `mapstructure:"color"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

// CredentialsPath returns the location of the persisted token file.
func (s *StateConfig) CredentialsPath() string {
	return filepath.Join(s.Dir, "credentials.yaml")
}

// InitFlags initializes command line flags (without parsing)
func InitFlags() {
	pflag.String("api-url", "", "Base URL of the pin service API")
	pflag.String("state-dir", "", "Directory for persisted client state")
	// Note: no pflag.Parse() here as it's called in main.go
}

func Load() (*Config, error) {
	viper.Reset() // Ensure clean state

	viper.SetEnvPrefix("VIGIL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	viper.SetDefault("api.base_url", "http://127.0.0.1:8000/api")
	viper.SetDefault("api.timeout", 30*time.Second)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("map.center_lat", -34.9011)
	viper.SetDefault("map.center_lng", -56.1645)
	viper.SetDefault("map.zoom", 11)

	// Load ./config.yaml first
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/vigil")

	if err := viper.ReadInConfig(); err != nil {
		// The defaults are a full working configuration
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if apiURL := viper.GetString("api-url"); apiURL != "" {
		config.API.BaseURL = apiURL
	}
	if stateDir := viper.GetString("state-dir"); stateDir != "" {
		config.State.Dir = stateDir
	}
	if config.State.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve state dir: %w", err)
		}
		config.State.Dir = filepath.Join(home, ".vigil")
	}

	config.API.BaseURL = strings.TrimRight(config.API.BaseURL, "/")
	if config.API.BaseURL == "" {
		return nil, fmt.Errorf("api.base_url is required, please adjust the config or pass --api-url or VIGIL_API_BASE_URL environment variable")
	}

	return &config, nil
}
