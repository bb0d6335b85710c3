package disk

import (
	"fmt"

	"github.com/deploymenttheory/go-a2fs/internal/types"
	"github.com/spf13/viper"
)

// Config holds settings for reading and extracting disk images
type Config struct {
	CasefoldUpper bool   `mapstructure:"casefold_upper"`
	ProDOSNames   bool   `mapstructure:"prodos_names"`
	ForkMode      string `mapstructure:"fork_mode"`
	MaxDepth      int    `mapstructure:"max_depth"`
	CacheSize     int    `mapstructure:"cache_size"`
}

// Default configuration values
const (
	DefaultMaxDepth  = 64
	DefaultCacheSize = 128
)

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() *Config {
	return &Config{
		ForkMode:  string(types.ForkModeNone),
		MaxDepth:  DefaultMaxDepth,
		CacheSize: DefaultCacheSize,
	}
}

// LoadConfig loads configuration using Viper. Values come from flags bound
// by the caller, A2FS_* environment variables, a2fs-config.yaml and the
// defaults, in that order of precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("a2fs-config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("$HOME/.a2fs")
	viper.AddConfigPath("/etc/a2fs")

	// Set defaults
	viper.SetDefault("casefold_upper", false)
	viper.SetDefault("prodos_names", false)
	viper.SetDefault("fork_mode", string(types.ForkModeNone))
	viper.SetDefault("max_depth", DefaultMaxDepth)
	viper.SetDefault("cache_size", DefaultCacheSize)

	// Allow environment variables
	viper.SetEnvPrefix("A2FS")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the configuration for values the readers cannot use
func (c *Config) Validate() error {
	if _, err := types.ParseForkMode(c.ForkMode); err != nil {
		return err
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1, got %d", c.MaxDepth)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize)
	}
	return nil
}

// Mode returns the parsed fork mode
func (c *Config) Mode() types.ForkMode {
	m, err := types.ParseForkMode(c.ForkMode)
	if err != nil {
		return types.ForkModeNone
	}
	return m
}
