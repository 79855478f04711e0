package config

import (
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string `mapstructure:"APP_ENV"` // development | production

	// Store
	DataDir        string `mapstructure:"DATA_DIR"`
	StoreNamespace string `mapstructure:"STORE_NAMESPACE"`

	// Inventory
	LowStockThreshold int `mapstructure:"LOW_STOCK_THRESHOLD"`

	// Seed account (dev/demo only — see cmd/seeduser)
	SeedUserEmail    string `mapstructure:"SEED_USER_EMAIL"`
	SeedUserPassword string `mapstructure:"SEED_USER_PASSWORD"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for development
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("STORE_NAMESPACE", "zenith")
	viper.SetDefault("LOW_STOCK_THRESHOLD", 10)
	viper.SetDefault("SEED_USER_EMAIL", "admin@zenith.local")
	viper.SetDefault("SEED_USER_PASSWORD", "changeme")

	// Optional .env file for local development — does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
