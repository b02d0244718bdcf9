// Package clientconfig loads the till settings for posclient from
// posclient.toml and POS_* environment variables.
package clientconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything one device needs to run and sync
type Config struct {
	ServerURL    string        `mapstructure:"server_url"`
	DBPath       string        `mapstructure:"db_path"`
	UserID       string        `mapstructure:"user_id"`
	StoreID      string        `mapstructure:"store_id"`
	Email        string        `mapstructure:"email"`
	Timeout      time.Duration `mapstructure:"timeout"`
	ExpiryWindow time.Duration `mapstructure:"expiry_window"`
	LogLevel     string        `mapstructure:"log_level"`
	Env          string        `mapstructure:"env"`
}

// Load reads path when given, otherwise looks for posclient.toml in the
// working directory and $HOME/.posclient. A missing default file is fine;
// environment variables such as POS_SERVER_URL override the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("db_path", "posclient.db")
	v.SetDefault("user_id", "")
	v.SetDefault("store_id", "")
	v.SetDefault("email", "")
	v.SetDefault("timeout", "30s")
	v.SetDefault("expiry_window", "720h")
	v.SetDefault("log_level", "warn")
	v.SetDefault("env", "development")

	v.SetEnvPrefix("POS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("posclient")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.posclient")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerURL == "" {
		return errors.New("server_url is required")
	}
	if !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		return fmt.Errorf("server_url %q must start with http:// or https://", c.ServerURL)
	}
	if c.DBPath == "" {
		return errors.New("db_path is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
