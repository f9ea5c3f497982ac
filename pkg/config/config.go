// Package config loads downloader configuration from environment variables and
// an optional .env file via Viper. Flags override whatever is loaded here.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config groups the application configuration.
type Config struct {
	App  AppConfig
	SAT  SATConfig
	HTTP HTTPConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env      string // development, production
	LogLevel string
}

// SATConfig holds portal credentials and network budgets.
type SATConfig struct {
	Username       string
	Password       string
	TimeoutSeconds int
}

// HTTPConfig configures serve mode.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from env vars and an optional .env file in the
// working directory. Env vars win over file values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "production"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		SAT: SATConfig{
			Username:       getString(v, "SAT_USERNAME", ""),
			Password:       getString(v, "SAT_PASSWORD", ""),
			TimeoutSeconds: getInt(v, "SAT_TIMEOUT_SECONDS", 20),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		return v.GetInt(key)
	}
	return def
}
