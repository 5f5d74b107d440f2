// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/teradata-labs/chartkit/internal/log"
	chartconfig "github.com/teradata-labs/chartkit/pkg/config"
	"github.com/teradata-labs/chartkit/pkg/server"
	"github.com/teradata-labs/chartkit/pkg/visualization"
)

const (
	// DefaultConfigFileName is the name of the config file
	DefaultConfigFileName = "chartkit"
	// EnvPrefix prefixes every environment override, e.g. CHARTKIT_SERVER_PORT.
	EnvPrefix = "CHARTKIT"
)

// Config holds all configuration for chartkit.
// Priority: CLI flags > config file > env vars > defaults
type Config struct {
	// DataDir is computed from CHARTKIT_DATA_DIR and is not read from the
	// config file.
	DataDir string `mapstructure:"-"`

	Server  ServerConfig  `mapstructure:"server"`
	Reports ReportsConfig `mapstructure:"reports"`
	Sources SourcesConfig `mapstructure:"sources"`
	Theme   string        `mapstructure:"theme"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string           `mapstructure:"host"`
	Port int              `mapstructure:"port"`
	Gzip bool             `mapstructure:"gzip"`
	CORS CORSServerConfig `mapstructure:"cors"`
}

// CORSServerConfig holds CORS configuration for HTTP endpoints.
//
// The default wildcard origin suits local development only. Never combine
// ["*"] with allow_credentials: true.
type CORSServerConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"` // seconds
}

// ReportsConfig locates the report catalogue and controls its lifecycle.
type ReportsConfig struct {
	Path        string        `mapstructure:"path"`
	Watch       bool          `mapstructure:"watch"`
	Debounce    time.Duration `mapstructure:"debounce"`
	Schedule    bool          `mapstructure:"schedule"`
	Concurrency int           `mapstructure:"concurrency"`
}

// SourcesConfig configures data source providers.
type SourcesConfig struct {
	// BaseDir resolves relative file source paths; empty means the
	// directory of the reports file.
	BaseDir      string        `mapstructure:"base_dir"`
	CacheEntries int           `mapstructure:"cache_entries"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

// LoadConfig loads configuration from multiple sources with proper priority:
// 1. Command line flags (highest priority)
// 2. Config file
// 3. Environment variables
// 4. Defaults (lowest priority)
func LoadConfig(cfgFile string) (*Config, error) {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(chartconfig.GetDataDir())
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/chartkit/")
		viper.SetConfigName(DefaultConfigFileName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", viper.ConfigFileUsed(), err)
		}
		// Config file not found; using defaults + env vars + flags
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.DataDir = chartconfig.GetDataDir()
	config.Reports.Path = chartconfig.ExpandPath(config.Reports.Path)
	config.Sources.BaseDir = chartconfig.ExpandPath(config.Sources.BaseDir)

	return &config, nil
}

// loadDotEnv loads .env from the working directory and then the data
// directory. Variables already set are never overridden.
func loadDotEnv() error {
	for _, path := range []string{".env", filepath.Join(chartconfig.GetDataDir(), ".env")} {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.gzip", true)

	cors := server.DefaultCORSConfig()
	viper.SetDefault("server.cors.enabled", cors.Enabled)
	viper.SetDefault("server.cors.allowed_origins", cors.AllowedOrigins)
	viper.SetDefault("server.cors.allowed_methods", cors.AllowedMethods)
	viper.SetDefault("server.cors.allowed_headers", cors.AllowedHeaders)
	viper.SetDefault("server.cors.exposed_headers", cors.ExposedHeaders)
	viper.SetDefault("server.cors.allow_credentials", cors.AllowCredentials)
	viper.SetDefault("server.cors.max_age", cors.MaxAge)

	viper.SetDefault("reports.path", chartconfig.DefaultReportsPath())
	viper.SetDefault("reports.watch", true)
	viper.SetDefault("reports.debounce", "500ms")
	viper.SetDefault("reports.schedule", true)
	viper.SetDefault("reports.concurrency", 4)

	viper.SetDefault("sources.base_dir", "")
	viper.SetDefault("sources.cache_entries", 256)
	viper.SetDefault("sources.cache_ttl", "5m")

	viper.SetDefault("theme", "default")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Server.Port)
	}
	if err := c.CORS().Validate(); err != nil {
		return err
	}
	if c.Server.CORS.AllowCredentials && slices.Contains(c.Server.CORS.AllowedOrigins, "*") {
		return fmt.Errorf("server.cors.allow_credentials cannot be used with wildcard origins")
	}

	if c.Reports.Path == "" {
		return fmt.Errorf("reports.path is required")
	}
	if c.Reports.Concurrency < 1 {
		return fmt.Errorf("invalid reports.concurrency: %d (must be at least 1)", c.Reports.Concurrency)
	}
	if c.Reports.Debounce < 0 {
		return fmt.Errorf("invalid reports.debounce: %s", c.Reports.Debounce)
	}

	if c.Sources.CacheEntries < 0 {
		return fmt.Errorf("invalid sources.cache_entries: %d (must be 0 or more)", c.Sources.CacheEntries)
	}
	if c.Sources.CacheTTL < 0 {
		return fmt.Errorf("invalid sources.cache_ttl: %s", c.Sources.CacheTTL)
	}

	if !slices.Contains(visualization.ThemeNames(), c.Theme) {
		return fmt.Errorf("unknown theme: %s (must be one of %v)", c.Theme, visualization.ThemeNames())
	}

	if _, err := log.Build(c.Logging.Level, c.Logging.Format); err != nil {
		return err
	}
	return nil
}

// CORS converts the CORS section into the server's form.
func (c *Config) CORS() server.CORSConfig {
	return server.CORSConfig{
		Enabled:          c.Server.CORS.Enabled,
		AllowedOrigins:   c.Server.CORS.AllowedOrigins,
		AllowedMethods:   c.Server.CORS.AllowedMethods,
		AllowedHeaders:   c.Server.CORS.AllowedHeaders,
		ExposedHeaders:   c.Server.CORS.ExposedHeaders,
		AllowCredentials: c.Server.CORS.AllowCredentials,
		MaxAge:           c.Server.CORS.MaxAge,
	}
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GenerateExampleConfig generates an example configuration file.
func GenerateExampleConfig() string {
	return heredoc.Doc(`
		# chartkit configuration
		# Priority: CLI flags > config file > environment variables (CHARTKIT_*) > defaults

		server:
		  host: 0.0.0.0
		  port: 8080
		  gzip: true
		  cors:
		    enabled: true
		    # Restrict to your dashboard origin in production.
		    allowed_origins: ["*"]
		    allow_credentials: false
		    max_age: 86400

		reports:
		  # Report catalogue (YAML). Defaults to $CHARTKIT_DATA_DIR/reports.yaml
		  path: ~/.chartkit/reports.yaml
		  # Reload the catalogue when the file changes
		  watch: true
		  debounce: 500ms
		  # Run cron refreshes for reports that declare a refresh schedule
		  schedule: true
		  concurrency: 4

		sources:
		  # Relative csv/json/xlsx paths resolve against this directory
		  # (default: the directory holding the reports file)
		  base_dir: ""
		  # HTTP source response cache
		  cache_entries: 256
		  cache_ttl: 5m

		# Chart theme: default, dark, light, minimal
		theme: default

		logging:
		  level: info   # debug, info, warn, error
		  format: text  # text, json
	`)
}
