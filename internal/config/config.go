// Package config provides configuration management for tandem using Viper,
// loading from the .tandem.yml file, TANDEM_-prefixed environment variables,
// and command-line flags, in ascending precedence.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Environment values accepted by server.environment.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the root configuration document.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Assets      AssetsConfig      `yaml:"assets"`
	Routes      RoutesConfig      `yaml:"routes"`
	Hydration   HydrationConfig   `yaml:"hydration"`
	Development DevelopmentConfig `yaml:"development"`
	LogLevel    string            `yaml:"log-level" mapstructure:"log-level"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Environment string `yaml:"environment"`
}

// AssetsConfig configures static assets and the two manifest documents.
type AssetsConfig struct {
	StaticDir      string   `yaml:"static_dir" mapstructure:"static_dir"`
	ServerManifest string   `yaml:"server_manifest" mapstructure:"server_manifest"`
	ClientManifest string   `yaml:"client_manifest" mapstructure:"client_manifest"`
	FallbackPrefix string   `yaml:"fallback_prefix" mapstructure:"fallback_prefix"`
	Stylesheet     string   `yaml:"stylesheet"`
	Scripts        []string `yaml:"scripts"`
}

// RoutesConfig points at the route descriptor source.
type RoutesConfig struct {
	File string `yaml:"file"`
}

// HydrationConfig bounds the client preloading pass.
type HydrationConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	ErrorUnit string        `yaml:"error_unit" mapstructure:"error_unit"`
}

// DevelopmentConfig holds development-only behavior.
type DevelopmentConfig struct {
	LiveReload bool `yaml:"live_reload" mapstructure:"live_reload"`
}

// Load builds the configuration from viper state, applies defaults, and
// validates it.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.Environment == "" {
		config.Server.Environment = EnvDevelopment
	}
	if config.Assets.StaticDir == "" {
		config.Assets.StaticDir = "./static"
	}
	if config.Assets.FallbackPrefix == "" {
		config.Assets.FallbackPrefix = "/static"
	}
	if config.Assets.Stylesheet == "" {
		config.Assets.Stylesheet = "app.css"
	}
	if len(config.Assets.Scripts) == 0 {
		config.Assets.Scripts = []string{"main.js"}
	}
	if config.Hydration.Timeout == 0 {
		config.Hydration.Timeout = 10 * time.Second
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if !viper.IsSet("development.live_reload") {
		config.Development.LiveReload = config.Server.Environment == EnvDevelopment
	}
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// Addr returns the host:port the server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
