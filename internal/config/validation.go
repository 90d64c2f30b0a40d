package config

import (
	"fmt"
	"strings"
)

// validateConfig validates configuration values for correctness.
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateAssetsConfig(&config.Assets); err != nil {
		return fmt.Errorf("assets config: %w", err)
	}
	if err := validateHydrationConfig(&config.Hydration); err != nil {
		return fmt.Errorf("hydration config: %w", err)
	}
	return nil
}

func validateServerConfig(server *ServerConfig) error {
	if server.Port < 1 || server.Port > 65535 {
		return fmt.Errorf("port %d out of range", server.Port)
	}
	if strings.ContainsAny(server.Host, " \t\n\r") {
		return fmt.Errorf("host %q contains whitespace", server.Host)
	}
	if server.Environment != EnvDevelopment && server.Environment != EnvProduction {
		return fmt.Errorf("environment %q must be %q or %q",
			server.Environment, EnvDevelopment, EnvProduction)
	}
	return nil
}

func validateAssetsConfig(assets *AssetsConfig) error {
	if assets.StaticDir == "" {
		return fmt.Errorf("static_dir must not be empty")
	}
	if !strings.HasPrefix(assets.FallbackPrefix, "/") {
		return fmt.Errorf("fallback_prefix %q must be absolute", assets.FallbackPrefix)
	}
	return nil
}

func validateHydrationConfig(hydration *HydrationConfig) error {
	if hydration.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}
