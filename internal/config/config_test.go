package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, EnvDevelopment, cfg.Server.Environment)
	assert.Equal(t, "./static", cfg.Assets.StaticDir)
	assert.Equal(t, "/static", cfg.Assets.FallbackPrefix)
	assert.Equal(t, "app.css", cfg.Assets.Stylesheet)
	assert.Equal(t, []string{"main.js"}, cfg.Assets.Scripts)
	assert.Equal(t, 10*time.Second, cfg.Hydration.Timeout)
	assert.True(t, cfg.Development.LiveReload, "live reload defaults on in development")
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "localhost:8080", cfg.Addr())
}

func TestLoadProductionDisablesLiveReload(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("server.environment", EnvProduction)

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.Development.LiveReload)
}

func TestLoadExplicitLiveReloadWins(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("server.environment", EnvProduction)
	viper.Set("development.live_reload", true)

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Development.LiveReload)
}

func TestLoadOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("server.port", 3000)
	viper.Set("assets.server_manifest", "./dist/server-manifest.json")
	viper.Set("assets.client_manifest", "./dist/client-manifest.json")
	viper.Set("hydration.error_unit", "LoadFailed")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "./dist/server-manifest.json", cfg.Assets.ServerManifest)
	assert.Equal(t, "./dist/client-manifest.json", cfg.Assets.ClientManifest)
	assert.Equal(t, "LoadFailed", cfg.Hydration.ErrorUnit)
}

func TestValidateServerConfig(t *testing.T) {
	assert.NoError(t, validateServerConfig(&ServerConfig{Host: "localhost", Port: 8080, Environment: EnvDevelopment}))

	assert.Error(t, validateServerConfig(&ServerConfig{Host: "localhost", Port: 0, Environment: EnvDevelopment}))
	assert.Error(t, validateServerConfig(&ServerConfig{Host: "localhost", Port: 70000, Environment: EnvDevelopment}))
	assert.Error(t, validateServerConfig(&ServerConfig{Host: "bad host", Port: 8080, Environment: EnvDevelopment}))
	assert.Error(t, validateServerConfig(&ServerConfig{Host: "localhost", Port: 8080, Environment: "staging"}))
}

func TestValidateAssetsConfig(t *testing.T) {
	assert.NoError(t, validateAssetsConfig(&AssetsConfig{StaticDir: "./static", FallbackPrefix: "/static"}))
	assert.Error(t, validateAssetsConfig(&AssetsConfig{StaticDir: "", FallbackPrefix: "/static"}))
	assert.Error(t, validateAssetsConfig(&AssetsConfig{StaticDir: "./static", FallbackPrefix: "static"}))
}

func TestValidateHydrationConfig(t *testing.T) {
	assert.NoError(t, validateHydrationConfig(&HydrationConfig{Timeout: time.Second}))
	assert.NoError(t, validateHydrationConfig(&HydrationConfig{Timeout: 0}))
	assert.Error(t, validateHydrationConfig(&HydrationConfig{Timeout: -time.Second}))
}

func TestLoadInvalidConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("server.port", 99999)

	_, err := Load()
	assert.Error(t, err)
}
