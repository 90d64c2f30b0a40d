// Package cmd provides the tandem command-line interface.
//
// Configuration is layered: command-line flags override TANDEM_-prefixed
// environment variables (TANDEM_SERVER_PORT, TANDEM_ROUTES_FILE, ...), which
// override the .tandem.yml file in the working directory.
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tandem",
	Short: "Dual-pass view rendering with code-split units",
	Long: `Tandem renders one declarative route tree twice: an eager pass on the
server producing complete markup, and a lazy pass on the client that loads
exactly the view units the server pass touched before mounting.

Quick start:
  tandem serve       Start the rendering server with the demo app
  tandem routes      Print the route table and unit binding status
  tandem version     Print build information`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .tandem.yml)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// bindFlags wires config keys to their command-line flags so flags override
// file and environment values.
func bindFlags(fs *pflag.FlagSet, bindings map[string]string) {
	for key, name := range bindings {
		_ = viper.BindPFlag(key, fs.Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("TANDEM_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tandem")
	}

	viper.SetEnvPrefix("TANDEM")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; defaults and environment cover it.
	_ = viper.ReadInConfig()
}
