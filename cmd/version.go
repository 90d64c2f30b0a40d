package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tandemview/tandem/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Detailed())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
