package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bindery-dev/bindery/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		version := buildinfo.Version
		if version == "" {
			version = "dev"
		}

		if jsonOutput {
			outputSuccess(map[string]interface{}{
				"version": version,
				"commit":  buildinfo.Commit,
				"date":    buildinfo.Date,
			}, nil)
			return
		}

		fmt.Printf("bindery %s\n", version)
		if buildinfo.Commit != "" {
			fmt.Printf("  commit: %s\n", buildinfo.Commit)
		}
		if buildinfo.Date != "" {
			fmt.Printf("  built:  %s\n", buildinfo.Date)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
