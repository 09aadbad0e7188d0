// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bindery-dev/bindery/internal/config"
	"github.com/bindery-dev/bindery/internal/session"
)

var (
	// Global flags
	bundleName     string // Named bundle from config
	bundlePathFlag string // Explicit path
	configPath     string

	// Resolved values
	resolvedBundlePath string
	cfg                *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bindery",
	Short: "Bindery - a transactional store for schema-validated YAML entities",
	Long: `Bindery manages bundles: directories of YAML entities validated against
per-type schemas and linked into a reference graph.

Plain files are the source of truth. Batches of changes are validated as
a whole before anything is written, so a bundle is never left half-edited.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip bundle resolution for commands that don't need one
		switch cmd.Name() {
		case "init", "bundles", "completion", "help", "version":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = loadGlobalConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Resolve bundle path: explicit path > named bundle > default
		if bundlePathFlag != "" {
			resolvedBundlePath = bundlePathFlag
		} else {
			resolvedBundlePath, err = cfg.BundlePath(bundleName)
			if err != nil {
				if bundleName != "" {
					return fmt.Errorf("bundle '%s' not found\n\nRun 'bindery bundles' to see configured bundles", bundleName)
				}
				return fmt.Errorf(`no bundle specified

Either:
  1. Use --bundle <name> (from config)
  2. Use --bundle-path /path/to/bundle
  3. Set default_bundle in %s
  4. Run 'bindery init /path/to/new/bundle' to create one`, config.DefaultPath())
			}
		}

		// Verify bundle exists
		if _, err := os.Stat(resolvedBundlePath); os.IsNotExist(err) {
			return fmt.Errorf("bundle not found: %s\n\nRun 'bindery init %s' to create it", resolvedBundlePath, resolvedBundlePath)
		}

		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&bundleName, "bundle", "b", "", "Named bundle from config")
	rootCmd.PersistentFlags().StringVar(&bundlePathFlag, "bundle-path", "", "Explicit path to bundle directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
}

// getBundlePath returns the resolved bundle path.
func getBundlePath() string {
	return resolvedBundlePath
}

// openSession opens a session on the resolved bundle. The load itself
// never fails on bad entities; only a missing manifest or similar
// structural problem errors here.
func openSession() (*session.Session, error) {
	sess, err := session.Open(getBundlePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	return sess, nil
}

func loadGlobalConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}
