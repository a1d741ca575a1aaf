// Package cmd provides the resourcer command-line interface: list-urls,
// dump, and a reserved browser placeholder, following conneroisu-templar's
// cobra root command + persistent-flag + viper-config idiom.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/4j17h/resourcer/internal/config"
	"github.com/4j17h/resourcer/internal/logging"
)

var (
	verbosity int
	quiet     bool
	cfgFile   string

	log *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "resourcer",
	Short: "Reconstruct original sources from a bundled, minified web application",
	Long: `resourcer discovers the JavaScript chunks a bundled web application ships
to the browser, locates their source maps, and rebuilds the original source
tree on disk for review, auditing, or diffing.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Init(cfgFile)
		log = logging.New(logging.FromVerbosity(verbosity, quiet), os.Stderr)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable: info -> debug -> trace)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all but error-level output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .resourcer.yaml in the working directory)")

	rootCmd.AddCommand(listURLsCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(browserCmd)
}

func exitFatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
