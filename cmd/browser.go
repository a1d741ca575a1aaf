package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var browserURL string

// browserCmd is reserved for headless-browser-driven SPA asset discovery,
// explicitly out of scope for this implementation (spec.md §1's
// Out-of-scope: "Headless-browser rendering for SPA-only asset discovery
// is explicitly a non-goal").
var browserCmd = &cobra.Command{
	Use:   "browser",
	Short: "Reserved for headless-browser-driven asset discovery (not yet implemented)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("browser: not yet implemented")
	},
}

func init() {
	browserCmd.Flags().StringVar(&browserURL, "url", "", "page URL")
}
