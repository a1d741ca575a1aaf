package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/4j17h/resourcer/internal/config"
	"github.com/4j17h/resourcer/internal/fetch"
	"github.com/4j17h/resourcer/internal/logging"
	"github.com/4j17h/resourcer/internal/orchestrator"
)

var (
	dumpURL   string
	dumpInput string
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Discover, download, and reconstruct a bundled application's original sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		if (dumpURL == "") == (dumpInput == "") {
			return fmt.Errorf("exactly one of --url or --input must be given")
		}

		cfg := config.ResolveDump()
		client, err := fetch.New(fetch.Options{
			UserAgent:   cfg.UserAgent,
			ProxyURL:    cfg.Proxy,
			InsecureTLS: cfg.InsecureTLS,
		})
		if err != nil {
			exitFatal(err)
			return nil
		}

		opts := orchestrator.Options{
			Concurrency:   cfg.Concurrency,
			RetryAttempts: cfg.RetryAttempts,
			MaxFiles:      cfg.MaxFiles,
			OutDir:        cfg.OutDir,
			DryRun:        cfg.DryRun,
			Beautify:      cfg.Beautify,
			EOL:           cfg.EOL,
		}

		var result orchestrator.Result
		if dumpInput != "" {
			result, err = orchestrator.DumpLocal(context.Background(), log, client, afero.NewOsFs(), dumpInput, opts)
		} else {
			result, err = orchestrator.Dump(context.Background(), log, client, afero.NewOsFs(), dumpURL, opts)
		}
		if err != nil {
			exitFatal(err)
			return nil
		}

		if result.DryRun {
			for _, u := range result.Chunks {
				fmt.Println(u)
			}
			return nil
		}

		var failed int
		for _, oc := range result.Outcomes {
			if oc.Failed {
				failed++
				logging.PrintFailed(cmd.ErrOrStderr(), oc.URL, oc.Err)
				continue
			}
			if oc.SourcesMissed > 0 {
				logging.PrintSkipped(cmd.OutOrStdout(), fmt.Sprintf("%d sources missing content", oc.SourcesMissed), oc.URL)
			}
			logging.PrintWritten(cmd.OutOrStdout(), oc.URL)
		}
		logging.PrintSummary(cmd.OutOrStdout(), "%d chunks processed, %d failed, output at %s", len(result.Outcomes), failed, result.OutRoot)
		return nil
	},
}

func init() {
	cfg := config.DefaultDump()
	dumpCmd.Flags().StringVar(&dumpURL, "url", "", "page URL to dump")
	dumpCmd.Flags().StringVar(&dumpInput, "input", "", "local JS file to dump")
	config.BindDumpFlags(dumpCmd.Flags(), cfg)
}
