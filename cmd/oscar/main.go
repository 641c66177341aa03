// Command oscar is a local-first coding practice tracker.
//
// All records live in a local sqlite database and every write lands
// there first. When an identity is configured, writes are mirrored to
// the remote store and queued for later delivery whenever it is
// unreachable. The daemon subcommand keeps both sides converged.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "oscar",
	Short: "Local-first coding practice tracker",
	Long: `Track coding practice progress, daily solve counts, and test runs.

Records are stored locally first, so every command works offline.
With an identity configured (see ~/.oscar/config.yaml), records are
mirrored to the remote store; writes made while offline are queued
and replayed by the sync daemon.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "records", Title: "Record commands:"},
		&cobra.Group{ID: "sync", Title: "Sync commands:"},
	)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
