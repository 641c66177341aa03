package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oscarhq/oscar/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "sync",
	Short:   "Show sync status",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app := mustApp(ctx)
		defer app.Close()

		if app.Config.Identity == "" {
			fmt.Printf("%s Logged out: records stay local\n", ui.RenderDim("·"))
		} else {
			fmt.Printf("%s Identity: %s\n", ui.RenderAccent("▸"), app.Config.Identity)
		}

		if err := app.Remote.Ping(ctx); err != nil {
			fmt.Printf("%s Remote store unreachable: %v\n", ui.RenderWarn("⚠"), err)
		} else {
			fmt.Printf("%s Remote store reachable\n", ui.RenderPass("✓"))
		}

		status, err := app.Writes.SyncStatus(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading queue: %v\n", err)
			os.Exit(1)
		}
		if status.HasPending {
			fmt.Printf("%s %d writes queued for the remote store\n", ui.RenderWarn("⚠"), status.PendingCount)
		} else {
			fmt.Printf("%s Queue empty, both stores converged\n", ui.RenderPass("✓"))
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
