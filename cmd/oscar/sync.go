package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/oscarhq/oscar/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Run a full sync now",
	Long: `Run a full sync now.

Performs the login merge (newer copy wins per record, local wins
ties) and then drains the pending write queue.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app := mustApp(ctx)
		defer app.Close()

		if app.Config.Identity == "" {
			fmt.Fprintf(os.Stderr, "Error: no identity configured; set identity in ~/.oscar/config.yaml\n")
			os.Exit(1)
		}

		fmt.Printf("%s Syncing as %s...\n", ui.RenderAccent("🔄"), app.Config.Identity)
		start := time.Now()

		if err := app.Coord.FullSync(ctx, app.Config.Identity); err != nil {
			fmt.Fprintf(os.Stderr, "Error: sync failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Sync complete in %v\n", ui.RenderPass("✓"), time.Since(start).Round(time.Millisecond))
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
