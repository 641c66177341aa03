package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oscarhq/oscar/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:     "export [file]",
	GroupID: "sync",
	Short:   "Export all records as JSON",
	Long: `Export every record to a JSON snapshot.

The snapshot covers progress, daily logs, settings, and test results.
The pending queue and the question cache are internal state and are
not exported. Without a file argument the snapshot goes to stdout.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app := mustApp(ctx)
		defer app.Close()

		data, err := app.Local.ExportJSON(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
			os.Exit(1)
		}

		if len(args) == 0 {
			fmt.Println(string(data))
			return
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", args[0], err)
			os.Exit(1)
		}
		fmt.Printf("%s Exported to %s\n", ui.RenderPass("✓"), args[0])
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
