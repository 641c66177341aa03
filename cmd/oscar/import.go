package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oscarhq/oscar/internal/localstore"
	"github.com/oscarhq/oscar/internal/ui"
)

var importCmd = &cobra.Command{
	Use:     "import <file>",
	GroupID: "sync",
	Short:   "Import records from a JSON snapshot",
	Long: `Import records from a JSON snapshot.

Imported records overwrite local records with the same key regardless
of timestamps. Collections absent from the snapshot are left alone.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app := mustApp(ctx)
		defer app.Close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", args[0], err)
			os.Exit(1)
		}

		if err := app.Local.ImportAll(ctx, data); err != nil {
			var ferr *localstore.FormatError
			if errors.As(err, &ferr) {
				fmt.Fprintf(os.Stderr, "Error: %s is not a valid snapshot: %v\n", args[0], err)
			} else {
				fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
			}
			os.Exit(1)
		}
		fmt.Printf("%s Imported %s\n", ui.RenderPass("✓"), args[0])

		if app.Config.Identity != "" {
			fmt.Printf("%s Run 'oscar sync' to push imported records\n", ui.RenderDim("·"))
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
