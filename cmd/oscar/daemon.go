package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oscarhq/oscar/internal/syncer"
	"github.com/oscarhq/oscar/internal/ui"
)

var daemonCmd = &cobra.Command{
	Use:     "daemon",
	GroupID: "sync",
	Short:   "Run the sync daemon",
	Long: `Run the sync daemon.

The daemon runs a full sync at startup, drains the pending write
queue on a fixed interval while the remote store is reachable, and
imports snapshot files dropped into the import directory. It runs
until interrupted.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app := mustApp(ctx)
		defer app.Close()

		dcfg := syncer.DefaultConfig()
		dcfg.DrainInterval = app.Config.DrainInterval
		dcfg.ResyncDelay = app.Config.ResyncDelay
		dcfg.ImportDir = app.Config.ImportDir
		dcfg.Logger = app.Logger

		d, err := syncer.NewDaemon(app.Coord, app.Local, syncer.StaticIdentity(app.Config.Identity), app.Remote, dcfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Starting sync daemon (drain every %v)...\n", ui.RenderAccent("🚀"), app.Config.DrainInterval)
		if err := d.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: daemon failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
