package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/oscarhq/oscar/internal/record"
	"github.com/oscarhq/oscar/internal/ui"
)

var progressCmd = &cobra.Command{
	Use:     "progress",
	GroupID: "records",
	Short:   "Track per-problem progress",
}

var progressSetCmd = &cobra.Command{
	Use:   "set <question-id>",
	Short: "Record work on a problem",
	Long: `Record work on a problem.

The record is written to the local store immediately. With an
identity configured it is also mirrored to the remote store, or
queued if the remote store is unreachable.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app := mustApp(ctx)
		defer app.Close()

		status, _ := cmd.Flags().GetString("status")
		revise, _ := cmd.Flags().GetBool("revise")

		now := time.Now().UTC()
		p, err := app.Local.GetProgress(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading progress: %v\n", err)
			os.Exit(1)
		}
		if p == nil {
			p = &record.Progress{QuestionID: args[0], Status: record.StatusNotStarted}
		}

		p.Attempts++
		p.LastPracticedAt = &now
		p.UpdatedAt = now
		p.MarkedForRevision = revise
		if status != "" {
			p.Status = status
		} else if p.Status == record.StatusNotStarted {
			p.Status = record.StatusInProgress
		}
		if p.Status == record.StatusCompleted && p.CompletedAt == nil {
			p.CompletedAt = &now
		}

		if err := app.Writes.SaveProgress(ctx, p, app.Config.Identity); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving progress: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s %s: %s (attempt %d)\n", ui.RenderPass("✓"), p.QuestionID, p.Status, p.Attempts)
	},
}

var progressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked problems",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app := mustApp(ctx)
		defer app.Close()

		all, err := app.Local.AllProgress(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing progress: %v\n", err)
			os.Exit(1)
		}
		if len(all) == 0 {
			fmt.Println("No problems tracked yet.")
			return
		}
		for _, p := range all {
			marker := ui.RenderDim("·")
			switch p.Status {
			case record.StatusCompleted:
				marker = ui.RenderPass("✓")
			case record.StatusInProgress:
				marker = ui.RenderAccent("…")
			}
			revision := ""
			if p.MarkedForRevision {
				revision = " " + ui.RenderWarn("(revise)")
			}
			fmt.Printf("%s %-40s %-12s attempts=%d%s\n", marker, p.QuestionID, p.Status, p.Attempts, revision)
		}
	},
}

func init() {
	progressSetCmd.Flags().String("status", "", "Set status: not_started, in_progress, or completed")
	progressSetCmd.Flags().Bool("revise", false, "Mark the problem for revision")
	progressCmd.AddCommand(progressSetCmd)
	progressCmd.AddCommand(progressListCmd)
	rootCmd.AddCommand(progressCmd)
}
