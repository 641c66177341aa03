package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oscarhq/oscar/internal/record"
	"github.com/oscarhq/oscar/internal/schedule"
	"github.com/oscarhq/oscar/internal/ui"
)

var planCmd = &cobra.Command{
	Use:     "plan",
	GroupID: "records",
	Short:   "Project when the practice plan finishes",
	Long: `Project the plan completion date.

Uses the calculator settings and the actual daily log history: logged
days count as done, and the remainder is simulated at the configured
weekday and weekend pace.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app := mustApp(ctx)
		defer app.Close()

		cs, err := app.Local.GetCalculatorSettings(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading settings: %v\n", err)
			os.Exit(1)
		}
		if cs == nil {
			fmt.Fprintf(os.Stderr, "Error: no calculator settings; run 'oscar settings calculator' first\n")
			os.Exit(1)
		}

		in, err := schedule.InputsFromSettings(cs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		logs, err := app.Local.AllDailyLogs(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading daily logs: %v\n", err)
			os.Exit(1)
		}

		fromScratch, _ := cmd.Flags().GetBool("from-scratch")
		var res schedule.Result
		if fromScratch {
			res, err = schedule.CompletionDate(in)
		} else {
			res, err = schedule.CompletionFromLogs(in, logs)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if res.Remaining == 0 {
			fmt.Printf("%s Plan complete as of %s\n", ui.RenderPass("✓"), res.EndDate.Format(record.DateLayout))
			return
		}
		fmt.Printf("%s %g questions remaining\n", ui.RenderAccent("▸"), res.Remaining)
		fmt.Printf("%s Projected finish: %s (%d more days)\n",
			ui.RenderAccent("▸"), res.EndDate.Format(record.DateLayout), res.TotalDays)
	},
}

func init() {
	planCmd.Flags().Bool("from-scratch", false, "Ignore logged history and project the full plan")
	rootCmd.AddCommand(planCmd)
}
