package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oscarhq/oscar/internal/record"
	"github.com/oscarhq/oscar/internal/ui"
)

var logCmd = &cobra.Command{
	Use:     "log",
	GroupID: "records",
	Short:   "Track daily solve counts",
}

var logSetCmd = &cobra.Command{
	Use:   "set <count> [date]",
	Short: "Set the solve count for a date (default today)",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app := mustApp(ctx)
		defer app.Close()

		count, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: count must be a number: %v\n", err)
			os.Exit(1)
		}
		date := time.Now().UTC().Format(record.DateLayout)
		if len(args) == 2 {
			date = args[1]
		}
		questions, _ := cmd.Flags().GetString("questions")

		now := time.Now().UTC()
		d, err := app.Local.GetDailyLog(ctx, date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading daily log: %v\n", err)
			os.Exit(1)
		}
		if d == nil {
			d = &record.DailyLog{Date: date, CreatedAt: now}
		}
		d.Count = count
		d.UpdatedAt = now
		if questions != "" {
			d.QuestionIDs = strings.Split(questions, ",")
		}

		if err := app.Writes.SaveDailyLog(ctx, d, app.Config.Identity); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving daily log: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s %s: %g solved\n", ui.RenderPass("✓"), d.Date, d.Count)
	},
}

var logRmCmd = &cobra.Command{
	Use:   "rm <date>",
	Short: "Remove the log for a date",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app := mustApp(ctx)
		defer app.Close()

		d, err := app.Local.GetDailyLog(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading daily log: %v\n", err)
			os.Exit(1)
		}
		if d == nil {
			fmt.Printf("No log for %s.\n", args[0])
			return
		}
		d.UpdatedAt = time.Now().UTC()

		if err := app.Writes.DeleteDailyLog(ctx, d, app.Config.Identity); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting daily log: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Removed log for %s\n", ui.RenderPass("✓"), args[0])
	},
}

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "List daily logs",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app := mustApp(ctx)
		defer app.Close()

		since, _ := cmd.Flags().GetString("since")
		until, _ := cmd.Flags().GetString("until")

		var logs []record.DailyLog
		var err error
		if since != "" || until != "" {
			if since == "" {
				since = "0000-01-01"
			}
			if until == "" {
				until = "9999-12-31"
			}
			logs, err = app.Local.DailyLogsInRange(ctx, since, until)
		} else {
			logs, err = app.Local.AllDailyLogs(ctx)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing daily logs: %v\n", err)
			os.Exit(1)
		}
		if len(logs) == 0 {
			fmt.Println("No daily logs yet.")
			return
		}
		var total float64
		for _, d := range logs {
			total += d.Count
			fmt.Printf("%s  %6g solved", d.Date, d.Count)
			if len(d.QuestionIDs) > 0 {
				fmt.Printf("  %s", ui.RenderDim(strings.Join(d.QuestionIDs, ", ")))
			}
			fmt.Println()
		}
		fmt.Printf("\n%s %g solved across %d days\n", ui.RenderAccent("Σ"), total, len(logs))
	},
}

func init() {
	logSetCmd.Flags().String("questions", "", "Comma-separated question ids solved that day")
	logListCmd.Flags().String("since", "", "Only logs on or after this date (YYYY-MM-DD)")
	logListCmd.Flags().String("until", "", "Only logs on or before this date (YYYY-MM-DD)")
	logCmd.AddCommand(logSetCmd)
	logCmd.AddCommand(logRmCmd)
	logCmd.AddCommand(logListCmd)
	rootCmd.AddCommand(logCmd)
}
