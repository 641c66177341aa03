package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oscarhq/oscar/internal/record"
	"github.com/oscarhq/oscar/internal/ui"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	GroupID: "records",
	Short:   "Configure the practice plan and test defaults",
}

var settingsCalcCmd = &cobra.Command{
	Use:   "calculator",
	Short: "Configure the completion calculator",
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
			cs = &record.CalculatorSettings{
				ID:        record.CalculatorSettingsID,
				StartDate: time.Now().UTC().Format(record.DateLayout),
			}
		}

		if cmd.Flags().NFlag() == 0 {
			fmt.Printf("Total questions:     %d\n", cs.TotalQuestions)
			fmt.Printf("Per weekday:         %d\n", cs.QuestionsPerWeekday)
			fmt.Printf("Extra today:         %d\n", cs.ExtraQuestionsToday)
			fmt.Printf("Extra on weekends:   %d\n", cs.ExtraQuestionsWeekend)
			fmt.Printf("Start date:          %s\n", cs.StartDate)
			return
		}

		if cmd.Flags().Changed("total") {
			cs.TotalQuestions, _ = cmd.Flags().GetInt("total")
		}
		if cmd.Flags().Changed("per-weekday") {
			cs.QuestionsPerWeekday, _ = cmd.Flags().GetInt("per-weekday")
		}
		if cmd.Flags().Changed("extra-today") {
			cs.ExtraQuestionsToday, _ = cmd.Flags().GetInt("extra-today")
		}
		if cmd.Flags().Changed("extra-weekend") {
			cs.ExtraQuestionsWeekend, _ = cmd.Flags().GetInt("extra-weekend")
		}
		if cmd.Flags().Changed("start") {
			cs.StartDate, _ = cmd.Flags().GetString("start")
		}
		cs.UpdatedAt = time.Now().UTC()

		if err := app.Writes.SaveCalculatorSettings(ctx, cs, app.Config.Identity); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving settings: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Calculator settings saved\n", ui.RenderPass("✓"))
	},
}

var settingsTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Configure practice test defaults",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app := mustApp(ctx)
		defer app.Close()

		ts, err := app.Local.GetTestSettings(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading settings: %v\n", err)
			os.Exit(1)
		}
		if ts == nil {
			ts = &record.TestSettings{
				ID:            record.TestSettingsID,
				DefaultSource: record.TestSourceAll,
				DefaultCount:  10,
				SyncEnabled:   true,
			}
		}

		if cmd.Flags().NFlag() == 0 {
			fmt.Printf("Default source: %s\n", ts.DefaultSource)
			fmt.Printf("Default count:  %d\n", ts.DefaultCount)
			fmt.Printf("Default topics: %s\n", strings.Join(ts.DefaultTopics, ", "))
			fmt.Printf("Sync enabled:   %t\n", ts.SyncEnabled)
			return
		}

		if cmd.Flags().Changed("source") {
			ts.DefaultSource, _ = cmd.Flags().GetString("source")
		}
		if cmd.Flags().Changed("count") {
			ts.DefaultCount, _ = cmd.Flags().GetInt("count")
		}
		if cmd.Flags().Changed("topics") {
			topics, _ := cmd.Flags().GetString("topics")
			ts.DefaultTopics = strings.Split(topics, ",")
		}
		if cmd.Flags().Changed("sync") {
			ts.SyncEnabled, _ = cmd.Flags().GetBool("sync")
		}
		ts.UpdatedAt = time.Now().UTC()

		if err := app.Writes.SaveTestSettings(ctx, ts, app.Config.Identity); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving settings: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Test settings saved\n", ui.RenderPass("✓"))
	},
}

func init() {
	settingsCalcCmd.Flags().Int("total", 0, "Total questions in the plan")
	settingsCalcCmd.Flags().Int("per-weekday", 0, "Questions per weekday")
	settingsCalcCmd.Flags().Int("extra-today", 0, "One-time extra questions on the first day")
	settingsCalcCmd.Flags().Int("extra-weekend", 0, "Extra questions per weekend day")
	settingsCalcCmd.Flags().String("start", "", "Plan start date (YYYY-MM-DD)")

	settingsTestCmd.Flags().String("source", "", "Default question source")
	settingsTestCmd.Flags().Int("count", 0, "Default question count")
	settingsTestCmd.Flags().String("topics", "", "Comma-separated default topics")
	settingsTestCmd.Flags().Bool("sync", true, "Sync test results to the remote store")

	settingsCmd.AddCommand(settingsCalcCmd)
	settingsCmd.AddCommand(settingsTestCmd)
	rootCmd.AddCommand(settingsCmd)
}
