package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/oscarhq/oscar/internal/record"
	"github.com/oscarhq/oscar/internal/ui"
)

var testCmd = &cobra.Command{
	Use:     "test",
	GroupID: "records",
	Short:   "Record practice test runs",
}

var testRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a finished practice test",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app := mustApp(ctx)
		defer app.Close()

		questions, _ := cmd.Flags().GetString("questions")
		weak, _ := cmd.Flags().GetString("weak")
		if questions == "" {
			fmt.Fprintf(os.Stderr, "Error: --questions is required\n")
			os.Exit(1)
		}

		result := &record.TestResult{
			ID:          uuid.NewString(),
			QuestionIDs: strings.Split(questions, ","),
			CreatedAt:   time.Now().UTC(),
		}
		if weak != "" {
			result.WeakIDs = strings.Split(weak, ",")
		}

		if err := app.Writes.SaveTestResult(ctx, result, app.Config.Identity); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving test result: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Recorded test %s (%d questions, %d weak)\n",
			ui.RenderPass("✓"), result.ID, len(result.QuestionIDs), len(result.WeakIDs))
	},
}

var testListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded tests",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app := mustApp(ctx)
		defer app.Close()

		results, err := app.Local.AllTestResults(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing test results: %v\n", err)
			os.Exit(1)
		}
		if len(results) == 0 {
			fmt.Println("No tests recorded yet.")
			return
		}
		for _, r := range results {
			fmt.Printf("%s  %d questions", r.CreatedAt.Format("2006-01-02 15:04"), len(r.QuestionIDs))
			if len(r.WeakIDs) > 0 {
				fmt.Printf("  %s", ui.RenderWarn(fmt.Sprintf("%d weak", len(r.WeakIDs))))
			}
			fmt.Println()
		}
	},
}

func init() {
	testRecordCmd.Flags().String("questions", "", "Comma-separated question ids in the test")
	testRecordCmd.Flags().String("weak", "", "Comma-separated question ids answered poorly")
	testCmd.AddCommand(testRecordCmd)
	testCmd.AddCommand(testListCmd)
	rootCmd.AddCommand(testCmd)
}
