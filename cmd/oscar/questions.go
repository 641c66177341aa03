package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/oscarhq/oscar/internal/ui"
)

var questionsCmd = &cobra.Command{
	Use:     "questions",
	GroupID: "records",
	Short:   "List the problem catalog",
	Long: `List the problem catalog.

The catalog comes from the shared remote store and is cached locally.
When the remote store is unreachable the cached copy is shown.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app := mustApp(ctx)
		defer app.Close()

		questions, err := app.Writes.Questions(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching questions: %v\n", err)
			os.Exit(1)
		}
		if len(questions) == 0 {
			fmt.Println("No questions available.")
			return
		}
		sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
		for _, q := range questions {
			fmt.Println(q.ID)
		}
		fmt.Printf("\n%s %d questions (fetched %s)\n",
			ui.RenderAccent("▸"), len(questions), questions[0].FetchedAt.Format("2006-01-02 15:04"))
	},
}

func init() {
	rootCmd.AddCommand(questionsCmd)
}
