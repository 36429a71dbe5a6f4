/*
Copyright © 2025 Eren Akay

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erenakay1/CV-Analizer/internal/report"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past CV reviews",
	Long:  `List, inspect, and delete the runs recorded in the SQLite history database.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory()
		if err != nil {
			return err
		}
		defer closeHistory(db)

		runs, err := db.ListRuns(context.Background(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tDOCUMENT\tROLE\tLOCATION\tATS\tAPPROVED\tRETRIES\tJOBS")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%g\t%v\t%d\t%d\n",
				r.ID, r.Timestamp.Format("2006-01-02 15:04"), r.DocumentName,
				r.TargetRole, r.TargetLocation, r.ATSScore, r.Approved, r.RetryCount, r.JobsFound)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the report of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory()
		if err != nil {
			return err
		}
		defer closeHistory(db)

		ctx := context.Background()
		run, err := db.GetRun(ctx, args[0])
		if err != nil {
			return err
		}
		jobs, err := db.RecommendationsOf(ctx, run.ID)
		if err != nil {
			return fmt.Errorf("failed to load recommendations: %w", err)
		}
		rep, err := report.FromRun(*run, jobs)
		if err != nil {
			return err
		}

		switch historyFormat {
		case "md", "markdown":
			fmt.Print(rep.Markdown())
		case "html":
			fmt.Print(rep.HTML())
		default:
			return fmt.Errorf("unknown format %q (want md or html)", historyFormat)
		}
		return nil
	},
}

var historyTraceCmd = &cobra.Command{
	Use:   "trace <id>",
	Short: "Print the pipeline trace of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory()
		if err != nil {
			return err
		}
		defer closeHistory(db)

		ctx := context.Background()
		if _, err := db.GetRun(ctx, args[0]); err != nil {
			return err
		}
		trace, err := db.TraceOf(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to load trace: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SEQ\tSTAGE\tSTEP\tATTRIBUTES")
		for _, e := range trace {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.Seq, e.StageName, e.StepLabel, e.Attributes)
		}
		return w.Flush()
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a run by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory()
		if err != nil {
			return err
		}
		defer closeHistory(db)

		if err := db.DeleteRun(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete run: %w", err)
		}
		fmt.Printf("Deleted run: %s\n", args[0])
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory()
		if err != nil {
			return err
		}
		defer closeHistory(db)

		n, err := db.ClearRuns(context.Background())
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Printf("Cleared %d runs from history.\n", n)
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory()
		if err != nil {
			return err
		}
		defer closeHistory(db)

		stats, err := db.Stats(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		fmt.Printf("Total runs:        %d\n", stats.TotalRuns)
		fmt.Printf("Approved runs:     %d\n", stats.ApprovedRuns)
		fmt.Printf("Degraded searches: %d\n", stats.DegradedSearches)
		fmt.Printf("Average retries:   %.2f\n", stats.AvgRetries)
		fmt.Printf("Average ATS score: %.1f\n", stats.AvgATSScore)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to list")
	historyShowCmd.Flags().StringVarP(&historyFormat, "format", "f", "md", "Output format (md or html)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyTraceCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatsCmd)
}
