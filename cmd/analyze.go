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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erenakay1/CV-Analizer/internal/career"
	"github.com/erenakay1/CV-Analizer/internal/export"
	"github.com/erenakay1/CV-Analizer/internal/report"
)

var (
	cvFile         string
	targetRole     string
	targetLocation string
	skipJobs       bool
	noHistory      bool
	reportFile     string
	exportFile     string
	jsonOutput     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Review a CV and recommend jobs",
	Long: `Review a CV with the analyzer, critic and optimizer agents, then
search job listings that match the skills found in it.

Supported input: .txt, .md, .docx (up to 5 MB).

The report is written as markdown, or as a standalone HTML page when the
--report path ends in .html. --export writes the recommendations to an
.xlsx workbook.

Example:
  cvadvisor analyze -i cv.docx --role "Backend Developer" --location Istanbul --report review.html`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		limits := documentLimits()
		doc, err := limits.ReadFile(cvFile)
		if err != nil {
			return fmt.Errorf("failed to read CV: %w", err)
		}
		if doc.Truncated {
			fmt.Fprintf(os.Stderr, "CV truncated to %d characters\n", limits.MaxChars)
		}

		pipeline, _, err := buildPipeline(ctx)
		if err != nil {
			return err
		}

		var history career.History
		if !noHistory {
			db, err := openHistory()
			if err != nil {
				return err
			}
			defer closeHistory(db)
			history = db
		}

		var jobs career.Recommender
		if !skipJobs {
			agg := buildAggregator()
			defer closeAggregator(agg)
			jobs = agg
		}

		res, err := buildService(pipeline, jobs, history).Analyze(ctx, career.Request{
			Document:       doc,
			TargetRole:     targetRole,
			TargetLocation: targetLocation,
			SkipJobs:       skipJobs,
		})
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		rep := report.FromResult(res)
		if reportFile != "" {
			if err := writeReport(reportFile, rep); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Report written to %s\n", reportFile)
		}
		if exportFile != "" {
			if err := export.WriteFile(exportFile, rep.Jobs); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Recommendations exported to %s\n", exportFile)
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		if reportFile == "" {
			fmt.Print(rep.Markdown())
			return nil
		}

		state := res.Review
		fmt.Printf("Run %s: approved=%v retries=%d\n", res.RunID, state.Approved, state.RetryCount)
		if state.Analysis != nil {
			fmt.Printf("ATS score: %g/100\n", state.Analysis.CVAnalysis.ATSScore)
		}
		if res.Jobs != nil {
			fmt.Println(res.Jobs.SearchSummary)
		}
		return nil
	},
}

func writeReport(path string, rep report.Report) error {
	content := rep.Markdown()
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".html" || ext == ".htm" {
		content = rep.HTML()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&cvFile, "input", "i", "", "CV file to review (required)")
	analyzeCmd.Flags().StringVarP(&targetRole, "role", "r", "", "Target role, e.g. \"Backend Developer\"")
	analyzeCmd.Flags().StringVarP(&targetLocation, "location", "l", "", "Target location, e.g. Istanbul or Remote")
	analyzeCmd.Flags().BoolVar(&skipJobs, "no-jobs", false, "Skip the job search")
	analyzeCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the run in the history database")
	analyzeCmd.Flags().StringVarP(&reportFile, "report", "o", "", "Write the report to this file (.md or .html)")
	analyzeCmd.Flags().StringVar(&exportFile, "export", "", "Write the job recommendations to this .xlsx file")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full result as JSON")

	analyzeCmd.Flags().Int("max-retries", 2, "Critic rejections allowed before the optimizer runs")
	analyzeCmd.Flags().String("prompts", "", "Directory of prompt overrides (<stage>.yaml)")
	bindFlags(analyzeCmd.Flags(), map[string]string{
		"max-retries": "pipeline.max_retries",
		"prompts":     "pipeline.prompts_dir",
	})

	analyzeCmd.MarkFlagRequired("input")
}
