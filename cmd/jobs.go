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
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erenakay1/CV-Analizer/internal/aggregator"
	"github.com/erenakay1/CV-Analizer/internal/career"
	"github.com/erenakay1/CV-Analizer/internal/export"
)

var (
	jobsQuery    string
	jobsLocation string
	jobsSkills   []string
	jobsExport   string
	jobsJSON     bool
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Search and rank job listings without a CV review",
	Long: `Search job listings for a role and rank them against a list of skills.

Turkish locations are searched on Kariyer.net and Indeed Turkey; remote and
international ones through JSearch (requires RAPIDAPI_KEY). When every
source fails the curated listings are used instead.

Example:
  cvadvisor jobs --query "Backend Developer" --location Ankara --skills Go,PostgreSQL`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit := settings.Jobs.Limit
		if limit < 0 {
			return fmt.Errorf("--limit must not be negative")
		}

		skills := jobsSkills
		if len(skills) == 0 {
			skills = career.DefaultSkills
		}

		agg := buildAggregator()
		defer closeAggregator(agg)

		out := agg.Recommend(context.Background(), aggregator.Request{
			Role:     jobsQuery,
			Location: jobsLocation,
			Skills:   skills,
			Limit:    limit,
		})

		if jobsExport != "" {
			if err := export.WriteFile(jobsExport, career.JobRecords(out.JobRecommendations)); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Recommendations exported to %s\n", jobsExport)
		}

		if jobsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		fmt.Println(out.SearchSummary)
		if out.Degraded {
			fmt.Println("Live sources were unavailable; showing curated listings.")
		}
		if len(out.JobRecommendations) == 0 {
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tSCORE\tTITLE\tCOMPANY\tLOCATION\tPOSTED\tREASONS")
		for i, r := range out.JobRecommendations {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
				i+1, r.MatchScore, r.Title, r.Company, r.Location, r.PostedLabel,
				strings.Join(r.MatchReasons, "; "))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)

	jobsCmd.Flags().StringVarP(&jobsQuery, "query", "q", "", "Role to search for (default \"Software Engineer\")")
	jobsCmd.Flags().StringVarP(&jobsLocation, "location", "l", "", "Location, e.g. Istanbul, Remote or Berlin")
	jobsCmd.Flags().StringSliceVarP(&jobsSkills, "skills", "s", nil, "Skills to match (comma-separated)")
	jobsCmd.Flags().Int("limit", 10, "Listings fetched before ranking")
	jobsCmd.Flags().StringVar(&jobsExport, "export", "", "Write the recommendations to this .xlsx file")
	jobsCmd.Flags().BoolVar(&jobsJSON, "json", false, "Print the result as JSON")
	bindFlags(jobsCmd.Flags(), map[string]string{"limit": "jobs.limit"})
}
