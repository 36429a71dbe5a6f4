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
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erenakay1/CV-Analizer/internal/prompts"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect the agent prompt templates",
	Long: `List and print the system instructions and user templates of the
analyzer, critic and optimizer agents.

Templates are compiled into the binary. Set pipeline.prompts_dir (or
--prompts on analyze) to a directory of <stage>.yaml files to override them.`,
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available prompt templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		table := promptTable()
		names, err := table.Names()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STAGE\tRETRY\tDESCRIPTION")
		for _, name := range names {
			tmpl, err := table.Lookup(name)
			if err != nil {
				return err
			}
			_, retry := tmpl.Source(prompts.Retry)
			fmt.Fprintf(w, "%s\t%v\t%s\n", name, retry, tmpl.Description)
		}
		return w.Flush()
	},
}

var promptsShowCmd = &cobra.Command{
	Use:   "show <stage>",
	Short: "Print the templates of one stage",
	Long: `Print the system instruction and user templates of one stage.

Example:
  cvadvisor prompts show cv_critic`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tmpl, err := promptTable().Lookup(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("# %s\n\n## system\n\n%s\n", tmpl.Name, tmpl.System)
		for _, v := range []prompts.Variant{prompts.Fresh, prompts.Retry} {
			if src, ok := tmpl.Source(v); ok {
				fmt.Printf("\n## %s\n\n%s\n", v, src)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promptsCmd)

	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)
}
