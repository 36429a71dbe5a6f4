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

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/erenakay1/CV-Analizer/internal/config"
	"github.com/erenakay1/CV-Analizer/internal/logging"
)

var version = "0.1.0"

var (
	cfgFile  string
	vcfg     = config.New()
	settings *config.Settings
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "cvadvisor",
	Short: "CV review and job recommendation CLI",
	Long: `A CLI application that reviews a CV with a chain of LLM agents
(analyzer, critic, optimizer) and recommends matching job listings.

The critic can send the analysis back to the analyzer a bounded number of
times before the optimizer rewrites the weak sections. Job listings come
from Turkish job boards for domestic locations and from JSearch for remote
or international ones, with curated listings when every source fails.

Use "cvadvisor analyze --help" for review options.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		settings, err = config.Load(vcfg, cfgFile)
		if err != nil {
			return err
		}
		logger, err = logging.New(settings.LogLevel, settings.LogFormat)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bindFlags makes flags override the matching settings keys.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		if err := vcfg.BindPFlag(key, fs.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ./cvadvisor.yaml or ~/.config/cvadvisor/cvadvisor.yaml)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "json", "Log format (json or console)")
	flags.String("db", "./data/cvadvisor.db", "Database path for run history")
	flags.String("backend", "openai", "LLM backend (openai, openrouter, ollama, gemini)")
	flags.String("model", "", "LLM model (backend default if empty)")

	bindFlags(flags, map[string]string{
		"log-level":  "log_level",
		"log-format": "log_format",
		"db":         "database_path",
		"backend":    "llm.backend",
		"model":      "llm.model",
	})
}
