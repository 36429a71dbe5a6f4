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
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erenakay1/CV-Analizer/internal/config"
	"github.com/erenakay1/CV-Analizer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the review and job search over HTTP",
	Long: `Start the HTTP API.

Routes:
  POST /analyze-cv         multipart: file, target_role, target_location
  POST /jobs/search        JSON: {"query", "location", "skills", "limit"}
  GET  /health
  GET  /runs               recent runs (?limit=20)
  GET  /runs/:id           run, trace and recommendations
  GET  /runs/:id/report    HTML report (?format=md for markdown)
  GET  /runs/:id/export    recommendations as .xlsx

The server starts without an LLM API key; /analyze-cv then answers 503.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := openHistory()
		if err != nil {
			return err
		}
		defer closeHistory(db)

		jobs := buildAggregator()
		defer closeAggregator(jobs)
		deps := server.Deps{Jobs: jobs, History: db}

		pipeline, gen, err := buildPipeline(ctx)
		switch {
		case err == nil:
			deps.Analyzer = buildService(pipeline, jobs, db)
			deps.Backend = gen
			checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := gen.IsAvailable(checkCtx); err != nil {
				logger.Warn("reasoning backend is not reachable", zap.String("backend", settings.LLM.Backend), zap.Error(err))
			}
			cancel()
		case errors.Is(err, config.ErrConfigurationMissing):
			logger.Warn("CV analysis disabled", zap.Error(err))
			deps.AnalyzerErr = err
		default:
			return err
		}

		srv := server.New(deps, server.Config{
			Documents: documentLimits(),
			Backend:   settings.LLM.Backend,
			Model:     settings.LLM.Model,
		}, logger)

		errc := make(chan error, 1)
		go func() { errc <- srv.Listen(settings.ListenAddr) }()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8000", "Listen address")
	bindFlags(serveCmd.Flags(), map[string]string{"addr": "listen_addr"})
}
