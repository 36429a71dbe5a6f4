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
	"path/filepath"

	"go.uber.org/zap"

	"github.com/erenakay1/CV-Analizer/internal/aggregator"
	"github.com/erenakay1/CV-Analizer/internal/career"
	"github.com/erenakay1/CV-Analizer/internal/detector"
	"github.com/erenakay1/CV-Analizer/internal/document"
	"github.com/erenakay1/CV-Analizer/internal/jobsource"
	"github.com/erenakay1/CV-Analizer/internal/llm"
	"github.com/erenakay1/CV-Analizer/internal/prompts"
	"github.com/erenakay1/CV-Analizer/internal/querytr"
	"github.com/erenakay1/CV-Analizer/internal/review"
	"github.com/erenakay1/CV-Analizer/internal/store"
)

// openHistory opens the run history database, creating its directory.
func openHistory() (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(settings.DatabasePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := store.New(settings.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func promptTable() *prompts.Table {
	if dir := settings.Pipeline.PromptsDir; dir != "" {
		return prompts.New(os.DirFS(dir))
	}
	return prompts.Default()
}

// documentLimits returns the extraction limits from the document settings.
func documentLimits() document.Limits {
	limits := document.Limits{
		MaxChars: settings.Document.MaxChars,
		MaxBytes: settings.Document.MaxUploadBytes,
		Formats:  settings.Document.Formats,
	}
	if limits.MaxChars <= 0 {
		limits.MaxChars = document.MaxDocumentChars
	}
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = document.MaxUploadBytes
	}
	return limits
}

// buildPipeline constructs the review orchestrator for the configured
// backend and returns the generator behind it. It fails with
// config.ErrConfigurationMissing when the backend's API key is absent.
func buildPipeline(ctx context.Context) (*review.Orchestrator, llm.Generator, error) {
	if err := settings.Require(settings.BackendCredentials()...); err != nil {
		return nil, nil, err
	}
	gen, err := llm.New(ctx, settings.LLM.Backend, llm.Options{
		APIKey:      settings.APIKey(),
		BaseURL:     settings.BaseURL(),
		Model:       settings.LLM.Model,
		Temperature: settings.LLM.Temperature,
		MaxTokens:   settings.LLM.MaxTokens,
		Timeout:     settings.LLM.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return review.NewWithGenerator(gen, promptTable(), review.Config{
		MaxRetries:   settings.Pipeline.MaxRetries,
		StageTimeout: settings.Pipeline.StageTimeout,
	}, logger), gen, nil
}

func queryTranslator() querytr.Translator {
	if creds := settings.Jobs.TranslateCredentials; creds != "" {
		return querytr.NewGoogleTranslator(creds, logger)
	}
	return querytr.NewPhraseTable()
}

// buildAggregator wires the domestic scrapers and, when a RapidAPI key is
// configured, the JSearch API for the global bucket.
func buildAggregator() *aggregator.Controller {
	timeout := settings.Jobs.SourceTimeout
	pacer := jobsource.NewPacer(settings.Jobs.MinDelay, settings.Jobs.MaxDelay)

	domestic := []jobsource.Source{
		jobsource.NewKariyerSource(pacer, timeout),
		jobsource.NewIndeedSource(pacer, queryTranslator(), timeout, logger),
	}

	var global []jobsource.Source
	if settings.Jobs.RapidAPIKey != "" {
		global = append(global, jobsource.NewJSearchSource(settings.Jobs.RapidAPIKey, timeout))
	} else {
		logger.Warn("RAPIDAPI_KEY is not set, global searches use curated listings")
	}

	return aggregator.New(aggregator.Config{
		Limit:         settings.Jobs.Limit,
		SourceTimeout: timeout,
	}, domestic, global, logger)
}

func buildService(pipeline career.Pipeline, jobs career.Recommender, history career.History) *career.Service {
	return career.New(pipeline, jobs, history, detector.New(), career.Options{
		Backend: settings.LLM.Backend,
		Model:   settings.LLM.Model,
	}, logger)
}

// closeAggregator releases the job sources, logging instead of failing the
// command.
func closeAggregator(jobs *aggregator.Controller) {
	if err := jobs.Close(); err != nil {
		logger.Warn("failed to close job sources", zap.Error(err))
	}
}

// closeHistory closes db, logging instead of failing the command.
func closeHistory(db *store.Store) {
	if err := db.Close(); err != nil {
		logger.Warn("failed to close database", zap.Error(err))
	}
}
