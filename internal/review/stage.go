package review

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/erenakay1/CV-Analizer/internal/artifact"
	"github.com/erenakay1/CV-Analizer/internal/chunker"
	"github.com/erenakay1/CV-Analizer/internal/llm"
	"github.com/erenakay1/CV-Analizer/internal/prompts"
)

// Stage is one reasoning step. It reads the state and returns the changes it
// wants applied; only the Orchestrator writes to the state.
type Stage interface {
	Name() string
	Run(ctx context.Context, s *State) (Update, error)
}

// Update is the partial state produced by one stage call. Exactly one of the
// artifact fields is set, matching the stage that produced it.
type Update struct {
	Output       string
	Analysis     *artifact.Analysis
	Review       *artifact.Review
	Optimization *artifact.Optimization
	Trace        TraceEntry
}

// StageError reports the stage and retry iteration at which a run aborted.
type StageError struct {
	Stage     string
	Iteration int
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed (retry %d): %v", e.Stage, e.Iteration, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// templateData is the union of the fields used by the stage templates.
type templateData struct {
	Document       string
	TargetRole     string
	Language       string
	PreviousOutput string
	MissedIssues   string
	ProducerOutput string
	Issues         string
}

func newTemplateData(s *State) templateData {
	lang := s.DocumentLanguage
	if lang == "English" {
		lang = ""
	}
	return templateData{Document: s.DocumentText, TargetRole: s.TargetRole, Language: lang}
}

// generate renders the stage template and calls the backend.
func generate(ctx context.Context, gen llm.Generator, table *prompts.Table, stage string, v prompts.Variant, data templateData) (*llm.Result, error) {
	tmpl, err := table.Lookup(stage)
	if err != nil {
		return nil, err
	}
	prompt, err := tmpl.Render(v, data)
	if err != nil {
		return nil, err
	}
	return gen.Generate(ctx, prompt)
}

func issuesJSON(issues []artifact.Issue) string {
	if len(issues) == 0 {
		return "[]"
	}
	b, err := json.MarshalIndent(issues, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

func resultAttributes(res *llm.Result) map[string]any {
	return map[string]any{
		"backend":        res.Backend,
		"model":          res.Model,
		"latency_ms":     res.Latency.Milliseconds(),
		"output_preview": chunker.Preview(res.Text, chunker.DefaultPreviewChars),
	}
}
