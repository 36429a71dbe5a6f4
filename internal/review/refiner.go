package review

import (
	"context"

	"github.com/erenakay1/CV-Analizer/internal/artifact"
	"github.com/erenakay1/CV-Analizer/internal/llm"
	"github.com/erenakay1/CV-Analizer/internal/prompts"
)

// Refiner is the optimizer stage. It rewrites the document sections affected
// by every issue found during the run.
type Refiner struct {
	gen   llm.Generator
	table *prompts.Table
}

func NewRefiner(gen llm.Generator, table *prompts.Table) *Refiner {
	return &Refiner{gen: gen, table: table}
}

func (r *Refiner) Name() string { return prompts.Optimizer }

func (r *Refiner) Run(ctx context.Context, s *State) (Update, error) {
	issues := s.AllIssues()
	data := newTemplateData(s)
	data.Issues = issuesJSON(issues)

	res, err := generate(ctx, r.gen, r.table, r.Name(), prompts.Fresh, data)
	if err != nil {
		return Update{}, err
	}
	opt, err := artifact.DecodeOptimization(r.Name(), res.Text)
	if err != nil {
		return Update{}, err
	}

	attrs := resultAttributes(res)
	attrs["issues_considered"] = len(issues)
	attrs["sections_improved"] = len(opt.CVOptimization.ImprovedSections)

	return Update{
		Output:       res.Text,
		Optimization: opt,
		Trace:        TraceEntry{StageName: r.Name(), StepLabel: "optimization_complete", Attributes: attrs},
	}, nil
}
