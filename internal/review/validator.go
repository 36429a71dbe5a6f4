package review

import (
	"context"

	"github.com/erenakay1/CV-Analizer/internal/artifact"
	"github.com/erenakay1/CV-Analizer/internal/llm"
	"github.com/erenakay1/CV-Analizer/internal/prompts"
)

// Validator is the critic stage: it audits the current analysis and decides
// whether it is complete.
type Validator struct {
	gen   llm.Generator
	table *prompts.Table
}

func NewValidator(gen llm.Generator, table *prompts.Table) *Validator {
	return &Validator{gen: gen, table: table}
}

func (v *Validator) Name() string { return prompts.Critic }

func (v *Validator) Run(ctx context.Context, s *State) (Update, error) {
	data := newTemplateData(s)
	data.ProducerOutput = s.ProducerOutput

	res, err := generate(ctx, v.gen, v.table, v.Name(), prompts.Fresh, data)
	if err != nil {
		return Update{}, err
	}
	review, err := artifact.DecodeReview(v.Name(), res.Text)
	if err != nil {
		return Update{}, err
	}

	attrs := resultAttributes(res)
	attrs["approved"] = review.CriticReview.Approved
	attrs["retry_count"] = s.RetryCount
	attrs["missed_issues"] = len(review.CriticReview.MissedIssues)

	return Update{
		Output: res.Text,
		Review: review,
		Trace:  TraceEntry{StageName: v.Name(), StepLabel: "review_complete", Attributes: attrs},
	}, nil
}
