package review

import (
	"context"

	"github.com/erenakay1/CV-Analizer/internal/artifact"
	"github.com/erenakay1/CV-Analizer/internal/chunker"
	"github.com/erenakay1/CV-Analizer/internal/llm"
	"github.com/erenakay1/CV-Analizer/internal/prompts"
)

// Producer is the analyzer stage. On a retry it is shown its previous output
// and the issues the validator flagged, and asked to extend its analysis.
type Producer struct {
	gen          llm.Generator
	table        *prompts.Table
	contextChars int
}

func NewProducer(gen llm.Generator, table *prompts.Table) *Producer {
	return &Producer{gen: gen, table: table, contextChars: chunker.DefaultContextChars}
}

func (p *Producer) Name() string { return prompts.Analyzer }

func (p *Producer) Run(ctx context.Context, s *State) (Update, error) {
	data := newTemplateData(s)
	variant := prompts.Fresh
	if s.RetryCount > 0 {
		variant = prompts.Retry
		data.PreviousOutput, _ = chunker.Truncate(s.ProducerOutput, p.contextChars)
		data.MissedIssues = issuesJSON(s.MissedIssues())
	}

	res, err := generate(ctx, p.gen, p.table, p.Name(), variant, data)
	if err != nil {
		return Update{}, err
	}
	analysis, err := artifact.DecodeAnalysis(p.Name(), res.Text)
	if err != nil {
		return Update{}, err
	}

	attrs := resultAttributes(res)
	attrs["retry_iteration"] = s.RetryCount
	attrs["is_retry"] = s.RetryCount > 0
	attrs["ats_score"] = analysis.CVAnalysis.ATSScore
	attrs["issues_found"] = len(analysis.CVAnalysis.Issues)

	return Update{
		Output:   res.Text,
		Analysis: analysis,
		Trace:    TraceEntry{StageName: p.Name(), StepLabel: "analysis_complete", Attributes: attrs},
	}, nil
}
