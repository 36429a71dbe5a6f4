package review

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/erenakay1/CV-Analizer/internal/llm"
	"github.com/erenakay1/CV-Analizer/internal/prompts"
)

const (
	DefaultMaxRetries   = 2
	DefaultStageTimeout = 90 * time.Second
)

type Config struct {
	MaxRetries   int
	StageTimeout time.Duration
}

type Orchestrator struct {
	producer  Stage
	validator Stage
	refiner   Stage
	config    Config
	log       *zap.Logger
}

func New(producer, validator, refiner Stage, config Config, log *zap.Logger) *Orchestrator {
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		producer:  producer,
		validator: validator,
		refiner:   refiner,
		config:    config,
		log:       log,
	}
}

// NewWithGenerator wires the analyzer, critic and optimizer stages to one
// backend and prompt table.
func NewWithGenerator(gen llm.Generator, table *prompts.Table, config Config, log *zap.Logger) *Orchestrator {
	return New(
		NewProducer(gen, table),
		NewValidator(gen, table),
		NewRefiner(gen, table),
		config, log,
	)
}

// Run drives a fresh State from Producing to Terminal. Any stage failure
// aborts the run and is returned as a *StageError; no partial state is
// returned in that case.
func (o *Orchestrator) Run(ctx context.Context, in Input) (*State, error) {
	s := newState(in)

	for s.Phase != Terminal {
		if err := ctx.Err(); err != nil {
			return nil, &StageError{Stage: s.Phase.String(), Iteration: s.RetryCount, Err: err}
		}

		switch s.Phase {
		case Producing:
			upd, err := o.runStage(ctx, o.producer, s)
			if err != nil {
				return nil, err
			}
			s.ProducerOutput = upd.Output
			s.Analysis = upd.Analysis
			if upd.Analysis != nil {
				s.ProducerIssues = upd.Analysis.CVAnalysis.Issues
			}
			s.Append(upd.Trace)
			s.Phase = Validating

		case Validating:
			upd, err := o.runStage(ctx, o.validator, s)
			if err != nil {
				return nil, err
			}
			s.ValidatorOutput = upd.Output
			s.Review = upd.Review
			s.Approved = false
			if upd.Review != nil {
				s.Approved = upd.Review.CriticReview.Approved
				s.ReportedDeficiencies = append(s.ReportedDeficiencies, upd.Review.CriticReview.MissedIssues...)
			}
			s.Append(upd.Trace)
			s.Phase = Route(s.Approved, s.RetryCount, o.config.MaxRetries)
			o.log.Debug("review routed",
				zap.Bool("approved", s.Approved),
				zap.Int("retry_count", s.RetryCount),
				zap.Int("max_retries", o.config.MaxRetries),
				zap.Stringer("next", s.Phase))

		case Retrying:
			s.RetryCount++
			s.Append(TraceEntry{
				StageName: "retry_controller",
				StepLabel: "retry",
				Attributes: map[string]any{
					"retry_count":   s.RetryCount,
					"max_retries":   o.config.MaxRetries,
					"missed_issues": len(s.MissedIssues()),
					"message":       fmt.Sprintf("Analysis not approved. Retry %d/%d sent back to the analyzer.", s.RetryCount, o.config.MaxRetries),
				},
			})
			s.Phase = Producing

		case Finalizing:
			upd, err := o.runStage(ctx, o.refiner, s)
			if err != nil {
				return nil, err
			}
			s.RefinerOutput = upd.Output
			s.Optimization = upd.Optimization
			s.Append(upd.Trace)
			s.Phase = Terminal
		}
	}

	o.log.Info("review complete",
		zap.Bool("approved", s.Approved),
		zap.Int("retry_count", s.RetryCount),
		zap.Int("trace_entries", len(s.Trace)))
	return s, nil
}

func (o *Orchestrator) runStage(ctx context.Context, stage Stage, s *State) (Update, error) {
	stageCtx := ctx
	if o.config.StageTimeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, o.config.StageTimeout)
		defer cancel()
	}

	start := time.Now()
	upd, err := stage.Run(stageCtx, s)
	if err != nil {
		o.log.Error("stage failed",
			zap.String("stage", stage.Name()),
			zap.Int("retry_count", s.RetryCount),
			zap.Error(err))
		return Update{}, &StageError{Stage: stage.Name(), Iteration: s.RetryCount, Err: err}
	}
	o.log.Debug("stage complete",
		zap.String("stage", stage.Name()),
		zap.Int("retry_count", s.RetryCount),
		zap.Duration("elapsed", time.Since(start)))
	return upd, nil
}
