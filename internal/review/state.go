// Package review runs a candidate document through the analyzer, critic and
// optimizer reasoning stages.
//
// The stages are driven by a small finite-state machine:
//
//	Producing -> Validating -> Retrying -> Producing ...
//	                        \-> Finalizing -> Terminal
//
// The critic (Validator) can send the analysis back to the analyzer
// (Producer) at most MaxRetries times. The optimizer (Refiner) always runs
// exactly once at the end.
package review

import (
	"github.com/erenakay1/CV-Analizer/internal/artifact"
)

// Phase is a state of the review machine.
type Phase int

const (
	Producing Phase = iota
	Validating
	Retrying
	Finalizing
	Terminal
)

func (p Phase) String() string {
	switch p {
	case Producing:
		return "producing"
	case Validating:
		return "validating"
	case Retrying:
		return "retrying"
	case Finalizing:
		return "finalizing"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// TraceEntry records one step of a run. Entries are written for audit and
// debugging and are never read by the state machine.
type TraceEntry struct {
	StageName  string         `json:"stage_name"`
	StepLabel  string         `json:"step_label"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Input is the immutable part of a run.
type Input struct {
	DocumentText     string `json:"document_text"`
	TargetRole       string `json:"target_role,omitempty"`
	TargetLocation   string `json:"target_location,omitempty"`
	DocumentLanguage string `json:"document_language,omitempty"`
}

// State is owned by one Orchestrator.Run call for its whole lifetime.
// Stage outputs hold the latest raw response of each stage and are
// overwritten when a stage runs again.
type State struct {
	Input

	ProducerOutput  string `json:"producer_output"`
	ValidatorOutput string `json:"validator_output"`
	RefinerOutput   string `json:"refiner_output"`

	RetryCount int   `json:"retry_count"`
	Approved   bool  `json:"approved"`
	Phase      Phase `json:"-"`

	Analysis     *artifact.Analysis     `json:"analysis,omitempty"`
	Review       *artifact.Review       `json:"review,omitempty"`
	Optimization *artifact.Optimization `json:"optimization,omitempty"`

	// ProducerIssues are the issues of the latest analysis.
	ProducerIssues []artifact.Issue `json:"producer_issues,omitempty"`
	// ReportedDeficiencies accumulates every missed issue the validator has
	// reported during the run, in order.
	ReportedDeficiencies []artifact.Issue `json:"reported_deficiencies,omitempty"`

	Trace []TraceEntry `json:"trace_log"`
}

func newState(in Input) *State {
	return &State{Input: in, Phase: Producing}
}

// Append adds an entry to the trace log.
func (s *State) Append(e TraceEntry) {
	s.Trace = append(s.Trace, e)
}

// MissedIssues returns the deficiencies flagged by the latest validator
// response.
func (s *State) MissedIssues() []artifact.Issue {
	if s.Review == nil {
		return nil
	}
	return s.Review.CriticReview.MissedIssues
}

// AllIssues is the refiner's input: the producer's latest issues followed by
// every deficiency the validator reported. Duplicates are kept.
func (s *State) AllIssues() []artifact.Issue {
	all := make([]artifact.Issue, 0, len(s.ProducerIssues)+len(s.ReportedDeficiencies))
	all = append(all, s.ProducerIssues...)
	all = append(all, s.ReportedDeficiencies...)
	return all
}
