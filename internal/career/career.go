// Package career runs the full advisory flow for one CV: review, skill
// derivation, job recommendations and history.
package career

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erenakay1/CV-Analizer/internal"
	"github.com/erenakay1/CV-Analizer/internal/aggregator"
	"github.com/erenakay1/CV-Analizer/internal/artifact"
	"github.com/erenakay1/CV-Analizer/internal/detector"
	"github.com/erenakay1/CV-Analizer/internal/document"
	"github.com/erenakay1/CV-Analizer/internal/review"
)

// DefaultSkills are used for matching when the analysis names none.
var DefaultSkills = []string{"Python", "JavaScript", "AWS"}

type Pipeline interface {
	Run(ctx context.Context, in review.Input) (*review.State, error)
}

type Recommender interface {
	Recommend(ctx context.Context, req aggregator.Request) aggregator.Output
}

type History interface {
	SaveRun(ctx context.Context, run internal.AnalysisRun, trace []internal.TraceRecord, jobs []internal.JobRecord) error
}

type LanguageIdentifier interface {
	Identify(text string) detector.Language
}

type Options struct {
	Backend string
	Model   string
}

// Service wires the collaborators of one advisory run. Jobs, History and
// Languages may be nil.
type Service struct {
	Pipeline  Pipeline
	Jobs      Recommender
	History   History
	Languages LanguageIdentifier
	Options   Options
	Log       *zap.Logger

	now   func() time.Time
	newID func() string
}

func New(pipeline Pipeline, jobs Recommender, history History, languages LanguageIdentifier, opts Options, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		Pipeline:  pipeline,
		Jobs:      jobs,
		History:   history,
		Languages: languages,
		Options:   opts,
		Log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

type Request struct {
	Document       *document.Document
	TargetRole     string
	TargetLocation string
	SkipJobs       bool
}

type Result struct {
	RunID     string             `json:"run_id"`
	Document  string             `json:"document"`
	Truncated bool               `json:"truncated,omitempty"`
	Language  detector.Language  `json:"language"`
	Contact   document.Contact   `json:"contact"`
	Skills    []string           `json:"skills"`
	Review    *review.State      `json:"review"`
	Jobs      *aggregator.Output `json:"jobs,omitempty"`
	Persisted bool               `json:"persisted"`
	CreatedAt time.Time          `json:"created_at"`
}

// Analyze reviews req.Document and recommends jobs for it. A review failure
// aborts the call; job search and history failures never do.
func (s *Service) Analyze(ctx context.Context, req Request) (*Result, error) {
	doc := req.Document
	res := &Result{
		RunID:     s.newID(),
		Document:  doc.Name,
		Truncated: doc.Truncated,
		Contact:   document.ExtractContact(doc.Text),
		CreatedAt: s.now(),
	}
	if s.Languages != nil {
		res.Language = s.Languages.Identify(doc.Text)
	}

	log := s.Log.With(zap.String("run_id", res.RunID))
	log.Info("analysis started",
		zap.String("document", doc.Name),
		zap.Int("chars", doc.Chars),
		zap.String("language", res.Language.Code),
		zap.String("target_role", req.TargetRole),
		zap.String("target_location", req.TargetLocation))

	state, err := s.Pipeline.Run(ctx, review.Input{
		DocumentText:     doc.Text,
		TargetRole:       req.TargetRole,
		TargetLocation:   req.TargetLocation,
		DocumentLanguage: res.Language.Name,
	})
	if err != nil {
		return nil, err
	}
	res.Review = state
	res.Skills = DeriveSkills(state.Analysis)

	if s.Jobs != nil && !req.SkipJobs {
		out := s.Jobs.Recommend(ctx, aggregator.Request{
			Role:     req.TargetRole,
			Location: req.TargetLocation,
			Skills:   res.Skills,
		})
		res.Jobs = &out
		state.Append(review.TraceEntry{
			StageName: "job_hunter",
			StepLabel: "job_search_complete",
			Attributes: map[string]any{
				"jobs_found":      out.TotalJobsFound,
				"top_match_score": out.TopMatchScore(),
			},
		})
	}

	if s.History != nil {
		run, trace, jobs := s.records(req, res)
		if err := s.History.SaveRun(ctx, run, trace, jobs); err != nil {
			log.Warn("failed to save run history", zap.Error(err))
		} else {
			res.Persisted = true
		}
	}

	log.Info("analysis complete",
		zap.Bool("approved", state.Approved),
		zap.Int("retry_count", state.RetryCount),
		zap.Int("skills", len(res.Skills)))
	return res, nil
}

// DeriveSkills picks the skills used for job matching: the analysis' key
// skills, else the skills named in its skill gaps, else DefaultSkills.
func DeriveSkills(a *artifact.Analysis) []string {
	if a != nil {
		if skills := nonBlank(a.CVAnalysis.OptimizedSections.KeySkills); len(skills) > 0 {
			return skills
		}
		gaps := make([]string, 0, len(a.CVAnalysis.SkillGaps))
		for _, g := range a.CVAnalysis.SkillGaps {
			gaps = append(gaps, g.Skill)
		}
		if skills := nonBlank(gaps); len(skills) > 0 {
			return skills
		}
	}
	return append([]string(nil), DefaultSkills...)
}

func nonBlank(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (s *Service) records(req Request, res *Result) (internal.AnalysisRun, []internal.TraceRecord, []internal.JobRecord) {
	state := res.Review
	run := internal.AnalysisRun{
		ID:               res.RunID,
		DocumentName:     res.Document,
		DocumentLanguage: res.Language.Name,
		TargetRole:       req.TargetRole,
		TargetLocation:   req.TargetLocation,
		Backend:          s.Options.Backend,
		Model:            s.Options.Model,
		Approved:         state.Approved,
		RetryCount:       state.RetryCount,
		Timestamp:        res.CreatedAt,
	}
	if state.Analysis != nil {
		run.ATSScore = state.Analysis.CVAnalysis.ATSScore
		run.AnalysisJSON = marshal(state.Analysis)
	}
	if state.Optimization != nil {
		run.OptimizationJSON = marshal(state.Optimization)
	}

	trace := make([]internal.TraceRecord, len(state.Trace))
	for i, e := range state.Trace {
		trace[i] = internal.TraceRecord{Seq: i, StageName: e.StageName, StepLabel: e.StepLabel}
		if len(e.Attributes) > 0 {
			trace[i].Attributes = marshal(e.Attributes)
		}
	}

	var jobs []internal.JobRecord
	if res.Jobs != nil {
		run.JobsFound = res.Jobs.TotalJobsFound
		run.TopMatchScore = res.Jobs.TopMatchScore()
		run.Degraded = res.Jobs.Degraded
		jobs = JobRecords(res.Jobs.JobRecommendations)
	}
	return run, trace, jobs
}

// JobRecords numbers recs from 1 in their ranked order.
func JobRecords(recs []aggregator.Recommendation) []internal.JobRecord {
	jobs := make([]internal.JobRecord, 0, len(recs))
	for i, r := range recs {
		jobs = append(jobs, internal.JobRecord{
			Rank:           i + 1,
			Title:          r.Title,
			Company:        r.Company,
			Location:       r.Location,
			SalaryText:     r.SalaryText,
			URL:            r.URL,
			PostedLabel:    r.PostedLabel,
			EmploymentType: r.EmploymentType,
			MatchScore:     r.MatchScore,
			MatchReasons:   r.MatchReasons,
		})
	}
	return jobs
}

func marshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
