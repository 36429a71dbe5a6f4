package career

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erenakay1/CV-Analizer/internal"
	"github.com/erenakay1/CV-Analizer/internal/aggregator"
	"github.com/erenakay1/CV-Analizer/internal/artifact"
	"github.com/erenakay1/CV-Analizer/internal/detector"
	"github.com/erenakay1/CV-Analizer/internal/document"
	"github.com/erenakay1/CV-Analizer/internal/jobsource"
	"github.com/erenakay1/CV-Analizer/internal/review"
)

type fakePipeline struct {
	got   review.Input
	state *review.State
	err   error
}

func (f *fakePipeline) Run(_ context.Context, in review.Input) (*review.State, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	f.state.Input = in
	return f.state, nil
}

type fakeRecommender struct {
	got aggregator.Request
	out aggregator.Output
}

func (f *fakeRecommender) Recommend(_ context.Context, req aggregator.Request) aggregator.Output {
	f.got = req
	return f.out
}

type fakeHistory struct {
	run   internal.AnalysisRun
	trace []internal.TraceRecord
	jobs  []internal.JobRecord
	err   error
}

func (f *fakeHistory) SaveRun(_ context.Context, run internal.AnalysisRun, trace []internal.TraceRecord, jobs []internal.JobRecord) error {
	f.run, f.trace, f.jobs = run, trace, jobs
	return f.err
}

type fixedLanguage detector.Language

func (l fixedLanguage) Identify(string) detector.Language { return detector.Language(l) }

func analysisWith(keySkills []string, gaps ...string) *artifact.Analysis {
	a := &artifact.Analysis{}
	a.CVAnalysis.ATSScore = 68
	a.CVAnalysis.OptimizedSections.KeySkills = keySkills
	for _, g := range gaps {
		a.CVAnalysis.SkillGaps = append(a.CVAnalysis.SkillGaps, artifact.SkillGap{Skill: g})
	}
	return a
}

func reviewedState() *review.State {
	return &review.State{
		Approved:   true,
		RetryCount: 1,
		Analysis:   analysisWith([]string{"Go", "Kubernetes"}),
		Trace: []review.TraceEntry{
			{StageName: "cv_analyzer", StepLabel: "analysis_complete", Attributes: map[string]any{"ats_score": 68}},
			{StageName: "cv_critic", StepLabel: "review_complete"},
		},
	}
}

func newTestService(p Pipeline, r Recommender, h History) *Service {
	s := New(p, r, h, fixedLanguage{Code: "tr", Name: "Turkish"}, Options{Backend: "openai", Model: "gpt-4o-mini"}, nil)
	s.newID = func() string { return "run-1" }
	s.now = func() time.Time { return time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestDeriveSkills(t *testing.T) {
	tests := []struct {
		name string
		in   *artifact.Analysis
		want []string
	}{
		{"key skills", analysisWith([]string{"Go", " ", "SQL"}, "Rust"), []string{"Go", "SQL"}},
		{"skill gaps", analysisWith(nil, "Rust", "", "Terraform"), []string{"Rust", "Terraform"}},
		{"nothing named", analysisWith([]string{""}), DefaultSkills},
		{"no analysis", nil, DefaultSkills},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveSkills(tt.in))
		})
	}
}

func TestDeriveSkills_DefaultIsACopy(t *testing.T) {
	got := DeriveSkills(nil)
	got[0] = "changed"
	assert.Equal(t, "Python", DefaultSkills[0])
}

func TestAnalyze(t *testing.T) {
	pipeline := &fakePipeline{state: reviewedState()}
	jobs := &fakeRecommender{out: aggregator.Output{
		JobRecommendations: []aggregator.Recommendation{{
			Listing:      jobsource.Listing{Title: "Go Developer", Company: "Acme"},
			MatchScore:   95,
			MatchReasons: []string{"2 skills match: Go, Kubernetes"},
		}},
		SearchSummary:  "Found 1 Backend Engineer positions, showing top 5 matches",
		TotalJobsFound: 1,
	}}
	history := &fakeHistory{}

	doc := &document.Document{Name: "cv.txt", Text: "Jane Doe jane@example.com", Chars: 25}
	res, err := newTestService(pipeline, jobs, history).Analyze(context.Background(), Request{
		Document:       doc,
		TargetRole:     "Backend Engineer",
		TargetLocation: "Istanbul",
	})
	require.NoError(t, err)

	assert.Equal(t, review.Input{
		DocumentText:     "Jane Doe jane@example.com",
		TargetRole:       "Backend Engineer",
		TargetLocation:   "Istanbul",
		DocumentLanguage: "Turkish",
	}, pipeline.got)
	assert.Equal(t, aggregator.Request{Role: "Backend Engineer", Location: "Istanbul", Skills: []string{"Go", "Kubernetes"}}, jobs.got)

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, "jane@example.com", res.Contact.Email)
	assert.True(t, res.Persisted)
	require.NotNil(t, res.Jobs)

	last := res.Review.Trace[len(res.Review.Trace)-1]
	assert.Equal(t, review.TraceEntry{
		StageName:  "job_hunter",
		StepLabel:  "job_search_complete",
		Attributes: map[string]any{"jobs_found": 1, "top_match_score": 95},
	}, last)

	assert.Equal(t, internal.AnalysisRun{
		ID:               "run-1",
		DocumentName:     "cv.txt",
		DocumentLanguage: "Turkish",
		TargetRole:       "Backend Engineer",
		TargetLocation:   "Istanbul",
		Backend:          "openai",
		Model:            "gpt-4o-mini",
		Approved:         true,
		RetryCount:       1,
		ATSScore:         68,
		AnalysisJSON:     history.run.AnalysisJSON,
		JobsFound:        1,
		TopMatchScore:    95,
		Timestamp:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}, history.run)
	assert.Contains(t, history.run.AnalysisJSON, `"key_skills":["Go","Kubernetes"]`)

	wantTrace := []internal.TraceRecord{
		{Seq: 0, StageName: "cv_analyzer", StepLabel: "analysis_complete", Attributes: `{"ats_score":68}`},
		{Seq: 1, StageName: "cv_critic", StepLabel: "review_complete"},
		{Seq: 2, StageName: "job_hunter", StepLabel: "job_search_complete", Attributes: `{"jobs_found":1,"top_match_score":95}`},
	}
	if diff := cmp.Diff(wantTrace, history.trace); diff != "" {
		t.Errorf("trace records mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, history.jobs, 1)
	assert.Equal(t, 1, history.jobs[0].Rank)
	assert.Equal(t, "Go Developer", history.jobs[0].Title)
}

func TestAnalyze_PipelineFailureAborts(t *testing.T) {
	boom := errors.New("backend down")
	jobs := &fakeRecommender{}
	history := &fakeHistory{}

	res, err := newTestService(&fakePipeline{err: boom}, jobs, history).
		Analyze(context.Background(), Request{Document: &document.Document{Name: "cv.txt", Text: "cv"}})

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, res)
	assert.Empty(t, jobs.got.Role)
	assert.Empty(t, history.run.ID)
}

func TestAnalyze_HistoryFailureIsNotFatal(t *testing.T) {
	history := &fakeHistory{err: errors.New("disk full")}

	res, err := newTestService(&fakePipeline{state: reviewedState()}, nil, history).
		Analyze(context.Background(), Request{Document: &document.Document{Name: "cv.txt", Text: "cv"}})

	require.NoError(t, err)
	assert.False(t, res.Persisted)
	assert.Nil(t, res.Jobs)
	assert.Len(t, res.Review.Trace, 2)
}

func TestAnalyze_SkipJobs(t *testing.T) {
	jobs := &fakeRecommender{}
	res, err := newTestService(&fakePipeline{state: reviewedState()}, jobs, nil).
		Analyze(context.Background(), Request{Document: &document.Document{Name: "cv.txt", Text: "cv"}, SkipJobs: true})

	require.NoError(t, err)
	assert.Nil(t, res.Jobs)
	assert.Empty(t, jobs.got.Skills)
	assert.False(t, res.Persisted)
}
