package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erenakay1/CV-Analizer/internal"
	"github.com/erenakay1/CV-Analizer/internal/aggregator"
	"github.com/erenakay1/CV-Analizer/internal/career"
	"github.com/erenakay1/CV-Analizer/internal/config"
	"github.com/erenakay1/CV-Analizer/internal/document"
	"github.com/erenakay1/CV-Analizer/internal/jobsource"
	"github.com/erenakay1/CV-Analizer/internal/store"
)

type fakeAnalyzer struct {
	mu  sync.Mutex
	got []career.Request
	err error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req career.Request) (*career.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, req)
	if f.err != nil {
		return nil, f.err
	}
	return &career.Result{RunID: "run-1", Document: req.Document.Name, Skills: []string{"Go"}}, nil
}

type fakeRecommender struct {
	got aggregator.Request
}

func (f *fakeRecommender) Recommend(_ context.Context, req aggregator.Request) aggregator.Output {
	f.got = req
	return aggregator.Output{
		JobRecommendations: []aggregator.Recommendation{{
			Listing:    jobsource.Listing{Title: "Go Developer", Company: "Acme"},
			MatchScore: 80,
		}},
		SearchSummary:  "Found 1 Go Developer positions, showing top 5 matches",
		TotalJobsFound: 1,
	}
}

func newHistory(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	err = db.SaveRun(context.Background(), internal.AnalysisRun{
		ID:           "run-42",
		DocumentName: "cv.txt",
		TargetRole:   "Backend Engineer",
		Backend:      "openai",
		Approved:     true,
		ATSScore:     70,
		AnalysisJSON: `{"cv_analysis":{"ats_score":70,"issues":[]}}`,
		JobsFound:    1,
		Timestamp:    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}, []internal.TraceRecord{
		{Seq: 0, StageName: "cv_analyzer", StepLabel: "analysis_complete"},
	}, []internal.JobRecord{
		{Rank: 1, Title: "Go Developer", Company: "Acme", URL: "https://jobs.example/1", MatchScore: 80},
	})
	require.NoError(t, err)
	return db
}

func upload(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze-cv", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func do(t *testing.T, s *Server, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	s := New(Deps{Analyzer: &fakeAnalyzer{}}, Config{Backend: "openai", Model: "gpt-4o-mini"}, nil)

	code, body := do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "openai", body["backend"])
	assert.Equal(t, true, body["ready"])
}

type fakeChecker struct{ err error }

func (f fakeChecker) IsAvailable(context.Context) error { return f.err }

func TestHealth_BackendCheck(t *testing.T) {
	s := New(Deps{Analyzer: &fakeAnalyzer{}, Backend: fakeChecker{}}, Config{}, nil)
	_, body := do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, true, body["ready"])
	assert.NotContains(t, body, "backend_error")

	s = New(Deps{Analyzer: &fakeAnalyzer{}, Backend: fakeChecker{err: errors.New("connection refused")}}, Config{}, nil)
	code, body := do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["ready"])
	assert.Equal(t, "connection refused", body["backend_error"])

	s = New(Deps{Backend: fakeChecker{}}, Config{}, nil)
	_, body = do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, false, body["ready"])
}

func TestAnalyzeCV_DocumentLimits(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	s := New(Deps{Analyzer: analyzer}, Config{Documents: document.Limits{MaxChars: 8, Formats: []string{"txt"}}}, nil)

	code, _ := do(t, s, upload(t, "cv.txt", "Jane Doe\nGo developer", nil))
	require.Equal(t, http.StatusOK, code)
	require.Len(t, analyzer.got, 1)
	assert.True(t, analyzer.got[0].Document.Truncated)
	assert.Equal(t, "Jane Doe"+document.TruncationMarker, analyzer.got[0].Document.Text)

	code, body := do(t, s, upload(t, "cv.md", "# Jane", nil))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "unsupported input")

	s = New(Deps{Analyzer: analyzer}, Config{Documents: document.Limits{MaxBytes: 4}}, nil)
	code, body = do(t, s, upload(t, "cv.txt", "Jane Doe", nil))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "larger than 4 bytes")
}

func TestAnalyzeCV(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	s := New(Deps{Analyzer: analyzer}, Config{}, nil)

	code, body := do(t, s, upload(t, "cv.txt", "Jane Doe\nGo developer", map[string]string{
		"target_role":     "Backend Engineer",
		"target_location": "Istanbul",
	}))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "run-1", body["run_id"])

	require.Len(t, analyzer.got, 1)
	req := analyzer.got[0]
	assert.Equal(t, "Backend Engineer", req.TargetRole)
	assert.Equal(t, "Istanbul", req.TargetLocation)
	assert.Equal(t, "Jane Doe\nGo developer", req.Document.Text)
	assert.False(t, req.SkipJobs)
}

func TestAnalyzeCV_Errors(t *testing.T) {
	tests := []struct {
		name     string
		deps     Deps
		req      func(t *testing.T) *http.Request
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing file",
			deps:     Deps{Analyzer: &fakeAnalyzer{}},
			req:      func(t *testing.T) *http.Request { return upload(t, "", "", map[string]string{"target_role": "x"}) },
			wantCode: http.StatusBadRequest,
			wantErr:  "file is required",
		},
		{
			name:     "unsupported format",
			deps:     Deps{Analyzer: &fakeAnalyzer{}},
			req:      func(t *testing.T) *http.Request { return upload(t, "cv.pdf", "%PDF-1.4", nil) },
			wantCode: http.StatusBadRequest,
			wantErr:  "unsupported input",
		},
		{
			name:     "empty document",
			deps:     Deps{Analyzer: &fakeAnalyzer{}},
			req:      func(t *testing.T) *http.Request { return upload(t, "cv.txt", "  \n ", nil) },
			wantCode: http.StatusBadRequest,
			wantErr:  "no text",
		},
		{
			name:     "backend not configured",
			deps:     Deps{AnalyzerErr: fmt.Errorf("%w: OPENAI_API_KEY", config.ErrConfigurationMissing)},
			req:      func(t *testing.T) *http.Request { return upload(t, "cv.txt", "cv", nil) },
			wantCode: http.StatusServiceUnavailable,
			wantErr:  "OPENAI_API_KEY",
		},
		{
			name:     "no analyzer at all",
			deps:     Deps{},
			req:      func(t *testing.T) *http.Request { return upload(t, "cv.txt", "cv", nil) },
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:     "pipeline failure",
			deps:     Deps{Analyzer: &fakeAnalyzer{err: errors.New("cv_critic: malformed")}},
			req:      func(t *testing.T) *http.Request { return upload(t, "cv.md", "# Jane", nil) },
			wantCode: http.StatusInternalServerError,
			wantErr:  "cv_critic: malformed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, New(tt.deps, Config{}, nil), tt.req(t))
			assert.Equal(t, tt.wantCode, code)
			require.Contains(t, body, "error")
			assert.Contains(t, body["error"], tt.wantErr)
		})
	}
}

func TestSearchJobs(t *testing.T) {
	jobs := &fakeRecommender{}
	s := New(Deps{Jobs: jobs}, Config{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/jobs/search",
		strings.NewReader(`{"query": "Go Developer", "location": "Remote", "skills": ["Go", "SQL"], "limit": 5}`))
	req.Header.Set("Content-Type", "application/json")

	code, body := do(t, s, req)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, aggregator.Request{Role: "Go Developer", Location: "Remote", Skills: []string{"Go", "SQL"}, Limit: 5}, jobs.got)
	assert.Equal(t, float64(1), body["total_jobs_found"])
	assert.Len(t, body["job_recommendations"], 1)
}

func TestSearchJobs_BadRequests(t *testing.T) {
	s := New(Deps{Jobs: &fakeRecommender{}}, Config{}, nil)

	for _, payload := range []string{`{"query": `, `{"limit": -1}`} {
		req := httptest.NewRequest(http.MethodPost, "/jobs/search", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		code, _ := do(t, s, req)
		assert.Equal(t, http.StatusBadRequest, code, payload)
	}

	code, _ := do(t, New(Deps{}, Config{}, nil), httptest.NewRequest(http.MethodPost, "/jobs/search", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestRuns(t *testing.T) {
	s := New(Deps{History: newHistory(t)}, Config{}, nil)

	code, body := do(t, s, httptest.NewRequest(http.MethodGet, "/runs?limit=5", nil))
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["runs"], 1)

	code, body = do(t, s, httptest.NewRequest(http.MethodGet, "/runs/run-42", nil))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "run-42", body["run"].(map[string]any)["id"])
	assert.Len(t, body["trace"], 1)
	assert.Len(t, body["recommendations"], 1)

	code, body = do(t, s, httptest.NewRequest(http.MethodGet, "/runs/nope", nil))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body["error"], "run not found")
}

func TestRunReportAndExport(t *testing.T) {
	s := New(Deps{History: newHistory(t)}, Config{}, nil)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/runs/run-42/report", nil), -1)
	require.NoError(t, err)
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(page), "CV Review: cv.txt")

	resp, err = s.App().Test(httptest.NewRequest(http.MethodGet, "/runs/run-42/report?format=md", nil), -1)
	require.NoError(t, err)
	md, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, strings.HasPrefix(string(md), "# CV Review: cv.txt"))

	resp, err = s.App().Test(httptest.NewRequest(http.MethodGet, "/runs/run-42/export", nil), -1)
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="run-42.xlsx"`)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestRuns_DisabledWithoutHistory(t *testing.T) {
	code, _ := do(t, New(Deps{}, Config{}, nil), httptest.NewRequest(http.MethodGet, "/runs", nil))
	assert.Equal(t, http.StatusNotFound, code)
}
