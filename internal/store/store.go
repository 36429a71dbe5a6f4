package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/erenakay1/CV-Analizer/internal"
)

var ErrNotFound = errors.New("run not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT PRIMARY KEY,
		document_name TEXT NOT NULL,
		document_language TEXT,
		target_role TEXT,
		target_location TEXT,
		backend TEXT NOT NULL,
		model TEXT,
		approved BOOLEAN DEFAULT FALSE,
		retry_count INTEGER DEFAULT 0,
		ats_score REAL,
		analysis_json TEXT,
		optimization_json TEXT,
		jobs_found INTEGER DEFAULT 0,
		top_match_score INTEGER DEFAULT 0,
		degraded BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS trace_entries (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		stage_name TEXT NOT NULL,
		step_label TEXT NOT NULL,
		attributes TEXT,
		PRIMARY KEY (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES analysis_runs(id)
	);

	-- job_recommendations keeps the ranked list shown to the user
	CREATE TABLE IF NOT EXISTS job_recommendations (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		company TEXT,
		location TEXT,
		salary_text TEXT,
		url TEXT,
		posted_label TEXT,
		employment_type TEXT,
		match_score INTEGER NOT NULL,
		match_reasons TEXT,
		PRIMARY KEY (run_id, position),
		FOREIGN KEY (run_id) REFERENCES analysis_runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON analysis_runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_role ON analysis_runs(target_role);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores a run with its trace and recommendations in one transaction.
func (s *Store) SaveRun(ctx context.Context, run internal.AnalysisRun, trace []internal.TraceRecord, jobs []internal.JobRecord) error {
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO analysis_runs (id, document_name, document_language, target_role, target_location, backend, model, approved, retry_count, ats_score, analysis_json, optimization_json, jobs_found, top_match_score, degraded, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.DocumentName, run.DocumentLanguage, normalizeText(run.TargetRole), normalizeText(run.TargetLocation),
		run.Backend, run.Model, run.Approved, run.RetryCount, run.ATSScore, run.AnalysisJSON, run.OptimizationJSON,
		run.JobsFound, run.TopMatchScore, run.Degraded, run.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	for _, t := range trace {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO trace_entries (run_id, seq, stage_name, step_label, attributes) VALUES (?, ?, ?, ?, ?)`,
			run.ID, t.Seq, t.StageName, t.StepLabel, t.Attributes)
		if err != nil {
			return fmt.Errorf("failed to save trace entry %d: %w", t.Seq, err)
		}
	}

	for _, j := range jobs {
		reasons, err := json.Marshal(j.MatchReasons)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO job_recommendations (run_id, position, title, company, location, salary_text, url, posted_label, employment_type, match_score, match_reasons)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, j.Rank, j.Title, j.Company, j.Location, j.SalaryText, j.URL, j.PostedLabel, j.EmploymentType, j.MatchScore, string(reasons))
		if err != nil {
			return fmt.Errorf("failed to save recommendation %d: %w", j.Rank, err)
		}
	}

	return tx.Commit()
}

const runColumns = `id, document_name, document_language, target_role, target_location, backend, model, approved, retry_count, ats_score, analysis_json, optimization_json, jobs_found, top_match_score, degraded, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*internal.AnalysisRun, error) {
	var r internal.AnalysisRun
	var lang, role, location, model, analysis, optimization sql.NullString
	var ats sql.NullFloat64
	err := row.Scan(&r.ID, &r.DocumentName, &lang, &role, &location, &r.Backend, &model,
		&r.Approved, &r.RetryCount, &ats, &analysis, &optimization,
		&r.JobsFound, &r.TopMatchScore, &r.Degraded, &r.Timestamp)
	if err != nil {
		return nil, err
	}
	r.DocumentLanguage = lang.String
	r.TargetRole = role.String
	r.TargetLocation = location.String
	r.Model = model.String
	r.ATSScore = ats.Float64
	r.AnalysisJSON = analysis.String
	r.OptimizationJSON = optimization.String
	return &r, nil
}

// GetRun returns the run with the given ID, or ErrNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (*internal.AnalysisRun, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM analysis_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// ListRuns returns the most recent runs first. limit ≤ 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]internal.AnalysisRun, error) {
	query := `SELECT ` + runColumns + ` FROM analysis_runs ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []internal.AnalysisRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// TraceOf returns the trace of a run in pipeline order.
func (s *Store) TraceOf(ctx context.Context, runID string) ([]internal.TraceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, stage_name, step_label, attributes FROM trace_entries WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []internal.TraceRecord
	for rows.Next() {
		var e internal.TraceRecord
		var attrs sql.NullString
		if err := rows.Scan(&e.Seq, &e.StageName, &e.StepLabel, &attrs); err != nil {
			return nil, err
		}
		e.Attributes = attrs.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecommendationsOf returns the recommendations of a run, best first.
func (s *Store) RecommendationsOf(ctx context.Context, runID string) ([]internal.JobRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, title, company, location, salary_text, url, posted_label, employment_type, match_score, match_reasons
		 FROM job_recommendations WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []internal.JobRecord
	for rows.Next() {
		var j internal.JobRecord
		var company, location, salary, url, posted, employment, reasons sql.NullString
		if err := rows.Scan(&j.Rank, &j.Title, &company, &location, &salary, &url, &posted, &employment, &j.MatchScore, &reasons); err != nil {
			return nil, err
		}
		j.Company, j.Location, j.SalaryText = company.String, location.String, salary.String
		j.URL, j.PostedLabel, j.EmploymentType = url.String, posted.String, employment.String
		if reasons.String != "" {
			if err := json.Unmarshal([]byte(reasons.String), &j.MatchReasons); err != nil {
				return nil, fmt.Errorf("corrupt match reasons for rank %d: %w", j.Rank, err)
			}
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// DeleteRun removes a run and everything recorded for it.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM trace_entries WHERE run_id = ?`,
		`DELETE FROM job_recommendations WHERE run_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM analysis_runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return tx.Commit()
}

// ClearRuns removes all runs and returns how many there were.
func (s *Store) ClearRuns(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trace_entries`); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM job_recommendations`); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM analysis_runs`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

// HistoryStats summarises stored runs.
type HistoryStats struct {
	TotalRuns        int
	ApprovedRuns     int
	DegradedSearches int
	AvgRetries       float64
	AvgATSScore      float64
}

func (s *Store) Stats(ctx context.Context) (*HistoryStats, error) {
	stats := &HistoryStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN approved THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN degraded THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(retry_count), 0),
			COALESCE(AVG(ats_score), 0)
		FROM analysis_runs`).Scan(
		&stats.TotalRuns,
		&stats.ApprovedRuns,
		&stats.DegradedSearches,
		&stats.AvgRetries,
		&stats.AvgATSScore,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization so
// that role and location filters compare consistently.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
