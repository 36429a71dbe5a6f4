package internal

import "time"

// AnalysisRun is the persisted summary of one CV review.
type AnalysisRun struct {
	ID               string    `json:"id"`
	DocumentName     string    `json:"document_name"`
	DocumentLanguage string    `json:"document_language,omitempty"`
	TargetRole       string    `json:"target_role,omitempty"`
	TargetLocation   string    `json:"target_location,omitempty"`
	Backend          string    `json:"backend"`
	Model            string    `json:"model,omitempty"`
	Approved         bool      `json:"approved"`
	RetryCount       int       `json:"retry_count"`
	ATSScore         float64   `json:"ats_score"`
	AnalysisJSON     string    `json:"analysis,omitempty"`
	OptimizationJSON string    `json:"optimization,omitempty"`
	JobsFound        int       `json:"jobs_found"`
	TopMatchScore    int       `json:"top_match_score"`
	Degraded         bool      `json:"degraded"`
	Timestamp        time.Time `json:"timestamp"`
}

// TraceRecord is one persisted pipeline trace entry.
type TraceRecord struct {
	Seq        int    `json:"seq"`
	StageName  string `json:"stage_name"`
	StepLabel  string `json:"step_label"`
	Attributes string `json:"attributes,omitempty"`
}

// JobRecord is one persisted job recommendation.
type JobRecord struct {
	Rank           int      `json:"rank"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	SalaryText     string   `json:"salary_text"`
	URL            string   `json:"url"`
	PostedLabel    string   `json:"posted_label"`
	EmploymentType string   `json:"employment_type"`
	MatchScore     int      `json:"match_score"`
	MatchReasons   []string `json:"match_reasons"`
}
