// Package report renders a reviewed CV and its job recommendations as a
// markdown document, or as an HTML page through the markdown package.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/erenakay1/CV-Analizer/internal"
	"github.com/erenakay1/CV-Analizer/internal/artifact"
	"github.com/erenakay1/CV-Analizer/internal/career"
	"github.com/erenakay1/CV-Analizer/internal/markdown"
)

// Report is the renderable view of one run, built either from a fresh
// career.Result or from a stored history run.
type Report struct {
	RunID          string
	Document       string
	Language       string
	TargetRole     string
	TargetLocation string
	Approved       bool
	RetryCount     int
	Feedback       string
	Analysis       *artifact.Analysis
	Optimization   *artifact.Optimization
	JobSummary     string
	Jobs           []internal.JobRecord
	Degraded       bool
	CreatedAt      time.Time
}

func FromResult(res *career.Result) Report {
	r := Report{
		RunID:     res.RunID,
		Document:  res.Document,
		Language:  res.Language.Name,
		CreatedAt: res.CreatedAt,
	}
	if s := res.Review; s != nil {
		r.TargetRole = s.TargetRole
		r.TargetLocation = s.TargetLocation
		r.Approved = s.Approved
		r.RetryCount = s.RetryCount
		r.Analysis = s.Analysis
		r.Optimization = s.Optimization
		if s.Review != nil {
			r.Feedback = s.Review.CriticReview.Feedback
		}
	}
	if res.Jobs != nil {
		r.JobSummary = res.Jobs.SearchSummary
		r.Jobs = career.JobRecords(res.Jobs.JobRecommendations)
		r.Degraded = res.Jobs.Degraded
	}
	return r
}

// FromRun rebuilds a report from history. The stored artifacts are decoded
// leniently: a run saved without them still renders.
func FromRun(run internal.AnalysisRun, jobs []internal.JobRecord) (Report, error) {
	r := Report{
		RunID:          run.ID,
		Document:       run.DocumentName,
		Language:       run.DocumentLanguage,
		TargetRole:     run.TargetRole,
		TargetLocation: run.TargetLocation,
		Approved:       run.Approved,
		RetryCount:     run.RetryCount,
		Jobs:           jobs,
		Degraded:       run.Degraded,
		CreatedAt:      run.Timestamp,
	}
	if run.AnalysisJSON != "" {
		r.Analysis = &artifact.Analysis{}
		if err := json.Unmarshal([]byte(run.AnalysisJSON), r.Analysis); err != nil {
			return Report{}, fmt.Errorf("failed to decode stored analysis: %w", err)
		}
	}
	if run.OptimizationJSON != "" {
		r.Optimization = &artifact.Optimization{}
		if err := json.Unmarshal([]byte(run.OptimizationJSON), r.Optimization); err != nil {
			return Report{}, fmt.Errorf("failed to decode stored optimization: %w", err)
		}
	}
	if run.JobsFound > 0 {
		r.JobSummary = fmt.Sprintf("%d positions found, %d stored", run.JobsFound, len(jobs))
	}
	return r, nil
}

func (r Report) Title() string {
	if r.Document == "" {
		return "CV Review"
	}
	return "CV Review: " + r.Document
}

// Markdown renders the report. Sections without data are omitted.
func (r Report) Markdown() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", r.Title())
	if r.RunID != "" {
		fmt.Fprintf(&sb, "- **Run:** `%s`\n", r.RunID)
	}
	if !r.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "- **Date:** %s\n", r.CreatedAt.Format("2006-01-02 15:04"))
	}
	if r.TargetRole != "" {
		fmt.Fprintf(&sb, "- **Target role:** %s\n", r.TargetRole)
	}
	if r.TargetLocation != "" {
		fmt.Fprintf(&sb, "- **Target location:** %s\n", r.TargetLocation)
	}
	if r.Language != "" {
		fmt.Fprintf(&sb, "- **Language:** %s\n", r.Language)
	}
	status := "not approved"
	if r.Approved {
		status = "approved"
	}
	fmt.Fprintf(&sb, "- **Review:** %s after %d retries\n", status, r.RetryCount)

	if a := r.Analysis; a != nil {
		cv := a.CVAnalysis
		fmt.Fprintf(&sb, "\n## Analysis\n\n**ATS score:** %g/100\n", cv.ATSScore)
		if cv.Summary != "" {
			fmt.Fprintf(&sb, "\n%s\n", cv.Summary)
		}
		if len(cv.Issues) > 0 {
			sb.WriteString("\n### Issues\n\n| Section | Severity | Problem | Suggestion |\n|---|---|---|---|\n")
			for _, is := range cv.Issues {
				fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", cell(is.Section), cell(is.Severity), cell(is.Problem), cell(is.Suggestion))
			}
		}
		if len(cv.SkillGaps) > 0 {
			sb.WriteString("\n### Skill gaps\n\n")
			for _, g := range cv.SkillGaps {
				line := "- **" + g.Skill + "**"
				if g.Importance != "" {
					line += " (" + g.Importance + ")"
				}
				if g.Reason != "" {
					line += ": " + g.Reason
				}
				sb.WriteString(line + "\n")
			}
		}
		if skills := cv.OptimizedSections.KeySkills; len(skills) > 0 {
			fmt.Fprintf(&sb, "\n**Key skills:** %s\n", strings.Join(skills, ", "))
		}
	}

	if r.Feedback != "" {
		fmt.Fprintf(&sb, "\n## Critic feedback\n\n%s\n", r.Feedback)
	}

	if o := r.Optimization; o != nil {
		opt := o.CVOptimization
		if len(opt.ImprovedSections) > 0 || len(opt.OverallRecommendations) > 0 {
			sb.WriteString("\n## Optimization\n")
		}
		for _, s := range opt.ImprovedSections {
			fmt.Fprintf(&sb, "\n### %s\n\n", s.Section)
			if s.Original != "" {
				fmt.Fprintf(&sb, "**Before:** %s\n\n", s.Original)
			}
			fmt.Fprintf(&sb, "**After:** %s\n", s.Improved)
			if s.Reason != "" {
				fmt.Fprintf(&sb, "\n_%s_\n", s.Reason)
			}
		}
		if len(opt.OverallRecommendations) > 0 {
			sb.WriteString("\n### Recommendations\n\n")
			for _, rec := range opt.OverallRecommendations {
				fmt.Fprintf(&sb, "- %s\n", rec)
			}
		}
	}

	if len(r.Jobs) > 0 || r.JobSummary != "" {
		sb.WriteString("\n## Job recommendations\n\n")
		if r.JobSummary != "" {
			sb.WriteString(r.JobSummary + "\n\n")
		}
		if r.Degraded {
			sb.WriteString("> Live sources were unavailable; these are curated listings.\n\n")
		}
		for _, j := range r.Jobs {
			fmt.Fprintf(&sb, "%d. **[%s](%s)** at %s, %s (match %d%%)\n", j.Rank, j.Title, j.URL, j.Company, j.Location, j.MatchScore)
			fmt.Fprintf(&sb, "   - %s · %s · %s\n", j.EmploymentType, j.SalaryText, j.PostedLabel)
			for _, reason := range j.MatchReasons {
				fmt.Fprintf(&sb, "   - %s\n", reason)
			}
		}
	}
	return sb.String()
}

// HTML renders the report as a complete HTML page.
func (r Report) HTML() string {
	return markdown.ToHTML([]byte(r.Markdown()), r.Title())
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
