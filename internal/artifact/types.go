package artifact

// Issue is one deficiency found in a document, reported by the analyzer or
// flagged as missed by the critic.
type Issue struct {
	Section    string `json:"section,omitempty"`
	Severity   string `json:"severity,omitempty"`
	Problem    string `json:"problem,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

type SkillGap struct {
	Skill      string `json:"skill"`
	Importance string `json:"importance,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

type OptimizedSections struct {
	Summary   string   `json:"summary,omitempty"`
	KeySkills []string `json:"key_skills,omitempty"`
}

// Analysis is the producer artifact.
type Analysis struct {
	CVAnalysis struct {
		ATSScore          float64           `json:"ats_score"`
		Summary           string            `json:"summary,omitempty"`
		Issues            []Issue           `json:"issues"`
		SkillGaps         []SkillGap        `json:"skill_gaps,omitempty"`
		OptimizedSections OptimizedSections `json:"optimized_sections"`
	} `json:"cv_analysis"`
}

// Review is the validator artifact.
type Review struct {
	CriticReview struct {
		Approved     bool    `json:"approved"`
		Feedback     string  `json:"feedback,omitempty"`
		MissedIssues []Issue `json:"missed_issues,omitempty"`
	} `json:"critic_review"`
}

type ImprovedSection struct {
	Section  string `json:"section"`
	Original string `json:"original,omitempty"`
	Improved string `json:"improved"`
	Reason   string `json:"reason,omitempty"`
}

// Optimization is the refiner artifact.
type Optimization struct {
	CVOptimization struct {
		ImprovedSections       []ImprovedSection `json:"improved_sections,omitempty"`
		OverallRecommendations []string          `json:"overall_recommendations,omitempty"`
	} `json:"cv_optimization"`
}
