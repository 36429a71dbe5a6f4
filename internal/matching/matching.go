// Package matching scores how well a candidate's skills fit a job posting.
//
// The score is a plain substring heuristic: a skill counts as matched when its
// lower-case form appears anywhere in the lower-cased description.
package matching

import (
	"fmt"
	"strings"

	"github.com/erenakay1/CV-Analizer/internal/region"
)

const (
	MinScore = 40
	MaxScore = 95

	// NeutralScore is returned when there is nothing to compare.
	NeutralScore = 60
	// NoMatchScore is returned when no skill appears in the description.
	NoMatchScore = 45
	// Boost is added to the matched percentage before clamping.
	Boost = 15

	// maxReasonSkills is how many matched skills a reason line names.
	maxReasonSkills = 3
)

// Score returns a value in [MinScore, MaxScore]. Blank skills are ignored.
func Score(skills []string, description string) int {
	total := 0
	for _, s := range skills {
		if strings.TrimSpace(s) != "" {
			total++
		}
	}
	if total == 0 || description == "" {
		return NeutralScore
	}
	matched := Matched(skills, description)
	if len(matched) == 0 {
		return NoMatchScore
	}
	pct := len(matched) * 100 / total
	return clamp(pct + Boost)
}

func clamp(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// Matched returns the skills found in description, in input order. Blank
// skills never match.
func Matched(skills []string, description string) []string {
	desc := strings.ToLower(description)
	var out []string
	for _, s := range skills {
		needle := strings.ToLower(strings.TrimSpace(s))
		if needle == "" {
			continue
		}
		if strings.Contains(desc, needle) {
			out = append(out, s)
		}
	}
	return out
}

// Reasons explains a match in short user-facing lines.
func Reasons(matched []string, listingLocation, targetLocation string) []string {
	var reasons []string
	if len(matched) > 0 {
		shown := matched
		if len(shown) > maxReasonSkills {
			shown = shown[:maxReasonSkills]
		}
		reasons = append(reasons, fmt.Sprintf("%d skills match: %s", len(matched), strings.Join(shown, ", ")))
	}

	listing := region.Fold(listingLocation)
	target := region.Fold(targetLocation)
	if target != "" && listing != "" && strings.Contains(listing, target) {
		reasons = append(reasons, "Location matches preference")
	}
	if strings.Contains(listing, "remote") && strings.Contains(target, "remote") {
		reasons = append(reasons, "Remote work available")
	}

	if len(reasons) == 0 {
		reasons = []string{"Good fit for your experience level"}
	}
	return reasons
}
