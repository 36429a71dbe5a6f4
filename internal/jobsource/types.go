// Package jobsource fetches job listings from upstream providers and
// normalises them into one Listing shape.
package jobsource

import (
	"context"
	"strings"
)

// Placeholders used by Normalize for fields a provider did not supply.
const (
	NoTitle           = "N/A"
	NoCompany         = "Unknown"
	NoLocation        = "Not specified"
	NoSalary          = "Not specified"
	NoDescription     = "No description available"
	NoURL             = "#"
	NoPostedLabel     = "Recently"
	DefaultEmployment = "Full-time"
)

// Query is what every Source receives.
type Query struct {
	Text     string
	Location string
	Limit    int
}

// Listing is one job posting. Every field is set; see Normalize.
type Listing struct {
	Title          string `json:"title"`
	Company        string `json:"company"`
	Location       string `json:"location"`
	SalaryText     string `json:"salary_text"`
	Description    string `json:"description"`
	URL            string `json:"url"`
	PostedLabel    string `json:"posted_label"`
	EmploymentType string `json:"employment_type"`
}

// Source is one upstream provider. Fetch returns listings or an
// *upstream.Error describing why it could not.
type Source interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]Listing, error)
}

// Normalize trims every field and substitutes the placeholder for blanks.
func Normalize(l Listing) Listing {
	l.Title = orDefault(l.Title, NoTitle)
	l.Company = orDefault(l.Company, NoCompany)
	l.Location = orDefault(l.Location, NoLocation)
	l.SalaryText = orDefault(l.SalaryText, NoSalary)
	l.Description = orDefault(l.Description, NoDescription)
	l.URL = orDefault(l.URL, NoURL)
	l.PostedLabel = orDefault(l.PostedLabel, NoPostedLabel)
	l.EmploymentType = orDefault(l.EmploymentType, DefaultEmployment)
	return l
}

func orDefault(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

func capLimit(listings []Listing, limit int) []Listing {
	if limit > 0 && len(listings) > limit {
		return listings[:limit]
	}
	return listings
}
