package jobsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erenakay1/CV-Analizer/internal/chunker"
	"github.com/erenakay1/CV-Analizer/internal/region"
	"github.com/erenakay1/CV-Analizer/internal/upstream"
)

const (
	defaultJSearchURL   = "https://jsearch.p.rapidapi.com/search"
	jsearchHost         = "jsearch.p.rapidapi.com"
	maxDescriptionChars = 500
)

var ErrMissingAPIKey = errors.New("jsearch: RapidAPI key is required")

// JSearchSource queries the JSearch API on RapidAPI for global listings.
type JSearchSource struct {
	APIKey   string
	Endpoint string
	Client   *http.Client
	// Now is the clock used for posted labels.
	Now func() time.Time
}

func NewJSearchSource(apiKey string, timeout time.Duration) *JSearchSource {
	return &JSearchSource{
		APIKey:   apiKey,
		Endpoint: defaultJSearchURL,
		Client:   &http.Client{Timeout: timeout},
		Now:      time.Now,
	}
}

func (s *JSearchSource) Name() string {
	return "jsearch"
}

type jsearchResponse struct {
	Status string       `json:"status"`
	Data   []jsearchJob `json:"data"`
}

type jsearchJob struct {
	Title          string   `json:"job_title"`
	Employer       string   `json:"employer_name"`
	City           string   `json:"job_city"`
	State          string   `json:"job_state"`
	Country        string   `json:"job_country"`
	IsRemote       bool     `json:"job_is_remote"`
	MinSalary      *float64 `json:"job_min_salary"`
	MaxSalary      *float64 `json:"job_max_salary"`
	Currency       string   `json:"job_salary_currency"`
	PostedAt       *int64   `json:"job_posted_at_timestamp"`
	PostedAtUTC    string   `json:"job_posted_at_datetime_utc"`
	Description    string   `json:"job_description"`
	ApplyLink      string   `json:"job_apply_link"`
	GoogleLink     string   `json:"job_google_link"`
	EmploymentType string   `json:"job_employment_type"`
}

// searchParams rewrites the query for the provider. Remote searches append a
// remote qualifier and ask for remote-only results; other non-worldwide
// locations are folded into the query text.
func searchParams(q Query) url.Values {
	text := q.Text
	remote := region.IsRemote(q.Location)
	switch {
	case remote:
		text = q.Text + " remote"
	case !region.IsWorldwide(q.Location):
		text = fmt.Sprintf("%s in %s", q.Text, strings.TrimSpace(q.Location))
	}

	params := url.Values{}
	params.Set("query", text)
	params.Set("page", "1")
	params.Set("num_pages", "1")
	params.Set("date_posted", "all")
	if remote {
		params.Set("remote_jobs_only", "true")
	}
	return params
}

func (s *JSearchSource) Fetch(ctx context.Context, q Query) ([]Listing, error) {
	if s.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = defaultJSearchURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+searchParams(q).Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", s.APIKey)
	req.Header.Set("X-RapidAPI-Host", jsearchHost)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, upstream.FromTransport(s.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		ue := upstream.FromStatus(s.Name(), resp.StatusCode)
		if len(snippet) > 0 {
			ue.Err = fmt.Errorf("%s", strings.TrimSpace(string(snippet)))
		}
		return nil, ue
	}

	var body jsearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, upstream.New(upstream.Network, s.Name(), fmt.Errorf("failed to decode response: %w", err))
	}
	if len(body.Data) == 0 {
		return nil, upstream.New(upstream.Empty, s.Name(), fmt.Errorf("no jobs found for %q", q.Text))
	}

	remote := region.IsRemote(q.Location)
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	var listings []Listing
	for _, job := range body.Data {
		l := job.listing(now())
		if remote && !IsTrulyRemote(l) {
			continue
		}
		listings = append(listings, l)
		if q.Limit > 0 && len(listings) == q.Limit {
			break
		}
	}
	if len(listings) == 0 {
		return nil, upstream.New(upstream.Empty, s.Name(), fmt.Errorf("no fully remote jobs among %d results", len(body.Data)))
	}
	return listings, nil
}

func (j jsearchJob) listing(now time.Time) Listing {
	var parts []string
	for _, p := range []string{j.City, j.State, j.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	location := strings.Join(parts, ", ")
	if location == "" {
		location = "Remote"
	}

	var min, max float64
	if j.MinSalary != nil {
		min = *j.MinSalary
	}
	if j.MaxSalary != nil {
		max = *j.MaxSalary
	}

	posted := j.PostedAtUTC
	if j.PostedAt != nil && *j.PostedAt > 0 {
		posted = FormatPosted(time.Unix(*j.PostedAt, 0), now)
	}

	link := j.ApplyLink
	if link == "" {
		link = j.GoogleLink
	}

	return Normalize(Listing{
		Title:          j.Title,
		Company:        j.Employer,
		Location:       location,
		SalaryText:     FormatSalary(min, max, j.Currency),
		Description:    chunker.Preview(j.Description, maxDescriptionChars),
		URL:            link,
		PostedLabel:    posted,
		EmploymentType: j.EmploymentType,
	})
}
