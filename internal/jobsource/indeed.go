package jobsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/erenakay1/CV-Analizer/internal/chunker"
	"github.com/erenakay1/CV-Analizer/internal/querytr"
	"github.com/erenakay1/CV-Analizer/internal/upstream"
)

const (
	defaultIndeedBaseURL = "https://tr.indeed.com"
	maxSnippetChars      = 300
)

// IndeedSource scrapes Indeed Turkey search results. Turkish queries are
// translated first because the site matches English titles more reliably.
type IndeedSource struct {
	BaseURL    string
	Client     *http.Client
	Pacer      *Pacer
	Translator querytr.Translator
	Log        *zap.Logger
}

func NewIndeedSource(pacer *Pacer, tr querytr.Translator, timeout time.Duration, log *zap.Logger) *IndeedSource {
	return &IndeedSource{
		BaseURL:    defaultIndeedBaseURL,
		Client:     &http.Client{Timeout: timeout},
		Pacer:      pacer,
		Translator: tr,
		Log:        log,
	}
}

func (s *IndeedSource) Name() string {
	return "indeed_tr"
}

// Close releases the query translator when it holds resources.
func (s *IndeedSource) Close() error {
	if c, ok := s.Translator.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *IndeedSource) englishQuery(ctx context.Context, text string) string {
	if s.Translator == nil || !querytr.LooksTurkish(text) {
		return text
	}
	out, err := s.Translator.ToEnglish(ctx, text)
	if err != nil || out == "" {
		if s.Log != nil {
			s.Log.Debug("query translation failed", zap.String("query", text), zap.Error(err))
		}
		return text
	}
	return out
}

func (s *IndeedSource) Fetch(ctx context.Context, q Query) ([]Listing, error) {
	base := s.BaseURL
	if base == "" {
		base = defaultIndeedBaseURL
	}

	params := url.Values{}
	params.Set("q", s.englishQuery(ctx, q.Text))
	params.Set("l", q.Location)
	params.Set("sort", "date")
	rawURL := fmt.Sprintf("%s/jobs?%s", base, params.Encode())

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	pacer := s.Pacer
	if pacer == nil {
		pacer = &Pacer{}
	}

	doc, err := fetchPage(ctx, client, pacer, s.Name(), rawURL, map[string]string{
		"Accept-Language": "tr-TR,tr;q=0.9",
		"Referer":         "https://www.google.com/",
	})
	if err != nil {
		return nil, err
	}

	cards := findAll(doc, withClass("div", "job_seen_beacon"), q.Limit)
	if len(cards) == 0 {
		cards = findAll(doc, withClass("td", "resultContent"), q.Limit)
	}

	var listings []Listing
	for _, card := range cards {
		if l, ok := parseIndeedCard(base, card); ok {
			listings = append(listings, l)
		}
	}
	if len(listings) == 0 {
		return nil, upstream.New(upstream.Empty, s.Name(), fmt.Errorf("no job cards on page"))
	}
	return capLimit(listings, q.Limit), nil
}

func parseIndeedCard(base string, card *html.Node) (Listing, bool) {
	titleNode := findFirst(card, withClass("h2", "jobTitle"))
	if titleNode == nil {
		return Listing{}, false
	}
	link := findFirst(titleNode, element("a"))
	title := text(titleNode)
	if link != nil {
		title = text(link)
	}
	if title == "" {
		return Listing{}, false
	}

	var jobURL string
	if jk := attr(link, "data-jk"); jk != "" {
		jobURL = fmt.Sprintf("%s/viewjob?jk=%s", base, url.QueryEscape(jk))
	}

	company := text(findFirst(card, withClass("span", "companyName"), withAttr("span", "data-testid", "company-name")))
	snippet, _ := chunker.Truncate(text(findFirst(card, withClass("div", "job-snippet"))), maxSnippetChars)
	if snippet == "" && company != "" {
		snippet = company + " - " + title
	}

	return Normalize(Listing{
		Title:          title,
		Company:        company,
		Location:       text(findFirst(card, withClass("div", "companyLocation"), withAttr("div", "data-testid", "text-location"))),
		SalaryText:     text(findFirst(card, withClass("div", "salary-snippet"))),
		Description:    snippet,
		URL:            jobURL,
		EmploymentType: "Tam zamanlı",
	}), true
}
