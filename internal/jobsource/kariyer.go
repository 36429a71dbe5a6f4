package jobsource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html"

	"github.com/erenakay1/CV-Analizer/internal/region"
	"github.com/erenakay1/CV-Analizer/internal/upstream"
)

const defaultKariyerBaseURL = "https://www.kariyer.net"

// kariyerCities are the site's location codes for the gazetteer cities.
var kariyerCities = map[string]string{
	"istanbul":  "ist",
	"ankara":    "ank",
	"izmir":     "izm",
	"bursa":     "brs",
	"antalya":   "ant",
	"adana":     "adn",
	"gaziantep": "gzt",
	"konya":     "kny",
	"eskisehir": "esk",
	"kayseri":   "kys",
}

// KariyerSource scrapes the Kariyer.net listing pages.
type KariyerSource struct {
	BaseURL string
	Client  *http.Client
	Pacer   *Pacer
}

func NewKariyerSource(pacer *Pacer, timeout time.Duration) *KariyerSource {
	return &KariyerSource{
		BaseURL: defaultKariyerBaseURL,
		Client:  &http.Client{Timeout: timeout},
		Pacer:   pacer,
	}
}

func (s *KariyerSource) Name() string {
	return "kariyer"
}

func (s *KariyerSource) Fetch(ctx context.Context, q Query) ([]Listing, error) {
	params := url.Values{}
	params.Set("kw", q.Text)
	if code, ok := kariyerCities[region.CityOf(q.Location)]; ok {
		params.Set("lg", code)
	}
	rawURL := fmt.Sprintf("%s/is-ilanlari?%s", s.baseURL(), params.Encode())

	doc, err := fetchPage(ctx, s.client(), s.pacer(), s.Name(), rawURL, map[string]string{
		"Accept-Language": "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7",
	})
	if err != nil {
		return nil, err
	}

	cards := findAll(doc, withAttr("div", "data-test", "job-card"), q.Limit)
	if len(cards) == 0 {
		cards = findAll(doc, withClass("div", "list-items"), q.Limit)
	}
	if len(cards) == 0 {
		cards = findAll(doc, element("article"), q.Limit)
	}

	var listings []Listing
	for _, card := range cards {
		if l, ok := s.parseCard(card); ok {
			listings = append(listings, l)
		}
	}
	if len(listings) == 0 {
		return nil, upstream.New(upstream.Empty, s.Name(), fmt.Errorf("no job cards on page"))
	}
	return capLimit(listings, q.Limit), nil
}

func (s *KariyerSource) parseCard(card *html.Node) (Listing, bool) {
	titleNode := findFirst(card, withClass("a", "job-title"), element("h3"))
	title := text(titleNode)
	if title == "" {
		return Listing{}, false
	}
	link := titleNode
	if link.Data != "a" {
		link = findFirst(card, element("a"))
	}

	company := text(findFirst(card, withClass("span", "company-name"), withClass("a", "company")))
	l := Listing{
		Title:          title,
		Company:        company,
		Location:       text(findFirst(card, withClass("span", "location"), withClass("li", "location"))),
		SalaryText:     "Görüşülecek",
		URL:            absoluteURL(s.baseURL(), attr(link, "href")),
		PostedLabel:    text(findFirst(card, withClass("span", "publish-date"))),
		EmploymentType: "Tam zamanlı",
	}
	if company != "" {
		l.Description = fmt.Sprintf("%s şirketinde %s pozisyonu", company, title)
	} else {
		l.Description = title
	}
	return Normalize(l), true
}

func (s *KariyerSource) baseURL() string {
	if s.BaseURL == "" {
		return defaultKariyerBaseURL
	}
	return s.BaseURL
}

func (s *KariyerSource) client() *http.Client {
	if s.Client == nil {
		return http.DefaultClient
	}
	return s.Client
}

func (s *KariyerSource) pacer() *Pacer {
	if s.Pacer == nil {
		return &Pacer{}
	}
	return s.Pacer
}
