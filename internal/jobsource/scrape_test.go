package jobsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erenakay1/CV-Analizer/internal/querytr"
	"github.com/erenakay1/CV-Analizer/internal/upstream"
)

const kariyerPage = `<html><body>
<div data-test="job-card">
  <a class="job-title" href="/is-ilani/acme-go-developer-1">Go Developer</a>
  <span class="company-name">Acme</span>
  <span class="location">İstanbul</span>
  <span class="publish-date">Bugün</span>
</div>
<div data-test="job-card"><p>sponsored</p></div>
<div data-test="job-card">
  <h3>Data Engineer</h3>
  <a href="https://example.com/de">apply</a>
</div>
</body></html>`

const indeedPage = `<html><body>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a data-jk="abc123"><span>Software Engineer</span></a></h2>
  <span class="companyName">Acme</span>
  <div class="companyLocation">İstanbul</div>
  <div class="salary-snippet">50.000 TL</div>
  <div class="job-snippet"><ul><li>Go and</li><li>Kubernetes</li></ul></div>
</div>
<div class="job_seen_beacon"><h2 class="jobTitle">QA Engineer</h2></div>
</body></html>`

func TestKariyerSource_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/is-ilanlari", r.URL.Path)
		assert.Equal(t, "Go Developer", r.URL.Query().Get("kw"))
		assert.Equal(t, "ist", r.URL.Query().Get("lg"))
		assert.Contains(t, UserAgents, r.Header.Get("User-Agent"))
		assert.Contains(t, r.Header.Get("Accept-Language"), "tr-TR")
		w.Write([]byte(kariyerPage))
	}))
	defer server.Close()

	src := &KariyerSource{BaseURL: server.URL, Client: server.Client(), Pacer: &Pacer{}}
	listings, err := src.Fetch(context.Background(), Query{Text: "Go Developer", Location: "Istanbul", Limit: 10})
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, Listing{
		Title:          "Go Developer",
		Company:        "Acme",
		Location:       "İstanbul",
		SalaryText:     "Görüşülecek",
		Description:    "Acme şirketinde Go Developer pozisyonu",
		URL:            server.URL + "/is-ilani/acme-go-developer-1",
		PostedLabel:    "Bugün",
		EmploymentType: "Tam zamanlı",
	}, listings[0])

	assert.Equal(t, "Data Engineer", listings[1].Title)
	assert.Equal(t, "https://example.com/de", listings[1].URL)
	assert.Equal(t, NoCompany, listings[1].Company)
	assert.Equal(t, NoLocation, listings[1].Location)
	assert.Equal(t, NoPostedLabel, listings[1].PostedLabel)
}

func TestKariyerSource_FetchRespectsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(kariyerPage))
	}))
	defer server.Close()

	src := &KariyerSource{BaseURL: server.URL, Client: server.Client()}
	listings, err := src.Fetch(context.Background(), Query{Text: "x", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestScrapers_FailureKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"forbidden", http.StatusForbidden, "", upstream.ErrBlocked},
		{"too many requests", http.StatusTooManyRequests, "", upstream.ErrBlocked},
		{"server error", http.StatusInternalServerError, "", upstream.ErrStatus},
		{"no cards", http.StatusOK, "<html><body><p>captcha</p></body></html>", upstream.ErrEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			sources := []Source{
				&KariyerSource{BaseURL: server.URL, Client: server.Client()},
				&IndeedSource{BaseURL: server.URL, Client: server.Client()},
			}
			for _, src := range sources {
				_, err := src.Fetch(context.Background(), Query{Text: "go", Location: "Ankara", Limit: 5})
				assert.ErrorIs(t, err, tt.want, src.Name())
			}
		})
	}
}

func TestIndeedSource_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs", r.URL.Path)
		assert.Equal(t, "Software Engineer", r.URL.Query().Get("q"))
		assert.Equal(t, "İstanbul", r.URL.Query().Get("l"))
		assert.Equal(t, "date", r.URL.Query().Get("sort"))
		w.Write([]byte(indeedPage))
	}))
	defer server.Close()

	src := &IndeedSource{
		BaseURL:    server.URL,
		Client:     server.Client(),
		Translator: querytr.NewPhraseTable(),
	}
	listings, err := src.Fetch(context.Background(), Query{Text: "Yazılım Mühendisi", Location: "İstanbul", Limit: 10})
	require.NoError(t, err)
	require.Len(t, listings, 2)

	first := listings[0]
	assert.Equal(t, "Software Engineer", first.Title)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "İstanbul", first.Location)
	assert.Equal(t, "50.000 TL", first.SalaryText)
	assert.Equal(t, "Go and Kubernetes", first.Description)
	assert.Equal(t, server.URL+"/viewjob?jk=abc123", first.URL)

	second := listings[1]
	assert.Equal(t, "QA Engineer", second.Title)
	assert.Equal(t, NoURL, second.URL)
	assert.Equal(t, NoDescription, second.Description)
	assert.Equal(t, NoSalary, second.SalaryText)
}

func TestIndeedSource_EnglishQueryUntouched(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("q")
		w.Write([]byte(indeedPage))
	}))
	defer server.Close()

	src := &IndeedSource{BaseURL: server.URL, Client: server.Client(), Translator: querytr.NewPhraseTable()}
	_, err := src.Fetch(context.Background(), Query{Text: "Backend Developer", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, "Backend Developer", got)
}

func TestPacer(t *testing.T) {
	p := NewPacer(0, 0)
	assert.Zero(t, p.Delay())
	assert.NoError(t, p.Wait(context.Background()))
	assert.Contains(t, UserAgents, p.UserAgent())

	p = &Pacer{MinDelay: 10, MaxDelay: 20, Agents: []string{"only"}}
	for i := 0; i < 50; i++ {
		d := p.Delay()
		assert.GreaterOrEqual(t, int64(d), int64(10))
		assert.LessOrEqual(t, int64(d), int64(20))
	}
	assert.Equal(t, "only", p.UserAgent())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewPacer(time.Hour, time.Hour).Wait(ctx), context.Canceled)
}
