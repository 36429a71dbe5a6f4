// Package aggregator queries the job sources for a location's region bucket,
// isolates their failures and ranks the merged listings against a
// candidate's skills.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/erenakay1/CV-Analizer/internal/jobsource"
	"github.com/erenakay1/CV-Analizer/internal/matching"
	"github.com/erenakay1/CV-Analizer/internal/region"
	"github.com/erenakay1/CV-Analizer/internal/upstream"
)

const (
	DefaultLimit         = 10
	DefaultSourceTimeout = 15 * time.Second
	DefaultRole          = "Software Engineer"
	// TopN is how many recommendations Recommend returns.
	TopN = 5
)

type Config struct {
	Limit         int
	SourceTimeout time.Duration
}

// Outcome records what one source contributed to a search.
type Outcome struct {
	Source  string        `json:"source"`
	Count   int           `json:"count"`
	Kind    string        `json:"failure,omitempty"`
	Err     error         `json:"-"`
	Elapsed time.Duration `json:"elapsed"`
}

type Result struct {
	Listings []jobsource.Listing
	Bucket   region.Bucket
	// Degraded is set when the listings come from the curated fallback.
	Degraded bool
	Outcomes []Outcome
}

// Controller owns the ordered source lists for both buckets.
type Controller struct {
	config   Config
	domestic []jobsource.Source
	global   []jobsource.Source
	log      *zap.Logger

	// Fallback sets, replaceable in tests.
	DomesticFallback []jobsource.Listing
	GlobalFallback   []jobsource.Listing
}

// New returns a Controller. Sources are tried in the order given.
func New(config Config, domestic, global []jobsource.Source, log *zap.Logger) *Controller {
	if config.Limit <= 0 {
		config.Limit = DefaultLimit
	}
	if config.SourceTimeout <= 0 {
		config.SourceTimeout = DefaultSourceTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		config:           config,
		domestic:         domestic,
		global:           global,
		log:              log,
		DomesticFallback: jobsource.CuratedDomestic(),
		GlobalFallback:   jobsource.CuratedGlobal(),
	}
}

// Close closes every source that holds resources.
func (c *Controller) Close() error {
	var errs []error
	for _, src := range append(append([]jobsource.Source{}, c.domestic...), c.global...) {
		if cl, ok := src.(io.Closer); ok {
			if err := cl.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// Search returns at most limit listings for query near location. It never
// fails: source errors are logged, recorded in Outcomes and replaced by the
// curated set when no source yields anything.
func (c *Controller) Search(ctx context.Context, query, location string, limit int) Result {
	if limit <= 0 {
		limit = c.config.Limit
	}
	bucket := region.Classify(location)
	res := Result{Bucket: bucket}

	sources := c.global
	if bucket == region.Domestic {
		sources = c.domestic
	}

	q := jobsource.Query{Text: query, Location: location, Limit: shareOf(limit, len(sources))}
	for _, src := range sources {
		listings, outcome := c.fetch(ctx, src, q)
		res.Outcomes = append(res.Outcomes, outcome)
		res.Listings = append(res.Listings, listings...)
	}

	if len(res.Listings) == 0 {
		res.Listings = c.fallback(bucket, location)
		res.Degraded = true
		c.log.Warn("all sources yielded nothing, using curated listings",
			zap.Stringer("bucket", bucket),
			zap.String("location", location),
			zap.Int("listings", len(res.Listings)))
	}

	if len(res.Listings) > limit {
		res.Listings = res.Listings[:limit]
	}
	return res
}

func (c *Controller) fetch(ctx context.Context, src jobsource.Source, q jobsource.Query) ([]jobsource.Listing, Outcome) {
	ctx, cancel := context.WithTimeout(ctx, c.config.SourceTimeout)
	defer cancel()

	start := time.Now()
	listings, err := src.Fetch(ctx, q)
	outcome := Outcome{Source: src.Name(), Count: len(listings), Err: err, Elapsed: time.Since(start)}
	if err != nil {
		outcome.Count = 0
		outcome.Kind = "error"
		if kind := upstream.KindOf(err); kind != 0 {
			outcome.Kind = kind.String()
		}
		c.log.Warn("job source failed",
			zap.String("source", src.Name()),
			zap.String("kind", outcome.Kind),
			zap.Duration("elapsed", outcome.Elapsed),
			zap.Error(err))
		return nil, outcome
	}

	if len(listings) > q.Limit {
		listings = listings[:q.Limit]
	}
	outcome.Count = len(listings)

	normalized := make([]jobsource.Listing, len(listings))
	for i, l := range listings {
		normalized[i] = jobsource.Normalize(l)
	}
	c.log.Info("job source returned listings",
		zap.String("source", src.Name()),
		zap.Int("count", len(normalized)),
		zap.Duration("elapsed", outcome.Elapsed))
	return normalized, outcome
}

// shareOf splits limit evenly across n sources, rounding up, so every
// source of a bucket contributes to the merged list.
func shareOf(limit, n int) int {
	if n <= 1 {
		return limit
	}
	return (limit + n - 1) / n
}

func (c *Controller) fallback(bucket region.Bucket, location string) []jobsource.Listing {
	if bucket == region.Domestic {
		return jobsource.FilterByCity(c.DomesticFallback, region.CityOf(location))
	}
	return c.GlobalFallback
}

type Request struct {
	Role     string
	Location string
	Skills   []string
	Limit    int
}

// Recommendation is a listing with its match against the candidate.
type Recommendation struct {
	jobsource.Listing
	MatchScore   int      `json:"match_score"`
	MatchReasons []string `json:"match_reasons"`
}

type Output struct {
	JobRecommendations []Recommendation `json:"job_recommendations"`
	SearchSummary      string           `json:"search_summary"`
	TotalJobsFound     int              `json:"total_jobs_found"`
	Degraded           bool             `json:"degraded,omitempty"`
}

// TopMatchScore is the best score in o, or 0 when there are no
// recommendations.
func (o Output) TopMatchScore() int {
	if len(o.JobRecommendations) == 0 {
		return 0
	}
	return o.JobRecommendations[0].MatchScore
}

// Recommend searches for req.Role and returns the TopN best-scoring
// listings, highest score first. Listings with equal scores keep their
// source order.
func (c *Controller) Recommend(ctx context.Context, req Request) Output {
	role := req.Role
	if role == "" {
		role = DefaultRole
	}
	res := c.Search(ctx, role, req.Location, req.Limit)

	recs := Rank(res.Listings, req.Skills, req.Location)
	if len(recs) > TopN {
		recs = recs[:TopN]
	}
	return Output{
		JobRecommendations: recs,
		SearchSummary:      fmt.Sprintf("Found %d %s positions, showing top %d matches", len(res.Listings), role, TopN),
		TotalJobsFound:     len(res.Listings),
		Degraded:           res.Degraded,
	}
}

// Rank scores every listing and sorts them by score, descending.
func Rank(listings []jobsource.Listing, skills []string, targetLocation string) []Recommendation {
	recs := make([]Recommendation, 0, len(listings))
	for _, l := range listings {
		matched := matching.Matched(skills, l.Description)
		recs = append(recs, Recommendation{
			Listing:      l,
			MatchScore:   matching.Score(skills, l.Description),
			MatchReasons: matching.Reasons(matched, l.Location, targetLocation),
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].MatchScore > recs[j].MatchScore
	})
	return recs
}
