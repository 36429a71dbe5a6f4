package jobsource

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// UserAgents is the default browser identity pool for scraping sources.
var UserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Pacer spaces out requests to scraped sites and picks a browser identity
// for each one. The zero value sends immediately with the default pool.
type Pacer struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	Agents   []string

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewPacer returns a Pacer that waits between min and max before each request.
func NewPacer(min, max time.Duration) *Pacer {
	if max < min {
		max = min
	}
	return &Pacer{MinDelay: min, MaxDelay: max}
}

func (p *Pacer) intn(n int64) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rnd == nil {
		p.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return p.rnd.Int63n(n)
}

// Delay returns the next randomised wait in [MinDelay, MaxDelay].
func (p *Pacer) Delay() time.Duration {
	if p.MaxDelay <= p.MinDelay {
		return p.MinDelay
	}
	return p.MinDelay + time.Duration(p.intn(int64(p.MaxDelay-p.MinDelay)+1))
}

// Wait sleeps for Delay or until ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	d := p.Delay()
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// UserAgent picks one identity from the pool.
func (p *Pacer) UserAgent() string {
	agents := p.Agents
	if len(agents) == 0 {
		agents = UserAgents
	}
	return agents[p.intn(int64(len(agents)))]
}
