package jobsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/erenakay1/CV-Analizer/internal/upstream"
)

// maxPageBytes bounds how much of a listing page is parsed.
const maxPageBytes = 4 << 20

// fetchPage GETs rawURL as a browser would and parses the response. 403 and
// 429 mean the site refused a scraper and are reported as Blocked.
func fetchPage(ctx context.Context, client *http.Client, pacer *Pacer, source, rawURL string, headers map[string]string) (*html.Node, error) {
	if err := pacer.Wait(ctx); err != nil {
		return nil, upstream.FromTransport(source, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", pacer.UserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, upstream.FromTransport(source, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return nil, &upstream.Error{Kind: upstream.Blocked, Source: source, StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return nil, upstream.FromStatus(source, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, upstream.New(upstream.Network, source, fmt.Errorf("failed to parse page: %w", err))
	}
	return doc, nil
}

type matcher func(*html.Node) bool

func element(tag string) matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

func withClass(tag, class string) matcher {
	return func(n *html.Node) bool {
		return element(tag)(n) && hasClass(n, class)
	}
}

func withAttr(tag, key, val string) matcher {
	return func(n *html.Node) bool {
		return element(tag)(n) && attr(n, key) == val
	}
}

// findAll returns nodes under root matching m in document order. Matches are
// not searched for nested matches.
func findAll(root *html.Node, m matcher, limit int) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if limit > 0 && len(out) >= limit {
			return
		}
		if m(n) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// findFirst returns the first descendant of root matching any of ms, tried in order.
func findFirst(root *html.Node, ms ...matcher) *html.Node {
	for _, m := range ms {
		if found := findAll(root, m, 1); len(found) > 0 {
			return found[0]
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// text returns the whitespace-collapsed text content of n.
func text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func absoluteURL(base, href string) string {
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "/"):
		return strings.TrimRight(base, "/") + href
	}
	return strings.TrimRight(base, "/") + "/" + href
}
