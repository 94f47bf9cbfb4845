package webfetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/coursegen-ai/coursegen/internal/domain"
)

const (
	// DefaultSearchEndpoint is the HTML (non-JS) DuckDuckGo results page.
	DefaultSearchEndpoint = "https://html.duckduckgo.com/html/"
	// DefaultMaxResults caps how many search hits a query yields.
	DefaultMaxResults = 8
	// snippetMaxLen truncates result snippets before they reach prompts.
	snippetMaxLen = 200
)

// SearchProvider returns ranked web search results for a query. Implementations
// must not fetch the result pages themselves.
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]domain.SearchHit, error)
}

// DuckDuckGoProvider queries the DuckDuckGo HTML endpoint and scrapes the
// result list. No API key required.
type DuckDuckGoProvider struct {
	client   *http.Client
	endpoint string
}

func NewDuckDuckGoProvider(client *http.Client, endpoint string) *DuckDuckGoProvider {
	if client == nil {
		client = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = DefaultSearchEndpoint
	}
	return &DuckDuckGoProvider{client: client, endpoint: endpoint}
}

// Search runs one query and returns up to maxResults hits with rank, title,
// URL and a snippet capped at 200 characters. Content is left empty; the
// Fetcher fills it in.
func (p *DuckDuckGoProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchHit, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "web search failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "web search failed",
			fmt.Errorf("search endpoint returned %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "web search failed", err)
	}

	var hits []domain.SearchHit
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		target := resolveResultURL(href)
		if target == "" {
			return true
		}

		snippet := strings.TrimSpace(s.Find(".result__snippet").First().Text())
		if runes := []rune(snippet); len(runes) > snippetMaxLen {
			snippet = string(runes[:snippetMaxLen])
		}

		hits = append(hits, domain.SearchHit{
			Rank:    len(hits) + 1,
			Title:   strings.TrimSpace(link.Text()),
			URL:     target,
			Snippet: snippet,
		})
		return len(hits) < maxResults
	})

	return hits, nil
}

// resolveResultURL unwraps DuckDuckGo's redirect links, which carry the real
// target in a uddg query parameter.
func resolveResultURL(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.Contains(u.Host, "duckduckgo.com") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return href
}
