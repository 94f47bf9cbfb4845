package webfetch

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/coursegen-ai/coursegen/internal/domain"
)

const (
	userAgent = "Mozilla/5.0 (compatible; coursegen/1.0)"

	// DefaultFetchTimeout bounds one page download.
	DefaultFetchTimeout = 15 * time.Second
	// maxContentLen caps extracted page text before indexing.
	maxContentLen = 8000
	// minParagraphLen filters boilerplate when falling back to <p> extraction.
	minParagraphLen = 30
)

// contentSelectors are tried in order; the first match wins. The list mirrors
// the containers most article-style pages use for their main body.
var contentSelectors = []string{
	"article",
	"main",
	".content",
	".post-content",
	".entry-content",
	"#content",
	"#main-content",
	".story-content",
	".article-content",
	".text-content",
}

// stripSelectors are removed from the document before any text extraction.
var stripSelectors = []string{"script", "style", "nav", "header", "footer", "aside"}

// FetchError wraps a failure to download or extract a single page. The
// pipeline drops the affected hit and keeps going.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher turns search hits into hits with extracted page content. Fetches are
// throttled to one request per second out of politeness to the target sites.
type Fetcher struct {
	search  SearchProvider
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

func NewFetcher(search SearchProvider, client *http.Client, logger *log.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{
		search:  search,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		logger:  logger,
	}
}

// SearchAndFetch runs a web search and downloads each result page. Hits whose
// pages cannot be fetched or yield no content are dropped; the returned slice
// preserves search rank order and may be empty.
func (f *Fetcher) SearchAndFetch(ctx context.Context, query string, maxResults int) ([]domain.SearchHit, error) {
	hits, err := f.search.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	fetched := make([]domain.SearchHit, 0, len(hits))
	for _, hit := range hits {
		if err := f.limiter.Wait(ctx); err != nil {
			return fetched, err
		}

		content, err := f.FetchPage(ctx, hit.URL)
		if err != nil {
			f.logger.Printf("dropping search hit %q: %v", hit.URL, err)
			continue
		}

		hit.Content = content
		hit.Rank = len(fetched) + 1
		fetched = append(fetched, hit)
	}

	return fetched, nil
}

// FetchPage downloads one page and extracts its readable text, capped at
// 8000 characters. Errors are returned as *FetchError.
func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: pageURL, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}

	content := ExtractContent(doc)
	if content == "" {
		return "", &FetchError{URL: pageURL, Err: fmt.Errorf("no readable content")}
	}
	return content, nil
}

// ExtractContent pulls the main text out of a parsed page. Chrome elements
// are stripped first, then the content selectors are tried in order, falling
// back to joining every paragraph longer than 30 characters.
func ExtractContent(doc *goquery.Document) string {
	for _, sel := range stripSelectors {
		doc.Find(sel).Remove()
	}

	var text string
	for _, sel := range contentSelectors {
		node := doc.Find(sel).First()
		if node.Length() > 0 {
			text = node.Text()
			break
		}
	}

	if strings.TrimSpace(text) == "" {
		var paragraphs []string
		doc.Find("p").Each(func(_ int, s *goquery.Selection) {
			p := strings.TrimSpace(s.Text())
			if len(p) > minParagraphLen {
				paragraphs = append(paragraphs, p)
			}
		})
		text = strings.Join(paragraphs, "\n\n")
	}

	text = normalizeWhitespace(text)
	if runes := []rune(text); len(runes) > maxContentLen {
		text = string(runes[:maxContentLen])
	}
	return text
}

// normalizeWhitespace collapses runs of blank space while keeping paragraph
// breaks readable.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
