// Package websearch implements the web_search tool on top of DuckDuckGo's
// HTML endpoint. No API key is required.
package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mitchellh/mapstructure"

	"github.com/Cyclone1070/mia/internal/tool"
)

const (
	toolName       = "web_search"
	defaultBaseURL = "https://html.duckduckgo.com/html/"
	userAgent      = "mia/1.0"
)

// Result is a single search hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Tool searches the web through DuckDuckGo's HTML endpoint. Results are
// scraped from the returned page, so a markup change upstream degrades to
// zero results rather than an error.
type Tool struct {
	client     *http.Client
	baseURL    string
	maxResults int
	limiter    *rateLimiter
}

// Option configures optional Tool behaviour.
type Option func(*Tool)

// WithBaseURL points the tool at a different search endpoint.
func WithBaseURL(u string) Option {
	return func(t *Tool) { t.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Tool) { t.client = c }
}

// New creates the tool. maxResults caps how many hits are returned to the
// model, timeout bounds each HTTP request, and minInterval is the minimum
// spacing between consecutive searches (zero disables rate limiting).
func New(maxResults int, timeout, minInterval time.Duration, opts ...Option) *Tool {
	t := &Tool{
		client:     &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		maxResults: maxResults,
		limiter:    newRateLimiter(minInterval),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tool) Name() string {
	return toolName
}

func (t *Tool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        toolName,
		Description: "Search the web for current information. Returns the top matching pages as a numbered list with title, URL and snippet.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"query": {
					Type:        tool.TypeString,
					Description: "Search query",
				},
			},
			Required: []string{"query"},
		},
	}
}

type searchRequest struct {
	Query string `mapstructure:"query"`
}

// Execute runs a search and formats the top results as a numbered text
// block. Zero results is not an error.
func (t *Tool) Execute(ctx context.Context, args map[string]any) (string, error) {
	var req searchRequest
	if err := mapstructure.Decode(args, &req); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return "", fmt.Errorf("query must not be empty")
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}

	results, err := t.search(ctx, query)
	if err != nil {
		return "", err
	}

	return formatResults(query, results), nil
}

func (t *Tool) search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	var results []Result
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.HasClass("result--ad") {
			return true
		}

		anchor := sel.Find("a.result__a").First()
		title := strings.TrimSpace(anchor.Text())
		href, _ := anchor.Attr("href")
		link := cleanLink(href)
		if title == "" || link == "" {
			return true
		}

		results = append(results, Result{
			Title:   title,
			URL:     link,
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").First().Text()),
		})
		return len(results) < t.maxResults
	})

	return results, nil
}

// cleanLink unwraps DuckDuckGo's redirect links (//duckduckgo.com/l/?uddg=<target>)
// to the target URL.
func cleanLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && u.Host != "" {
		u.Scheme = "https"
		return u.String()
	}
	return href
}

func formatResults(query string, results []Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for %q.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for %q:\n", query)
	for i, r := range results {
		fmt.Fprintf(&b, "\n%d. %s\n   %s\n", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", r.Snippet)
		}
	}
	return b.String()
}
