// Package search queries the documentation search endpoint for
// resource suggestions related to a conversation's topics.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// Result is a single raw hit from the documentation index.
type Result struct {
	Title   string `json:"title"`
	Path    string `json:"path"`
	Content string `json:"content"`
	Section string `json:"section"`
}

// Suggestion is a ranked, display-ready resource recommendation.
type Suggestion struct {
	Title       string  `json:"title"`
	Path        string  `json:"path"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	SectionID   string  `json:"sectionId,omitempty"`
}

const maxSuggestions = 3

// Client talks to the documentation search API. Identical in-flight
// queries are collapsed through singleflight so a burst of messages on
// the same topic costs one request.
type Client struct {
	baseURL string
	http    *http.Client
	group   singleflight.Group
}

// NewClient builds a client for the given search base URL, e.g.
// "https://docs.example.dev/api/search".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Search queries the index for the given topics. Topics are joined
// with spaces into a single query string.
func (c *Client) Search(ctx context.Context, topics []string) ([]Result, error) {
	query := strings.TrimSpace(strings.Join(topics, " "))
	if query == "" {
		return nil, nil
	}

	v, err, _ := c.group.Do(query, func() (any, error) {
		return c.fetch(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Result), nil
}

func (c *Client) fetch(ctx context.Context, query string) ([]Result, error) {
	u := c.baseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var payload struct {
		Results []Result `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return payload.Results, nil
}

// Suggest searches for the topics and shapes the top hits into ranked
// suggestions. Confidence decays with rank.
func (c *Client) Suggest(ctx context.Context, topics []string) ([]Suggestion, error) {
	results, err := c.Search(ctx, topics)
	if err != nil {
		return nil, err
	}
	return rankResults(results), nil
}

func rankResults(results []Result) []Suggestion {
	suggestions := make([]Suggestion, 0, maxSuggestions)
	for i, r := range results {
		if i >= maxSuggestions {
			break
		}
		suggestions = append(suggestions, Suggestion{
			Title:       r.Title,
			Path:        r.Path,
			Description: excerpt(r.Content, 140),
			Confidence:  1.0 - 0.2*float64(i),
			SectionID:   r.Section,
		})
	}
	return suggestions
}

// excerpt trims content to at most n runes on a word boundary.
func excerpt(content string, n int) string {
	content = strings.Join(strings.Fields(content), " ")
	if len(content) <= n {
		return content
	}
	cut := content[:n]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
