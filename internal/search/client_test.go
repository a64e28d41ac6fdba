package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, results []Result) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got == "" {
			t.Errorf("missing q parameter")
		}
		_ = json.NewEncoder(w).Encode(struct {
			Results []Result `json:"results"`
		}{Results: results})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchJoinsTopics(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Search(context.Background(), []string{"mcp", "context window"}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotQuery != "mcp context window" {
		t.Errorf("query = %q, want topics joined with spaces", gotQuery)
	}
}

func TestSearchEmptyTopics(t *testing.T) {
	c := NewClient("http://unreachable.invalid")
	results, err := c.Search(context.Background(), nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results != nil {
		t.Errorf("Search(no topics) = %v, want nil without a request", results)
	}
}

func TestSuggestRanksTopThree(t *testing.T) {
	srv := newTestServer(t, []Result{
		{Title: "MCP Overview", Path: "/docs/mcp", Content: "The Model Context Protocol standardizes context exchange.", Section: "intro"},
		{Title: "Servers", Path: "/docs/servers", Content: "Servers store context."},
		{Title: "Security", Path: "/docs/security", Content: "Authentication and authorization."},
		{Title: "Extra", Path: "/docs/extra", Content: "Should be cut."},
	})

	c := NewClient(srv.URL)
	suggestions, err := c.Suggest(context.Background(), []string{"mcp"})
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if len(suggestions) != 3 {
		t.Fatalf("Suggest() = %d suggestions, want 3", len(suggestions))
	}
	if suggestions[0].Title != "MCP Overview" || suggestions[0].SectionID != "intro" {
		t.Errorf("top suggestion = %+v", suggestions[0])
	}
	for i := 1; i < len(suggestions); i++ {
		if suggestions[i].Confidence >= suggestions[i-1].Confidence {
			t.Errorf("confidence not decreasing at rank %d", i)
		}
	}
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Search(context.Background(), []string{"mcp"}); err == nil {
		t.Error("Search() error = nil, want status error")
	}
}

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("word ", 60)
	got := excerpt(long, 40)
	if len(got) > 44 {
		t.Errorf("excerpt too long: %d chars", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("excerpt = %q, want ellipsis suffix", got)
	}

	if got := excerpt("short text", 40); got != "short text" {
		t.Errorf("excerpt(short) = %q", got)
	}
}
