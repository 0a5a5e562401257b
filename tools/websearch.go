package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// WebSearchTool fetches web search results and returns them as
// markdown.
type WebSearchTool struct {
	*BaseTool
	client      *http.Client
	searchURL   string
	maxBodySize int64
	maxResults  int
}

// SearchHit captures a single search result.
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps the search output.
type SearchResponse struct {
	Success  bool        `json:"success"`
	Query    string      `json:"query"`
	Results  []SearchHit `json:"results"`
	Markdown string      `json:"markdown,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// NewWebSearchTool constructs a web search tool backed by the
// DuckDuckGo HTML endpoint.
func NewWebSearchTool() *WebSearchTool {
	schema := CreateToolSchema(
		"Search the web and return result titles, links and snippets",
		map[string]interface{}{
			"query": StringProperty("Search query"),
		},
		[]string{"query"},
	)

	return &WebSearchTool{
		BaseTool:  NewBaseTool("web_search", "Search the web for information", schema),
		searchURL: "https://html.duckduckgo.com/html/",
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxBodySize: 5 * 1024 * 1024,
		maxResults:  10,
	}
}

// Execute performs the search.
func (t *WebSearchTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var params struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return t.errorResponse("", "failed to parse search parameters: "+err.Error())
	}
	if strings.TrimSpace(params.Query) == "" {
		return t.errorResponse("", "query parameter is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		t.searchURL+"?q="+url.QueryEscape(params.Query), nil)
	if err != nil {
		return t.errorResponse(params.Query, fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("User-Agent", "Aegis-Search/1.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return t.errorResponse(params.Query, fmt.Sprintf("failed to fetch results: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return t.errorResponse(params.Query, fmt.Sprintf("request failed with status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBodySize))
	if err != nil {
		return t.errorResponse(params.Query, fmt.Sprintf("failed to read response body: %v", err))
	}
	if !utf8.Valid(body) {
		return t.errorResponse(params.Query, "response content is not valid UTF-8")
	}

	hits, err := parseSearchResults(string(body), t.maxResults)
	if err != nil {
		return t.errorResponse(params.Query, fmt.Sprintf("failed to parse results: %v", err))
	}

	markdown, err := resultsToMarkdown(hits)
	if err != nil {
		return t.errorResponse(params.Query, fmt.Sprintf("failed to render markdown: %v", err))
	}

	return json.Marshal(SearchResponse{
		Success:  true,
		Query:    params.Query,
		Results:  hits,
		Markdown: markdown,
	})
}

func (t *WebSearchTool) errorResponse(query, errorMsg string) (json.RawMessage, error) {
	return json.Marshal(SearchResponse{
		Success: false,
		Query:   query,
		Error:   errorMsg,
	})
}

func parseSearchResults(html string, limit int) ([]SearchHit, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find(".result__a").First()
		href, _ := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		snippet := strings.TrimSpace(sel.Find(".result__snippet").Text())
		if title == "" || href == "" {
			return true
		}
		hits = append(hits, SearchHit{Title: title, URL: href, Snippet: snippet})
		return len(hits) < limit
	})
	return hits, nil
}

func resultsToMarkdown(hits []SearchHit) (string, error) {
	var sb strings.Builder
	for _, hit := range hits {
		sb.WriteString(fmt.Sprintf(`<p><a href=%q>%s</a> %s</p>`, hit.URL, hit.Title, hit.Snippet))
		sb.WriteString("\n")
	}
	converter := md.NewConverter("", true, nil)
	return converter.ConvertString(sb.String())
}
