package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"newsdesk/internal/core"
)

// GoogleCSEProvider implements Provider using the Google Custom Search
// API in image mode.
type GoogleCSEProvider struct {
	apiKey    string
	searchID  string
	client    *http.Client
	baseURL   string
	rateLimit time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

// NewGoogleCSEProvider creates a new Google Custom Search image provider.
func NewGoogleCSEProvider(apiKey, searchID string) *GoogleCSEProvider {
	return &GoogleCSEProvider{
		apiKey:    apiKey,
		searchID:  searchID,
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   "https://www.googleapis.com/customsearch/v1",
		rateLimit: 100 * time.Millisecond,
	}
}

// GetName returns the name of this provider.
func (g *GoogleCSEProvider) GetName() string {
	return "Google Custom Search (images)"
}

type googleCSEResponse struct {
	Items []struct {
		Link  string `json:"link"`
		Title string `json:"title"`
		Image struct {
			ContextLink string `json:"contextLink"`
		} `json:"image"`
	} `json:"items"`
}

// SearchImages performs an image search using the Custom Search API.
// Google CSE caps a single request at 10 results.
func (g *GoogleCSEProvider) SearchImages(ctx context.Context, query string, maxResults int) ([]string, []core.GroundingSource, error) {
	// Concurrent callers queue up here so the rate limit holds across
	// goroutines, not just per caller.
	g.mu.Lock()
	if elapsed := time.Since(g.lastCall); elapsed < g.rateLimit {
		time.Sleep(g.rateLimit - elapsed)
	}
	g.lastCall = time.Now()
	g.mu.Unlock()

	if maxResults <= 0 || maxResults > 10 {
		maxResults = 10
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.searchID)
	params.Set("q", query)
	params.Set("searchType", "image")
	params.Set("num", strconv.Itoa(maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Google CSE request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to execute Google CSE request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("google CSE request failed with status: %d", resp.StatusCode)
	}

	var parsed googleCSEResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, nil, fmt.Errorf("failed to parse Google CSE response: %w", err)
	}

	var urls []string
	var sources []core.GroundingSource
	for _, item := range parsed.Items {
		urls = append(urls, item.Link)
		if item.Image.ContextLink != "" {
			sources = append(sources, core.GroundingSource{
				URI:   item.Image.ContextLink,
				Title: item.Title,
			})
		}
	}

	return urls, sources, nil
}
